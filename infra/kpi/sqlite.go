package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/lineplan/core/model"
)

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS daily_load (
        day INTEGER PRIMARY KEY,
        weekday TEXT,
        run_id TEXT,
        week TEXT,
        total_before REAL,
        total_after REAL,
        violation_before INTEGER,
        violation_after INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Upsert inserts the rows; the latest run wins for a date already stored.
func (s *SQLiteStore) Upsert(loads []DailyLoad) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, l := range loads {
		_, err := tx.Exec(`INSERT INTO daily_load
            (day, weekday, run_id, week, total_before, total_after, violation_before, violation_after)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(day) DO UPDATE SET
                weekday = excluded.weekday,
                run_id = excluded.run_id,
                week = excluded.week,
                total_before = excluded.total_before,
                total_after = excluded.total_after,
                violation_before = excluded.violation_before,
                violation_after = excluded.violation_after`,
			model.Day(l.Date).Unix(), string(l.Weekday), l.RunID, l.Week,
			l.TotalBefore, l.TotalAfter, l.ViolationBefore, l.ViolationAfter)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns records in the range [start,end]. A zero end means no bound.
func (s *SQLiteStore) Query(start, end time.Time) ([]DailyLoad, error) {
	lo := model.Day(start).Unix()
	if start.IsZero() {
		lo = 0
	}
	hi := model.Day(end).Unix()
	if end.IsZero() {
		hi = 1<<63 - 1
	}
	rows, err := s.db.Query(`SELECT day, weekday, run_id, week, total_before, total_after, violation_before, violation_after
        FROM daily_load WHERE day >= ? AND day <= ? ORDER BY day`, lo, hi)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []DailyLoad
	for rows.Next() {
		var (
			ts     int64
			wd     string
			l      DailyLoad
			vb, va bool
		)
		if err := rows.Scan(&ts, &wd, &l.RunID, &l.Week, &l.TotalBefore, &l.TotalAfter, &vb, &va); err != nil {
			return nil, err
		}
		l.Date = time.Unix(ts, 0).UTC()
		l.Weekday = model.Weekday(wd)
		l.ViolationBefore, l.ViolationAfter = vb, va
		res = append(res, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
