package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	errs    []error
	tags    []map[string]string
	flushed time.Duration
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recorder) Recover()              {}
func (r *recorder) Flush(d time.Duration) { r.flushed = d }

func TestGlobalMonitor(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	defer Init(nil)

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"week": "2025-W10"})
	Flush(time.Second)

	assert.Len(t, rec.errs, 1)
	assert.Equal(t, "2025-W10", rec.tags[0]["week"])
	assert.Equal(t, time.Second, rec.flushed)

	Init(nil)
	CaptureException(errors.New("dropped"), nil)
	assert.Len(t, rec.errs, 1)
}
