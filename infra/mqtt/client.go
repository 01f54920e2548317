package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/lineplan/core/publish"
	"github.com/kilianp07/lineplan/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool        `json:"enabled"`
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults applies the default topic prefix, client id and retry policy.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "lineplan/plan"
	}
	if c.ClientID == "" {
		c.ClientID = "lineplan"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields when publishing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if strings.ContainsAny(c.TopicPrefix, "+#") {
		return fmt.Errorf("mqtt topic prefix must not contain wildcards")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher publishes smoothed plans as retained JSON messages.
type PahoPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

var _ publish.Publisher = (*PahoPublisher)(nil)

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, true)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// DayPayload is one date of a line message.
type DayPayload struct {
	Date               string  `json:"date"`
	Weekday            string  `json:"weekday"`
	Hours              float64 `json:"hours"`
	PersonnelIntensive bool    `json:"personnel_intensive"`
}

// LinePayload is published on <prefix>/<week>/<line>.
type LinePayload struct {
	RunID string       `json:"run_id"`
	Week  string       `json:"week"`
	Line  string       `json:"line"`
	Days  []DayPayload `json:"days"`
}

// SummaryPayload is published on <prefix>/<week>/summary.
type SummaryPayload struct {
	RunID                string   `json:"run_id"`
	Week                 string   `json:"week"`
	Lines                []string `json:"lines"`
	Transfers            int      `json:"transfers"`
	HoursMoved           float64  `json:"hours_moved"`
	VarianceReductionPct float64  `json:"variance_reduction_pct"`
	Violations           int      `json:"violations"`
	Timestamp            int64    `json:"timestamp"`
}

// PublishPlan sends one message per line followed by the summary. The
// summary is published last so that consumers can use it as a commit marker.
func (p *PahoPublisher) PublishPlan(ctx context.Context, plan publish.Plan) error {
	lines, byLine := plan.Lines()
	for _, line := range lines {
		msg := LinePayload{RunID: plan.RunID, Week: plan.Week, Line: line}
		for _, r := range byLine[line] {
			msg.Days = append(msg.Days, DayPayload{
				Date:               r.Date.Format(time.DateOnly),
				Weekday:            string(r.Weekday),
				Hours:              round2(r.Hours),
				PersonnelIntensive: r.PersonnelIntensive,
			})
		}
		if err := p.send(ctx, p.Topic(plan.Week, line), msg); err != nil {
			return err
		}
	}
	var moved float64
	for _, t := range plan.Transfers {
		moved += t.HoursToTransfer
	}
	summary := SummaryPayload{
		RunID:                plan.RunID,
		Week:                 plan.Week,
		Lines:                lines,
		Transfers:            len(plan.Transfers),
		HoursMoved:           round2(moved),
		VarianceReductionPct: round2(plan.Improvement.VarianceReductionPct),
		Violations:           plan.Improvement.SmoothedViolations,
		Timestamp:            plan.Time.UnixMilli(),
	}
	return p.send(ctx, p.Topic(plan.Week, "summary"), summary)
}

// Topic builds <prefix>/<week>/<name>. MQTT separators and wildcards in
// name are replaced by underscores.
func (p *PahoPublisher) Topic(week, name string) string {
	return p.prefix + "/" + week + "/" + topicSafe(name)
}

func (p *PahoPublisher) send(ctx context.Context, topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.cli.IsConnected() {
			publishErr = publish.ErrNotConnected
		} else {
			token := p.cli.Publish(topic, p.qos, p.retain, payload)
			token.Wait()
			publishErr = token.Error()
		}
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *PahoPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}

func topicSafe(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
