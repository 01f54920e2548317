package test

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lineplan/app"
	"github.com/kilianp07/lineplan/config"
	"github.com/kilianp07/lineplan/core/factory"
	"github.com/kilianp07/lineplan/core/model"
	"github.com/kilianp07/lineplan/infra/mqtt"
	"github.com/kilianp07/lineplan/test/util"
)

func exampleRows() []model.Row {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	hours := map[string][]float64{
		"lineA": {24, 20, 8, 20, 20},
		"lineB": {20, 20, 20, 20, 20},
		"lineC": {20, 20, 20, 20, 20},
		"lineD": {20, 20, 20, 20, 20},
		"lineE": {20, 20, 20, 20, 20},
		"lineF": {0, 0, 0, 0, 0},
	}
	var rows []model.Row
	for line, hs := range hours {
		for i, h := range hs {
			rows = append(rows, model.Row{Date: monday.AddDate(0, 0, i), Line: line, Hours: h})
		}
	}
	return rows
}

func TestSmoothPublishesPlanToBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx, t.TempDir())
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	var mu sync.Mutex
	received := map[string][]byte{}
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("planner-display"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	if token := sub.Subscribe("lineplan/plan/#", 1, func(_ paho.Client, m paho.Message) {
		mu.Lock()
		received[m.Topic()] = m.Payload()
		mu.Unlock()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	port, err := util.FreePort()
	require.NoError(t, err)
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Path = filepath.Join(dir, "runs.jsonl")
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.QoS = 1
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}
	cfg.Metrics.PrometheusPort = port
	require.NoError(t, cfg.Validate())

	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = svc.Run(runCtx) }()

	rep, err := svc.Smooth(ctx, exampleRows(), 1)
	require.NoError(t, err)
	require.Len(t, rep.Transfers, 1)

	summaryTopic := "lineplan/plan/2025-W10/summary"
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		_, ok := received[summaryTopic]
		return ok && len(received) == 7
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	var summary mqtt.SummaryPayload
	require.NoError(t, json.Unmarshal(received[summaryTopic], &summary))
	var lineA mqtt.LinePayload
	require.NoError(t, json.Unmarshal(received["lineplan/plan/2025-W10/lineA"], &lineA))
	mu.Unlock()

	assert.Equal(t, rep.RunID, summary.RunID)
	assert.Equal(t, 1, summary.Transfers)
	assert.InDelta(t, 6, summary.HoursMoved, 1e-9)
	require.Len(t, lineA.Days, 5)
	assert.Equal(t, 18.0, lineA.Days[0].Hours)
	assert.Equal(t, 14.0, lineA.Days[2].Hours)

	require.NoError(t, util.WaitForMetric("http://127.0.0.1:"+port+"/metrics", `lineplan_runs_total{stop="budget"}`, util.MetricTimeout))
}
