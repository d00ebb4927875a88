package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("assemble", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncStageResult("assemble", ResultSuccess)
	pr.IncStageResult("build", ResultFatal)
	pr.IncRunOutcome("failed")
	pr.ObserveTargetBuild("hikari_cli", 2*time.Second, false)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.stageResults.WithLabelValues("build", string(ResultFatal))))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.runOutcome.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.targetBuild))
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncRunOutcome("success")

	path := filepath.Join(t.TempDir(), "textfile", "distbuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `distbuilder_run_outcomes_total{outcome="success"} 1`), string(data))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("build", time.Second)
	r.ObserveRunDuration(time.Second)
	r.IncStageResult("build", ResultSuccess)
	r.IncRunOutcome("success")
	r.ObserveTargetBuild("x", time.Second, true)
}
