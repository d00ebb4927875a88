package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushed    bool
	closed     bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subject = subj
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("flush without deadline")
	}
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func sampleEvent() RunEvent {
	return RunEvent{
		RunID:      "7c0a",
		Outcome:    "success",
		Mode:       "archive",
		Output:     "/work/out.zip",
		Targets:    []string{"hikari_editor", "hikari_cli"},
		Stages:     map[string]string{"build": "success", "assemble": "success", "finalize": "success"},
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationMS: 1200,
	}
}

func TestRunEvent_Encode(t *testing.T) {
	data, err := sampleEvent().Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "7c0a", decoded["run_id"])
	assert.Equal(t, "archive", decoded["mode"])
	assert.Equal(t, "/work/out.zip", decoded["output"])
	assert.NotContains(t, decoded, "error")
	assert.NotContains(t, decoded, "revision")
}

func TestNATSPublisher_Publish(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "distbuilder.runs"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, "distbuilder.runs", fc.subject)
	assert.True(t, fc.flushed)

	var got RunEvent
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, sampleEvent(), got)

	p.Close()
	assert.True(t, fc.closed)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	fc := &fakeConn{publishErr: errors.New("connection closed")}
	p := &NATSPublisher{conn: fc, subject: "distbuilder.runs"}

	err := p.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distbuilder.runs")
	assert.False(t, fc.flushed)
}

func TestNewNATSPublisher_RequiresSubject(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:4222", "")
	require.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	p.Close()
}
