package auditlog

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogFlushesOnClose(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := New(10)
	runID := uuid.New()
	l.Log(runID, EventRunStarted, "started")
	l.Log(runID, EventRunCompleted, "completed")
	require := l.Close()
	assert.NoError(t, require)

	out := buf.String()
	assert.Contains(t, out, runID.String())
	assert.Contains(t, out, string(EventRunStarted))
	assert.Contains(t, out, string(EventRunCompleted))
}

func TestLogDropsEventsWhenBufferFullWithoutBlocking(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// A zero-capacity channel accepts nothing until the worker drains it;
	// racing a burst of Log calls against that worker should never block
	// the caller, regardless of whether any individual event is dropped.
	l := New(0)
	runID := uuid.New()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			l.Log(runID, EventRunStarted, "burst")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked under buffer pressure")
	}
	l.Close()
}

func TestLogFlushesOnTicker(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := New(10)
	runID := uuid.New()
	l.Log(runID, EventRunFailed, "boom")

	time.Sleep(1200 * time.Millisecond)
	assert.True(t, strings.Contains(buf.String(), string(EventRunFailed)))
	l.Close()
}
