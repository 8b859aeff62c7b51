package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/reactorcore/event"
)

func TestEventListener_CircuitStateChanged(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)
	listener := newEventListener(logger, &noopMetrics{})

	listener(event.Event{
		Kind:      event.CircuitStateChanged,
		Name:      "payments",
		FromState: "closed",
		ToState:   "open",
	})

	if !strings.Contains(buf.String(), `"to_state":"open"`) {
		t.Fatalf("expected logged to_state, got: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}
	if entry["call.component"] != "circuit_state_changed" {
		t.Fatalf("expected call.component set, got %v", entry["call.component"])
	}
}

func TestEventListener_RetryAttempted_RecordsError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)
	listener := newEventListener(logger, &noopMetrics{})

	listener(event.Event{
		Kind:    event.RetryAttempted,
		Name:    "fetch-price",
		Attempt: 2,
		Delay:   50 * time.Millisecond,
		Err:     errors.New("timeout"),
	})

	if !strings.Contains(buf.String(), `"error":"timeout"`) {
		t.Fatalf("expected logged error field, got: %s", buf.String())
	}
}

func TestEventListener_NeverPanics(t *testing.T) {
	listener := newEventListener(&noopLogger{}, &noopMetrics{})
	kinds := []event.Kind{
		event.CircuitStateChanged,
		event.InstanceHealthChanged,
		event.BackpressureOverflow,
		event.RetryAttempted,
	}
	for _, k := range kinds {
		listener(event.Event{Kind: k})
	}
}
