package observe

import (
	"context"

	"github.com/jonwraymond/reactorcore/event"
)

// ListenerFromObserver builds an event.Listener that logs every event
// through the Observer's Logger and records a call metric keyed by the
// event's Kind, so breaker state flips, load-balancer health flips, Flux
// backpressure overflows, and Mono/Flux retry attempts all land in the same
// structured log stream and metrics pipeline as ordinary call middleware.
func ListenerFromObserver(obs Observer) event.Listener {
	logger := obs.Logger()
	var metrics Metrics
	if m, err := newMetrics(obs.Meter()); err == nil {
		metrics = m
	} else {
		metrics = &noopMetrics{}
	}
	return newEventListener(logger, metrics)
}

func newEventListener(logger Logger, metrics Metrics) event.Listener {
	return func(e event.Event) {
		ctx := context.Background()
		meta := CallMeta{Component: e.Kind.String(), Name: e.Name}
		if meta.Name == "" {
			meta.Name = e.Kind.String()
		}

		fields := []Field{
			{Key: "kind", Value: e.Kind.String()},
			{Key: "name", Value: e.Name},
		}

		switch e.Kind {
		case event.CircuitStateChanged:
			fields = append(fields,
				Field{Key: "from_state", Value: e.FromState},
				Field{Key: "to_state", Value: e.ToState},
			)
		case event.InstanceHealthChanged:
			fields = append(fields,
				Field{Key: "instance_id", Value: e.InstanceID},
				Field{Key: "from_health", Value: e.FromHealth},
				Field{Key: "to_health", Value: e.ToHealth},
			)
		case event.BackpressureOverflow:
			fields = append(fields,
				Field{Key: "demand", Value: e.Demand},
				Field{Key: "pending", Value: e.Pending},
			)
		case event.RetryAttempted:
			fields = append(fields,
				Field{Key: "attempt", Value: e.Attempt},
				Field{Key: "delay_ms", Value: e.Delay.Milliseconds()},
			)
			if e.Err != nil {
				fields = append(fields, Field{Key: "error", Value: e.Err.Error()})
			}
		}

		callLogger := logger.WithCall(meta)
		callLogger.Info(ctx, "event."+e.Kind.String(), fields...)

		if metrics != nil {
			var callErr error
			if e.Kind == event.RetryAttempted {
				callErr = e.Err
			}
			metrics.RecordCall(ctx, meta, e.Delay, callErr)
		}
	}
}
