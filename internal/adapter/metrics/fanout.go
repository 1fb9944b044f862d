package metrics

import "turfcontrol/internal/app/ports"

// Fanout forwards every record to each wrapped recorder.
type Fanout []ports.OperationMetrics

func (f Fanout) RecordSuccess(op string) {
	for _, m := range f {
		m.RecordSuccess(op)
	}
}

func (f Fanout) RecordConflict(op string) {
	for _, m := range f {
		m.RecordConflict(op)
	}
}

func (f Fanout) RecordFailure(op string) {
	for _, m := range f {
		m.RecordFailure(op)
	}
}
