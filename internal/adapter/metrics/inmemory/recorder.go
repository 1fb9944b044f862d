package inmemory

import (
	"sync"
)

type Snapshot struct {
	OperationTotal    uint64            `json:"operation_total"`
	OperationSuccess  uint64            `json:"operation_success"`
	OperationConflict uint64            `json:"operation_conflict"`
	OperationFailure  uint64            `json:"operation_failure"`
	SuccessByOp       map[string]uint64 `json:"success_by_op"`
	FailureByOp       map[string]uint64 `json:"failure_by_op"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	conflict  uint64
	failure   uint64
	successOp map[string]uint64
	failureOp map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		successOp: map[string]uint64{},
		failureOp: map[string]uint64{},
	}
}

func (r *Recorder) RecordSuccess(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.successOp[op]++
}

func (r *Recorder) RecordConflict(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflict++
	r.failureOp[op]++
}

func (r *Recorder) RecordFailure(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
	r.failureOp[op]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		OperationSuccess:  r.success,
		OperationConflict: r.conflict,
		OperationFailure:  r.failure,
		OperationTotal:    r.success + r.conflict + r.failure,
		SuccessByOp:       make(map[string]uint64, len(r.successOp)),
		FailureByOp:       make(map[string]uint64, len(r.failureOp)),
	}
	for k, v := range r.successOp {
		out.SuccessByOp[k] = v
	}
	for k, v := range r.failureOp {
		out.FailureByOp[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
