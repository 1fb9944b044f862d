package ports

type OperationMetrics interface {
	RecordSuccess(op string)
	RecordConflict(op string)
	RecordFailure(op string)
}
