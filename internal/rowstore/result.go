package rowstore

// Status is the outcome class of a Store operation.
type Status int

const (
	StatusOK Status = iota
	// StatusEmpty means no rows were found or nothing changed.
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result carries a Store operation's value and outcome.
// Err is set only when Status is StatusFailed.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Failed reports whether the operation failed.
func (r Result[T]) Failed() bool { return r.Status == StatusFailed }

func ok[T any](v T) Result[T] { return Result[T]{Status: StatusOK, Value: v} }

func empty[T any](v T) Result[T] { return Result[T]{Status: StatusEmpty, Value: v} }

func failed[T any](v T, err error) Result[T] {
	return Result[T]{Status: StatusFailed, Value: v, Err: err}
}
