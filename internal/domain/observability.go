package domain

import "time"

// CallObservation captures one upstream HTTP attempt.
type CallObservation struct {
	Method        string
	Path          string
	Attempt       int
	StatusCode    int
	Duration      time.Duration
	Err           error
	CorrelationID string
}

// RetryObservation captures one scheduled retry.
type RetryObservation struct {
	Method  string
	Path    string
	Attempt int
	Delay   time.Duration
	Err     error
}

// InvokeObservation captures one tool invocation outcome.
type InvokeObservation struct {
	Tool      string
	Operation string
	Duration  time.Duration
	Success   bool
	SoftError bool
	ErrorKind ErrorKind
}

// Observer receives observability events from the transport client and the
// tool framework.
type Observer interface {
	ObserveCall(observation CallObservation)
	ObserveRetry(observation RetryObservation)
	ObserveInvoke(observation InvokeObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveCall(CallObservation)     {}
func (noopObserver) ObserveRetry(RetryObservation)   {}
func (noopObserver) ObserveInvoke(InvokeObservation) {}

// NoopObserver returns an Observer that ignores every event.
func NoopObserver() Observer {
	return noopObserver{}
}
