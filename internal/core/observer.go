package core

import "time"

// Observer receives instrumentation callbacks from reflectors, caches
// and event channels. The monitoring package provides the Prometheus
// implementation; NopObserver is used when none is wired.
type Observer interface {
	ObserveEvent(kind string, t ChangeType)
	ObserveHandlerError(kind, subscriber string)
	ObserveResync(kind string, items int, elapsed time.Duration, err error)
	ObserveWatchRestart(kind, reason string)
	ObserveState(kind string, state ReflectorState)
	ObserveCacheSize(kind string, size int)
}

// NopObserver discards all callbacks.
type NopObserver struct{}

func (NopObserver) ObserveEvent(string, ChangeType)                 {}
func (NopObserver) ObserveHandlerError(string, string)              {}
func (NopObserver) ObserveResync(string, int, time.Duration, error) {}
func (NopObserver) ObserveWatchRestart(string, string)              {}
func (NopObserver) ObserveState(string, ReflectorState)             {}
func (NopObserver) ObserveCacheSize(string, int)                    {}

var _ Observer = NopObserver{}
