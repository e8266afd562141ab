package progress

import (
	"math"
	"time"
)

type TransferType string

const (
	TransferWhole   TransferType = "whole"
	TransferChunked TransferType = "chunked"
)

type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Event is the fixed shape delivered to progress callbacks. Fields that are
// not meaningful for a given transfer type stay at their zero value.
type Event struct {
	TransferType    TransferType
	StartTime       time.Time
	EndTime         time.Time // zero until the final event
	Status          Status
	Percent         float64
	BytesDownloaded int64
	ChunkSize       int64 // size of the most recently completed unit
	ChunksTotal     int   // chunked transfers only
}

// Callback receives progress events. It is invoked synchronously from the
// transfer's execution context, never from a dedicated timer.
type Callback func(Event)

// Reporter gates callback invocations to a minimum interval. The final
// complete/failed event bypasses the gate via Force.
type Reporter struct {
	cb       Callback
	interval time.Duration
	now      func() time.Time
	next     time.Time
}

func NewReporter(cb Callback, interval time.Duration) *Reporter {
	return newReporter(cb, interval, time.Now)
}

func newReporter(cb Callback, interval time.Duration, now func() time.Time) *Reporter {
	r := &Reporter{cb: cb, interval: interval, now: now}
	r.next = now().Add(interval)
	return r
}

// Emit delivers the event only when the interval has elapsed since the last
// delivery. Reports whether the callback fired.
func (r *Reporter) Emit(ev Event) bool {
	if r == nil || r.cb == nil {
		return false
	}
	now := r.now()
	if now.Before(r.next) {
		return false
	}
	r.next = now.Add(r.interval)
	r.cb(ev)
	return true
}

// Force delivers the event unconditionally. Used for the initial event and
// for the terminal complete/failed event.
func (r *Reporter) Force(ev Event) {
	if r == nil || r.cb == nil {
		return
	}
	r.cb(ev)
}

// Percent computes completed/total as a percentage rounded to two decimals.
func Percent(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*10000) / 100
}
