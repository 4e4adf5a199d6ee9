package fault

import (
	"context"
	"sync"
)

type recorderKey struct{}

// Recorder holds the last result classified while serving one request
type Recorder struct {
	mu     sync.RWMutex
	result Result
	fault  Fault
	set    bool
}

// NewContext returns a child context carrying a fresh Recorder
func NewContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, recorderKey{}, &Recorder{result: DefaultResult()})
}

// RecorderFrom returns the Recorder installed in ctx, if any
func RecorderFrom(ctx context.Context) (*Recorder, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(recorderKey{}).(*Recorder)
	return r, ok
}

// ClassifyContext classifies err and stores the result in the request's
// Recorder when one is installed.
func ClassifyContext(ctx context.Context, err error) (Result, Fault) {
	f := FromError(err)
	res := Classify(f)
	if r, ok := RecorderFrom(ctx); ok {
		r.store(res, f)
	}
	return res, f
}

// FromContext returns the last result recorded for the request. Without a
// Recorder it returns the default result and false.
func FromContext(ctx context.Context) (Result, bool) {
	r, ok := RecorderFrom(ctx)
	if !ok {
		return DefaultResult(), false
	}
	return r.Result(), true
}

// Result returns the recorded result, or the default one
func (r *Recorder) Result() Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Fault returns the recorded fault and whether anything was classified yet
func (r *Recorder) Fault() (Fault, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fault, r.set
}

func (r *Recorder) store(res Result, f Fault) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = res
	r.fault = f
	r.set = true
}
