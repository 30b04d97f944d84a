package runtime

import "sync"

// Lazy is a one-shot memoized thunk (spec §9 "Lazy values and recursive
// construction"). A failed evaluation is NOT memoized as success: per spec
// §7, "a lazy's first failed evaluation is not re-memoized as success; the
// lazy may be retried", so Value only latches once factory succeeds.
type Lazy struct {
	mu      sync.Mutex
	done    bool
	value   any
	factory func() (any, error)
}

// NewLazy wraps factory in a Lazy. factory is invoked at most once per
// successful Value() call chain; concurrent callers collapse onto the same
// construction (spec §5 ordering guarantees).
func NewLazy(factory func() (any, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Resolved returns a Lazy that is already evaluated to value, used to wrap
// an existing instance (spec §9 "wrap(existing)"), for example a
// provisional placeholder (§4.6.2a) or a self-export facade (§4.6.4).
func Resolved(value any) *Lazy {
	return &Lazy{done: true, value: value}
}

// Value evaluates the thunk if it has not already succeeded, returning the
// memoized value on every subsequent call.
func (l *Lazy) Value() (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.value, nil
	}
	v, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.value = v
	l.done = true
	l.factory = nil
	return v, nil
}
