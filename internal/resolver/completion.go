package resolver

import "sync"

// completion delivers exactly one result no matter how many timers and
// event callbacks race to produce it. Late resolves are dropped by the
// guard, not by the callers.
type completion struct {
	once sync.Once
	ch   chan Result
}

func newCompletion() *completion {
	return &completion{ch: make(chan Result, 1)}
}

func (c *completion) resolve(r Result) {
	c.once.Do(func() { c.ch <- r })
}

func (c *completion) wait() <-chan Result {
	return c.ch
}
