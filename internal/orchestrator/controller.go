package orchestrator

import (
	"context"

	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// Applier writes a resolved value back into the page. Supplied by the
// embedder; the engine decides what to write and when, never how.
type Applier interface {
	Apply(req resolver.Request, value string) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(req resolver.Request, value string) error

func (f ApplierFunc) Apply(req resolver.Request, value string) error { return f(req, value) }

// controller wires one feature: settings gate in front, resolver in the
// middle, applier and journal behind. Corrections are idempotent
// re-applications; a disabled feature does nothing and never undoes a
// previously applied correction.
type controller struct {
	feature resolver.Feature
	res     resolver.Resolver
	applier Applier
	store   *settings.Store
	journal *Journal
	logger  *log.Logger
}

func newController(res resolver.Resolver, applier Applier, store *settings.Store, journal *Journal, ch log.Channel) *controller {
	return &controller{
		feature: res.Feature(),
		res:     res,
		applier: applier,
		store:   store,
		journal: journal,
		logger:  log.ForChannel(ch),
	}
}

// resolve runs the feature's resolver if the feature is enabled. A
// disabled feature reports skipped rather than not-found so the watcher
// does not spend a secondary attempt on it.
func (c *controller) resolve(ctx context.Context, req resolver.Request) resolver.Result {
	if !c.store.Enabled(c.feature) {
		return resolver.SkippedResult()
	}
	return c.res.Resolve(ctx, req)
}

// apply writes a found value to the page. Every non-found outcome leaves
// the current state untouched: a failed resolution must never blank out
// or corrupt what is already rendered.
func (c *controller) apply(req resolver.Request, res resolver.Result) {
	switch res.Outcome {
	case resolver.OutcomeSkipped:
		return
	case resolver.OutcomeNotFound:
		c.logger.Debug("%s: nothing to restore for %q", c.feature, req.SubjectID)
		return
	case resolver.OutcomeError:
		c.logger.Error("%s: resolution for %q failed: %v", c.feature, req.SubjectID, res.Err)
		return
	}

	if !c.store.Enabled(c.feature) {
		// Toggled off while the resolution was in flight.
		return
	}

	if c.applier != nil && res.Value != "" {
		if err := c.applier.Apply(req, res.Value); err != nil {
			c.logger.Error("%s: applying %q to %q failed: %v", c.feature, res.Value, req.SubjectID, err)
			return
		}
	}
	c.journal.Record(req, res.Value)
	c.logger.Info("%s: restored original for %q", c.feature, req.SubjectID)
}
