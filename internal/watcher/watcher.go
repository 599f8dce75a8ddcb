package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// DefaultSecondaryDelay is the fixed wait before the single secondary
// attempt. The page's navigation events can fire before the underlying
// data is queryable; one delayed retry covers that, and nothing more.
const DefaultSecondaryDelay = 200 * time.Millisecond

// Resolution produces the original value for a request. Supplied per
// feature by the orchestrator.
type Resolution func(ctx context.Context, req resolver.Request) resolver.Result

// Apply writes a non-stale result back to the page. Called at most once
// per trigger, never for a superseded request.
type Apply func(req resolver.Request, res resolver.Result)

type registration struct {
	resolve Resolution
	apply   Apply
}

// slot tracks the current primary subject of one feature. A differing
// subject supersedes; the old run keeps going but its generation no
// longer matches, so its result is discarded on arrival.
type slot struct {
	subject    string
	gen        uint64
	processing bool
}

// Watcher turns navigation and mutation triggers into deduplicated,
// supersedable resolution runs. It does not know how values are resolved
// or applied; features register that.
type Watcher struct {
	mu      sync.Mutex
	gen     uint64
	primary map[resolver.Feature]*slot
	// rows holds in-flight list-row resolutions keyed by
	// (feature, subject); the requests are the elements awaiting the
	// shared result.
	rows     map[string][]resolver.Request
	handlers map[resolver.Feature]registration

	secondaryDelay time.Duration
	logger         *log.Logger
}

type Option func(*Watcher)

// WithSecondaryDelay overrides the secondary-attempt delay.
func WithSecondaryDelay(d time.Duration) Option {
	return func(w *Watcher) { w.secondaryDelay = d }
}

func New(opts ...Option) *Watcher {
	w := &Watcher{
		primary:        make(map[resolver.Feature]*slot),
		rows:           make(map[string][]resolver.Request),
		handlers:       make(map[resolver.Feature]registration),
		secondaryDelay: DefaultSecondaryDelay,
		logger:         log.ForChannel(log.ChannelCore),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register wires one feature's resolve and apply steps.
func (w *Watcher) Register(feature resolver.Feature, resolve Resolution, apply Apply) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[feature] = registration{resolve: resolve, apply: apply}
}

// CurrentSubject reports the subject the feature last navigated to. Used
// to re-run resolution when a feature is toggled on mid-navigation.
func (w *Watcher) CurrentSubject(feature resolver.Feature) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.primary[feature]
	if !ok {
		return "", false
	}
	return s.subject, true
}

// Trigger starts a resolution for the request unless an identical one is
// already in flight. Primary-surface triggers (empty ElementID) follow
// the supersession rule: a different subject invalidates the prior run's
// result handler. List rows are deduplicated individually.
func (w *Watcher) Trigger(ctx context.Context, req resolver.Request) {
	if req.Scope.ElementID != "" {
		w.triggerRow(ctx, req)
		return
	}

	w.mu.Lock()
	reg, ok := w.handlers[req.Feature]
	if !ok {
		w.mu.Unlock()
		return
	}
	if s := w.primary[req.Feature]; s != nil && s.processing && s.subject == req.SubjectID {
		// Re-entrant trigger for the subject already being processed.
		w.mu.Unlock()
		w.logger.Debug("%s: duplicate trigger for %s ignored", req.Feature, req.SubjectID)
		return
	}
	w.gen++
	gen := w.gen
	w.primary[req.Feature] = &slot{subject: req.SubjectID, gen: gen, processing: true}
	w.mu.Unlock()

	go w.run(ctx, reg, req, gen, 0)
}

func (w *Watcher) run(ctx context.Context, reg registration, req resolver.Request, gen uint64, attempt int) {
	res := reg.resolve(ctx, req)

	if !w.current(req.Feature, gen) {
		w.logger.Debug("%s: stale result for %s discarded", req.Feature, req.SubjectID)
		return
	}

	if res.Outcome == resolver.OutcomeSkipped {
		// The feature is switched off; nothing to retry.
		w.finish(req.Feature, gen)
		return
	}

	if !res.IsFound() && attempt == 0 {
		// One secondary attempt only; no retry loop.
		time.AfterFunc(w.secondaryDelay, func() {
			if !w.current(req.Feature, gen) {
				return
			}
			w.run(ctx, reg, req, gen, 1)
		})
		return
	}

	reg.apply(req, res)
	w.finish(req.Feature, gen)
}

// triggerRow handles list-rendered subjects: the same video may render in
// several rows at once, but only one resolution runs per
// (feature, subject). Elements announcing the subject while it is in
// flight join the group and share the result; the same element joining
// twice is ignored.
func (w *Watcher) triggerRow(ctx context.Context, req resolver.Request) {
	key := fmt.Sprintf("%s|%s", req.Feature, req.SubjectID)

	w.mu.Lock()
	reg, ok := w.handlers[req.Feature]
	if !ok {
		w.mu.Unlock()
		return
	}
	if waiting, inflight := w.rows[key]; inflight {
		for _, r := range waiting {
			if r.Scope.ElementID == req.Scope.ElementID {
				w.mu.Unlock()
				return
			}
		}
		w.rows[key] = append(waiting, req)
		w.mu.Unlock()
		return
	}
	w.rows[key] = []resolver.Request{req}
	w.mu.Unlock()

	go func() {
		res := reg.resolve(ctx, req)

		w.mu.Lock()
		waiting := w.rows[key]
		delete(w.rows, key)
		w.mu.Unlock()

		if !res.IsFound() {
			return
		}
		for _, r := range waiting {
			reg.apply(r, res)
		}
	}()
}

func (w *Watcher) current(feature resolver.Feature, gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.primary[feature]
	return ok && s.gen == gen
}

func (w *Watcher) finish(feature resolver.Feature, gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.primary[feature]; ok && s.gen == gen {
		s.processing = false
	}
}
