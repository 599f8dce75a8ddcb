package orchestrator

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
)

type fakeRealm struct {
	mu sync.Mutex

	players map[page.PlayerID]page.Player

	clientVersion string
	hasVersion    bool

	// onInject plays the page's part: it runs after each injection and
	// typically answers on the bus.
	onInject func(source string, attrs map[string]string)

	injections int
}

func newFakeRealm() *fakeRealm {
	return &fakeRealm{
		players:       make(map[page.PlayerID]page.Player),
		clientVersion: "2.20260831.01.00",
		hasVersion:    true,
	}
}

func (r *fakeRealm) InjectScript(_ context.Context, source string, attrs map[string]string) error {
	r.mu.Lock()
	r.injections++
	fn := r.onInject
	r.mu.Unlock()

	if fn != nil {
		fn(source, attrs)
	}
	return nil
}

func (r *fakeRealm) Player(id page.PlayerID) (page.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	return p, ok
}

func (r *fakeRealm) ClientVersion() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientVersion, r.hasVersion
}

func (r *fakeRealm) CreateHiddenPlayer(context.Context) (page.Player, func(), error) {
	return nil, nil, context.Canceled
}

func (r *fakeRealm) injectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.injections
}

// recordingApplier captures every write the engine would make to the DOM.
type recordingApplier struct {
	mu      sync.Mutex
	applies []appliedValue
}

type appliedValue struct {
	feature   resolver.Feature
	subjectID string
	elementID string
	value     string
}

func (a *recordingApplier) Apply(req resolver.Request, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applies = append(a.applies, appliedValue{
		feature:   req.Feature,
		subjectID: req.SubjectID,
		elementID: req.Scope.ElementID,
		value:     value,
	})
	return nil
}

func (a *recordingApplier) byFeature(f resolver.Feature) []appliedValue {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []appliedValue
	for _, v := range a.applies {
		if v.feature == f {
			out = append(out, v)
		}
	}
	return out
}

func (a *recordingApplier) count(f resolver.Feature) int { return len(a.byFeature(f)) }

func newTestStore(t *testing.T) *settings.Store {
	t.Helper()
	store, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
