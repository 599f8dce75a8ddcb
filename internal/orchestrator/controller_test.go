package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

type stubResolver struct {
	feature resolver.Feature
	result  resolver.Result
	calls   atomic.Int64
}

func (s *stubResolver) Feature() resolver.Feature { return s.feature }

func (s *stubResolver) Resolve(context.Context, resolver.Request) resolver.Result {
	s.calls.Add(1)
	return s.result
}

func testRequest(f resolver.Feature) resolver.Request {
	return resolver.NewRequest(f, resolver.SubjectVideo, "vid-1", page.Scope{Surface: page.SurfaceWatch})
}

func TestController_DisabledFeature_NeverResolves(t *testing.T) {
	store := newTestStore(t)
	res := &stubResolver{feature: resolver.FeatureDescription, result: resolver.Found("x")}
	ctl := newController(res, &recordingApplier{}, store, NewJournal(), log.ChannelDescription)

	// Descriptions are off by default. The outcome is skipped, not
	// not-found, so no secondary attempt is spent on a disabled feature.
	got := ctl.resolve(context.Background(), testRequest(resolver.FeatureDescription))

	assert.Equal(t, resolver.OutcomeSkipped, got.Outcome)
	assert.Zero(t, res.calls.Load())
}

func TestController_NotFound_LeavesPageUntouched(t *testing.T) {
	store := newTestStore(t)
	applier := &recordingApplier{}
	journal := NewJournal()
	res := &stubResolver{feature: resolver.FeatureTitle}
	ctl := newController(res, applier, store, journal, log.ChannelTitle)

	ctl.apply(testRequest(resolver.FeatureTitle), resolver.NotFoundResult())

	assert.Empty(t, applier.applies)
	assert.Empty(t, journal.Snapshot())
}

func TestController_ToggledOffMidFlight_DropsResult(t *testing.T) {
	store := newTestStore(t)
	applier := &recordingApplier{}
	res := &stubResolver{feature: resolver.FeatureTitle}
	ctl := newController(res, applier, store, NewJournal(), log.ChannelTitle)

	_, err := store.Update(context.Background(), func(s *settings.Settings) {
		s.TitleTranslation = false
	})
	require.NoError(t, err)

	ctl.apply(testRequest(resolver.FeatureTitle), resolver.Found("Original"))

	assert.Empty(t, applier.applies)
}

func TestController_AppliesAndJournals(t *testing.T) {
	store := newTestStore(t)
	applier := &recordingApplier{}
	journal := NewJournal()
	res := &stubResolver{feature: resolver.FeatureTitle}
	ctl := newController(res, applier, store, journal, log.ChannelTitle)

	ctl.apply(testRequest(resolver.FeatureTitle), resolver.Found("Original Title"))

	require.Len(t, applier.applies, 1)
	assert.Equal(t, "Original Title", applier.applies[0].value)

	entries := journal.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, resolver.FeatureTitle, entries[0].Feature)
	assert.Equal(t, "vid-1", entries[0].SubjectID)
}
