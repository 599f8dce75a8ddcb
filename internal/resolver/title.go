package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ynt-app/youtube-no-translation/internal/bridge"
	"github.com/ynt-app/youtube-no-translation/internal/cache"
	"github.com/ynt-app/youtube-no-translation/internal/innertube"
	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// TitleResolver restores the untranslated title of a video.
//
// Fallback chain: the active player's already-loaded response (a bridge
// round trip, zero network cost), then the InnerTube player endpoint
// through the shared cache, then (for list-rendered subjects only) the
// hidden probe.
type TitleResolver struct {
	br     *bridge.Bridge
	tube   *innertube.Client
	cache  *cache.Cache
	probe  *Probe
	logger *log.Logger
}

func NewTitleResolver(br *bridge.Bridge, tube *innertube.Client, c *cache.Cache, probe *Probe) *TitleResolver {
	return &TitleResolver{
		br:     br,
		tube:   tube,
		cache:  c,
		probe:  probe,
		logger: log.ForChannel(log.ChannelTitle),
	}
}

func (r *TitleResolver) Feature() Feature { return FeatureTitle }

func (r *TitleResolver) Resolve(ctx context.Context, req Request) Result {
	if !req.Scope.Surface.IsList() {
		if v, ok := r.fromPlayer(ctx, req); ok {
			r.logger.Debug("title for %s from player response", req.SubjectID)
			return Found(v)
		}
	}

	key := fmt.Sprintf("title:%s", req.SubjectID)
	v, err := r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
		return r.tube.VideoTitle(ctx, req.SubjectID)
	})
	if err == nil {
		if req.Scope.Surface.IsList() {
			val := v
			r.br.Bus().Dispatch(bridge.NewResult(bridge.EventBrowsingTitleInnerTube, req.SubjectID, &val))
		}
		return Found(v)
	}

	switch {
	case errors.Is(err, innertube.ErrMissingClientVersion):
		// The page has not bootstrapped its InnerTube state. Hard failure
		// for this path, not retried.
		r.logger.Debug("title for %s: %v", req.SubjectID, err)
	case errors.Is(err, innertube.ErrNotFound):
		r.logger.Debug("title for %s not in remote response", req.SubjectID)
	default:
		r.logger.Error("title fetch for %s failed: %v", req.SubjectID, err)
	}

	if req.Scope.Surface.IsList() {
		return r.probe.Fetch(ctx, req.SubjectID, bridge.EventBrowsingTitleFallback, func(resp *page.PlayerResponse) string {
			if resp.VideoDetails == nil {
				return ""
			}
			return resp.VideoDetails.Title
		})
	}

	if errors.Is(err, innertube.ErrNotFound) {
		return NotFoundResult()
	}
	if errors.Is(err, innertube.ErrMissingClientVersion) {
		return Failed(WrapError(err, ErrMissingBootstrapToken, "page client version unavailable"))
	}
	return Failed(WrapError(err, ErrNetworkFailure, "title fetch failed").WithContext("videoId", req.SubjectID))
}

func (r *TitleResolver) fromPlayer(ctx context.Context, req Request) (string, bool) {
	ev, err := r.br.Do(ctx, bridge.Call{
		Script: bridge.TitleScript,
		Attrs: map[string]string{
			"data-video-id":  req.SubjectID,
			"data-player-id": string(playerID(req.Scope.Surface)),
		},
		Event:     bridge.EventTitleData,
		SubjectID: req.SubjectID,
	})
	if err != nil {
		return "", false
	}
	if ev.Err() != "" {
		r.logger.Debug("player title read for %s: %s", req.SubjectID, ev.Err())
		return "", false
	}
	if v := ev.Value(); v != nil && *v != "" {
		return *v, true
	}
	return "", false
}
