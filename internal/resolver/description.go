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

// DescriptionResolver restores untranslated descriptions, both for videos
// (watch pages and search rows) and for channel pages, where the remote
// call pins an interface language no translation exists for.
type DescriptionResolver struct {
	br     *bridge.Bridge
	tube   *innertube.Client
	cache  *cache.Cache
	probe  *Probe
	logger *log.Logger
}

func NewDescriptionResolver(br *bridge.Bridge, tube *innertube.Client, c *cache.Cache, probe *Probe) *DescriptionResolver {
	return &DescriptionResolver{
		br:     br,
		tube:   tube,
		cache:  c,
		probe:  probe,
		logger: log.ForChannel(log.ChannelDescription),
	}
}

func (r *DescriptionResolver) Feature() Feature { return FeatureDescription }

func (r *DescriptionResolver) Resolve(ctx context.Context, req Request) Result {
	if req.SubjectKind == SubjectChannel {
		return r.resolveChannel(ctx, req)
	}
	return r.resolveVideo(ctx, req)
}

func (r *DescriptionResolver) resolveVideo(ctx context.Context, req Request) Result {
	if !req.Scope.Surface.IsList() {
		if v, ok := r.fromPlayer(ctx, req); ok {
			r.logger.Debug("description for %s from player response", req.SubjectID)
			return Found(v)
		}
	}

	key := fmt.Sprintf("description:%s", req.SubjectID)
	v, err := r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
		return r.tube.VideoDescription(ctx, req.SubjectID)
	})
	if err == nil {
		if req.Scope.Surface.IsList() {
			val := v
			r.br.Bus().Dispatch(bridge.NewResult(bridge.EventSearchDescriptionInnerTube, req.SubjectID, &val))
		}
		return Found(v)
	}

	switch {
	case errors.Is(err, innertube.ErrMissingClientVersion):
		r.logger.Debug("description for %s: %v", req.SubjectID, err)
	case errors.Is(err, innertube.ErrNotFound):
		r.logger.Debug("description for %s not in remote response", req.SubjectID)
	default:
		r.logger.Error("description fetch for %s failed: %v", req.SubjectID, err)
	}

	if req.Scope.Surface.IsList() {
		return r.probe.Fetch(ctx, req.SubjectID, bridge.EventSearchDescriptionData, func(resp *page.PlayerResponse) string {
			if resp.VideoDetails == nil {
				return ""
			}
			return resp.VideoDetails.ShortDescription
		})
	}

	if errors.Is(err, innertube.ErrNotFound) {
		return NotFoundResult()
	}
	if errors.Is(err, innertube.ErrMissingClientVersion) {
		return Failed(WrapError(err, ErrMissingBootstrapToken, "page client version unavailable"))
	}
	return Failed(WrapError(err, ErrNetworkFailure, "description fetch failed").WithContext("videoId", req.SubjectID))
}

func (r *DescriptionResolver) resolveChannel(ctx context.Context, req Request) Result {
	key := fmt.Sprintf("channel-description:%s", req.SubjectID)
	v, err := r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
		return r.tube.ChannelDescription(ctx, req.SubjectID)
	})
	if err == nil {
		val := v
		r.br.Bus().Dispatch(bridge.NewResult(bridge.EventChannelDescInnerTube, req.SubjectID, &val))
		return Found(v)
	}

	if errors.Is(err, innertube.ErrNotFound) {
		return NotFoundResult()
	}
	if errors.Is(err, innertube.ErrMissingClientVersion) {
		return Failed(WrapError(err, ErrMissingBootstrapToken, "page client version unavailable"))
	}
	return Failed(WrapError(err, ErrNetworkFailure, "channel description fetch failed").WithContext("channelId", req.SubjectID))
}

func (r *DescriptionResolver) fromPlayer(ctx context.Context, req Request) (string, bool) {
	ev, err := r.br.Do(ctx, bridge.Call{
		Script: bridge.DescriptionScript,
		Attrs: map[string]string{
			"data-video-id":  req.SubjectID,
			"data-player-id": string(playerID(req.Scope.Surface)),
		},
		Event:     bridge.EventDescriptionData,
		SubjectID: req.SubjectID,
	})
	if err != nil {
		return "", false
	}
	if ev.Err() != "" {
		r.logger.Debug("player description read for %s: %s", req.SubjectID, ev.Err())
		return "", false
	}
	if v := ev.Value(); v != nil && *v != "" {
		return *v, true
	}
	return "", false
}
