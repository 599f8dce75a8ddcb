package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ynt-app/youtube-no-translation/internal/bridge"
	"github.com/ynt-app/youtube-no-translation/internal/cache"
	"github.com/ynt-app/youtube-no-translation/internal/innertube"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// ChannelNameResolver restores untranslated channel names. On watch pages
// the active player's response already carries the author, so that read
// goes first; otherwise the InnerTube browse endpoint answers through the
// shared cache. Channel names have no hidden-probe fallback: the probe
// loads videos, and a channel is not a loadable subject.
type ChannelNameResolver struct {
	br     *bridge.Bridge
	tube   *innertube.Client
	cache  *cache.Cache
	logger *log.Logger
}

func NewChannelNameResolver(br *bridge.Bridge, tube *innertube.Client, c *cache.Cache) *ChannelNameResolver {
	return &ChannelNameResolver{
		br:     br,
		tube:   tube,
		cache:  c,
		logger: log.ForChannel(log.ChannelChannelName),
	}
}

func (r *ChannelNameResolver) Feature() Feature { return FeatureChannelName }

func (r *ChannelNameResolver) Resolve(ctx context.Context, req Request) Result {
	if req.PlayerVideoID != "" && !req.Scope.Surface.IsList() {
		if v, ok := r.fromPlayer(ctx, req); ok {
			r.logger.Debug("channel name for %s from player response", req.SubjectID)
			return Found(v)
		}
	}

	key := fmt.Sprintf("channel-name:%s", req.SubjectID)
	v, err := r.cache.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
		return r.tube.ChannelName(ctx, req.SubjectID)
	})
	if err == nil {
		val := v
		r.br.Bus().Dispatch(bridge.NewResult(bridge.EventChannelNameInnerTube, req.SubjectID, &val))
		return Found(v)
	}

	if errors.Is(err, innertube.ErrNotFound) {
		r.logger.Debug("channel name for %s not in remote response", req.SubjectID)
		return NotFoundResult()
	}
	if errors.Is(err, innertube.ErrMissingClientVersion) {
		r.logger.Debug("channel name for %s: %v", req.SubjectID, err)
		return Failed(WrapError(err, ErrMissingBootstrapToken, "page client version unavailable"))
	}
	r.logger.Error("channel name fetch for %s failed: %v", req.SubjectID, err)
	return Failed(WrapError(err, ErrNetworkFailure, "channel name fetch failed").WithContext("channelId", req.SubjectID))
}

// ResolveChannelID asks the page for the channel id behind the currently
// rendered channel page. Navigation events on handle URLs carry no id, so
// the watcher goes through this before a channel resolution can start.
func (r *ChannelNameResolver) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	ev, err := r.br.Do(ctx, bridge.Call{
		Script:    bridge.ChannelIDScript,
		Attrs:     map[string]string{"data-channel-handle": handle},
		Event:     bridge.EventChannelIDInnerTube,
		SubjectID: handle,
	})
	if err != nil {
		return "", WrapError(err, ErrTimeout, "channel id lookup timed out")
	}
	if ev.Err() != "" {
		return "", NewError(ErrMissingElement, ev.Err())
	}
	if v := ev.Value(); v != nil && *v != "" {
		return *v, nil
	}
	return "", NewError(ErrNotFound, "page exposes no channel id")
}

func (r *ChannelNameResolver) fromPlayer(ctx context.Context, req Request) (string, bool) {
	ev, err := r.br.Do(ctx, bridge.Call{
		Script: bridge.ChannelScript,
		Attrs: map[string]string{
			"data-video-id":  req.PlayerVideoID,
			"data-player-id": string(playerID(req.Scope.Surface)),
		},
		Event:     bridge.EventChannelData,
		SubjectID: req.PlayerVideoID,
	})
	if err != nil {
		return "", false
	}
	if ev.Err() != "" {
		r.logger.Debug("player channel read for %s: %s", req.SubjectID, ev.Err())
		return "", false
	}
	if v := ev.Value(); v != nil && *v != "" {
		return *v, true
	}
	return "", false
}
