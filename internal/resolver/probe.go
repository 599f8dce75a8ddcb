package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/ynt-app/youtube-no-translation/internal/bridge"
	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

const (
	probeTimeout = 2 * time.Second
	// probeTimeoutMessage is a fixed string; callers and tests match on it.
	probeTimeoutMessage = "Timeout after 2s"
)

// probeBackoff is the fixed polling schedule. The player's ready event is
// raced against these polls; whichever observes a loaded subject first
// wins through the completion guard.
var probeBackoff = []time.Duration{
	300 * time.Millisecond,
	600 * time.Millisecond,
	1000 * time.Millisecond,
	1500 * time.Millisecond,
}

// Extractor pulls the wanted field out of a probe player's response,
// returning "" when the field is absent.
type Extractor func(*page.PlayerResponse) string

// Probe is the last fallback of the metadata resolvers: a hidden, muted,
// isolated player that loads the target subject just to read its
// untranslated metadata. Used only for list-rendered subjects, never for
// the active player.
type Probe struct {
	realm  page.Realm
	bus    *bridge.Bus
	logger *log.Logger
}

func NewProbe(realm page.Realm, bus *bridge.Bus) *Probe {
	return &Probe{
		realm:  realm,
		bus:    bus,
		logger: log.ForChannel(log.ChannelCore),
	}
}

// Fetch loads videoID into a hidden player and waits for a matching,
// non-empty value, bounded by the hard probe timeout. The outcome, value
// or failure, is dispatched exactly once on the bus under event, so
// listeners in the other realm observe it too.
func (p *Probe) Fetch(ctx context.Context, videoID string, event bridge.EventName, extract Extractor) Result {
	player, teardown, err := p.realm.CreateHiddenPlayer(ctx)
	if err != nil {
		res := Failed(WrapError(err, ErrMissingElement, "hidden player unavailable"))
		p.dispatch(event, videoID, res)
		return res
	}
	defer teardown()

	if err := player.LoadVideo(videoID); err != nil {
		res := Failed(WrapError(err, ErrMissingElement, "hidden player rejected video"))
		p.dispatch(event, videoID, res)
		return res
	}

	comp := newCompletion()
	check := func() {
		if v, ok := p.read(player, videoID, extract); ok {
			comp.resolve(Found(v))
		}
	}

	// done releases the ready-event runner when Fetch returns; without it
	// a player that never fires ready would park the runner for the rest
	// of the engine context's life.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-player.Ready():
			check()
		case <-done:
		case <-ctx.Done():
		}
	}()

	for _, d := range probeBackoff {
		t := time.AfterFunc(d, check)
		defer t.Stop()
	}

	hard := time.AfterFunc(probeTimeout, func() {
		comp.resolve(Failed(NewError(ErrTimeout, probeTimeoutMessage).WithContext("videoId", videoID)))
	})
	defer hard.Stop()

	select {
	case res := <-comp.wait():
		p.dispatch(event, videoID, res)
		return res
	case <-ctx.Done():
		// Superseded. Timers keep running until their deferred stops;
		// nothing is dispatched for a result nobody will apply.
		return Failed(WrapError(ctx.Err(), ErrTimeout, "probe superseded"))
	}
}

func (p *Probe) read(player page.Player, videoID string, extract Extractor) (string, bool) {
	id, err := player.VideoID()
	if err != nil || id != videoID {
		return "", false
	}
	resp, err := player.Response()
	if err != nil || resp == nil {
		return "", false
	}
	v := extract(resp)
	if v == "" {
		return "", false
	}
	return v, true
}

func (p *Probe) dispatch(event bridge.EventName, videoID string, res Result) {
	switch res.Outcome {
	case OutcomeFound:
		v := res.Value
		p.bus.Dispatch(bridge.NewResult(event, videoID, &v))
	case OutcomeNotFound:
		p.bus.Dispatch(bridge.NewResult(event, videoID, nil))
	case OutcomeError:
		// The event carries the bare message; the typed wrapper stays on
		// this side of the realm boundary.
		msg := res.Err.Error()
		var resErr *ResolveError
		if errors.As(res.Err, &resErr) {
			msg = resErr.Message
		}
		p.bus.Dispatch(bridge.NewFailure(event, videoID, msg))
	}
}
