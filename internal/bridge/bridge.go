package bridge

import (
	"context"
	"time"

	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// DefaultCallTimeout bounds the wait for a page-level completion. Bridge
// level failures complete immediately through a synthesized event, so the
// timeout only guards against page hangs (a player that never answers).
const DefaultCallTimeout = 3 * time.Second

// Bridge injects snippets into the page's execution realm and correlates
// the asynchronous completion events they dispatch. Injection is fire and
// forget; the transient script element is torn down by the realm right
// after insertion.
type Bridge struct {
	realm   page.Realm
	bus     *Bus
	timeout time.Duration
	logger  *log.Logger
}

func New(realm page.Realm, bus *Bus) *Bridge {
	return &Bridge{
		realm:   realm,
		bus:     bus,
		timeout: DefaultCallTimeout,
		logger:  log.ForChannel(log.ChannelCore),
	}
}

// WithTimeout returns a copy of the bridge using the given call timeout.
func (b *Bridge) WithTimeout(d time.Duration) *Bridge {
	clone := *b
	clone.timeout = d
	return &clone
}

// Bus exposes the event bus the bridge correlates completions on.
func (b *Bridge) Bus() *Bus { return b.bus }

// Call describes one injection round trip: the snippet to run in the page
// realm, its string attributes, and the event name the snippet answers on.
type Call struct {
	Script    string
	Attrs     map[string]string
	Event     EventName
	SubjectID string
}

// Do injects the snippet and waits for its completion event. Every call
// observes exactly one completion: snippet-side failures arrive as events
// carrying an error string, and an injection failure is converted into a
// synthesized failure event on the same name. Only a page that never
// answers at all ends the wait, via the call timeout.
func (b *Bridge) Do(ctx context.Context, call Call) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	match := func(ev Event) bool {
		return call.SubjectID == "" || ev.SubjectID() == call.SubjectID
	}

	// Subscribe before injecting so a fast page cannot complete unseen.
	done := make(chan Event, 1)
	unsub := b.bus.Subscribe(call.Event, func(ev Event) {
		if !match(ev) {
			return
		}
		select {
		case done <- ev:
		default:
		}
	})
	defer unsub()

	if err := b.realm.InjectScript(ctx, call.Script, call.Attrs); err != nil {
		b.logger.Debug("script injection failed for %s: %v", call.Event, err)
		b.bus.Dispatch(NewFailure(call.Event, call.SubjectID, err.Error()))
	}

	select {
	case ev := <-done:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
