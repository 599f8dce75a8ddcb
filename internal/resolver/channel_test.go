package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ynt-app/youtube-no-translation/internal/bridge"
	"github.com/ynt-app/youtube-no-translation/internal/cache"
	"github.com/ynt-app/youtube-no-translation/internal/innertube"
	"github.com/ynt-app/youtube-no-translation/internal/page"
)

type channelHarness struct {
	realm    *fakeRealm
	bus      *bridge.Bus
	resolver *ChannelNameResolver
	apiCalls *atomic.Int64
}

func newChannelHarness(t *testing.T, apiName string) *channelHarness {
	t.Helper()

	realm := newFakeRealm()
	realm.clientVersion = "2.20260831.01.00"
	realm.hasVersion = true

	calls := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"metadata": map[string]any{
				"channelMetadataRenderer": map[string]any{"title": apiName},
			},
		})
	}))
	t.Cleanup(server.Close)

	bus := bridge.NewBus()
	br := bridge.New(realm, bus).WithTimeout(500 * time.Millisecond)
	tube := innertube.NewClient(server.URL, time.Second, realm.ClientVersion)

	return &channelHarness{
		realm:    realm,
		bus:      bus,
		resolver: NewChannelNameResolver(br, tube, cache.New()),
		apiCalls: calls,
	}
}

func TestChannelNameResolver_FromPlayerOnWatchPage(t *testing.T) {
	h := newChannelHarness(t, "unused")

	h.realm.onInject = func(inj injection) {
		v := "Canal Original"
		h.bus.Dispatch(bridge.NewResult(bridge.EventChannelData, inj.attrs["data-video-id"], &v))
	}

	req := NewRequest(FeatureChannelName, SubjectChannel, "UCxyz", page.Scope{Surface: page.SurfaceWatch})
	req.PlayerVideoID = "abc123"
	res := h.resolver.Resolve(context.Background(), req)

	require.True(t, res.IsFound())
	assert.Equal(t, "Canal Original", res.Value)
	assert.Equal(t, int64(0), h.apiCalls.Load())
}

func TestChannelNameResolver_RemoteFallbackAnnounces(t *testing.T) {
	h := newChannelHarness(t, "Remote Channel")

	var announced atomic.Int64
	cancel := h.bus.Subscribe(bridge.EventChannelNameInnerTube, func(ev bridge.Event) {
		if ev.SubjectID() == "UCxyz" && ev.Value() != nil {
			announced.Add(1)
		}
	})
	defer cancel()

	// Channel page: no player context at all.
	req := NewRequest(FeatureChannelName, SubjectChannel, "UCxyz", page.Scope{Surface: page.SurfaceChannel})
	res := h.resolver.Resolve(context.Background(), req)

	require.True(t, res.IsFound())
	assert.Equal(t, "Remote Channel", res.Value)
	assert.Equal(t, int64(1), announced.Load())
}

func TestChannelNameResolver_ResolveChannelID(t *testing.T) {
	h := newChannelHarness(t, "unused")

	h.realm.onInject = func(inj injection) {
		v := "UCresolved"
		h.bus.Dispatch(bridge.NewResult(bridge.EventChannelIDInnerTube, inj.attrs["data-channel-handle"], &v))
	}

	id, err := h.resolver.ResolveChannelID(context.Background(), "@somehandle")
	require.NoError(t, err)
	assert.Equal(t, "UCresolved", id)
}

func TestChannelNameResolver_ResolveChannelID_PageHasNone(t *testing.T) {
	h := newChannelHarness(t, "unused")

	h.realm.onInject = func(inj injection) {
		h.bus.Dispatch(bridge.NewResult(bridge.EventChannelIDInnerTube, inj.attrs["data-channel-handle"], nil))
	}

	_, err := h.resolver.ResolveChannelID(context.Background(), "@somehandle")
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrNotFound))
}
