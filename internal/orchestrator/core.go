package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ynt-app/youtube-no-translation/internal/bridge"
	"github.com/ynt-app/youtube-no-translation/internal/cache"
	"github.com/ynt-app/youtube-no-translation/internal/innertube"
	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
	"github.com/ynt-app/youtube-no-translation/internal/watcher"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// Config parameterizes the engine core.
type Config struct {
	// InnerTubeURL overrides the metadata endpoint; empty means the live
	// origin's default.
	InnerTubeURL string
	// HTTPTimeout bounds each remote metadata call.
	HTTPTimeout time.Duration
	// BridgeTimeout bounds each page-context round trip.
	BridgeTimeout time.Duration
	// Applier writes resolved values into the page.
	Applier Applier
	// CacheSweepSpec is the cron schedule of the cache maintenance sweep.
	CacheSweepSpec string
}

func (c Config) withDefaults() Config {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.CacheSweepSpec == "" {
		c.CacheSweepSpec = "@every 5m"
	}
	return c
}

// Core owns the engine's moving parts: bridge, cache, resolvers, watcher
// and the per-feature controllers, created once at content-core startup
// and torn down with the page. No ambient singletons.
type Core struct {
	realm   page.Realm
	bus     *bridge.Bus
	br      *bridge.Bridge
	store   *settings.Store
	cache   *cache.Cache
	watch   *watcher.Watcher
	journal *Journal
	cron    *cron.Cron
	channel *resolver.ChannelNameResolver
	cfg     Config
	logger  *log.Logger

	mu          sync.Mutex
	lastPrimary map[resolver.Feature]resolver.Request
	prev        settings.Settings
	cancels     []func()
}

func NewCore(realm page.Realm, store *settings.Store, cfg Config) *Core {
	cfg = cfg.withDefaults()

	bus := bridge.NewBus()
	br := bridge.New(realm, bus)
	if cfg.BridgeTimeout > 0 {
		br = br.WithTimeout(cfg.BridgeTimeout)
	}
	tube := innertube.NewClient(cfg.InnerTubeURL, cfg.HTTPTimeout, realm.ClientVersion)
	responseCache := cache.New()
	probe := resolver.NewProbe(realm, bus)
	journal := NewJournal()

	audioLang := func() string { return store.Get().AudioLanguage }
	subtitlesLang := func() string { return store.Get().SubtitlesLanguage }

	channelRes := resolver.NewChannelNameResolver(br, tube, responseCache)

	c := &Core{
		realm:       realm,
		bus:         bus,
		br:          br,
		store:       store,
		cache:       responseCache,
		watch:       watcher.New(),
		journal:     journal,
		cron:        cron.New(),
		channel:     channelRes,
		cfg:         cfg,
		logger:      log.ForChannel(log.ChannelCore),
		lastPrimary: make(map[resolver.Feature]resolver.Request),
	}

	controllers := []*controller{
		newController(resolver.NewTitleResolver(br, tube, responseCache, probe), cfg.Applier, store, journal, log.ChannelTitle),
		newController(resolver.NewDescriptionResolver(br, tube, responseCache, probe), cfg.Applier, store, journal, log.ChannelDescription),
		newController(channelRes, cfg.Applier, store, journal, log.ChannelChannelName),
		// Audio and subtitles act on the player directly; no applier.
		newController(resolver.NewAudioResolver(realm, audioLang), nil, store, journal, log.ChannelAudio),
		newController(resolver.NewSubtitlesResolver(realm, subtitlesLang), nil, store, journal, log.ChannelSubtitles),
	}
	for _, ctl := range controllers {
		c.watch.Register(ctl.feature, ctl.resolve, ctl.apply)
	}

	return c
}

// Journal exposes the correction journal for the control surface.
func (c *Core) Journal() *Journal { return c.journal }

// Bus exposes the bridge event bus so the embedder can feed page events
// into the engine.
func (c *Core) Bus() *bridge.Bus { return c.bus }

// Cache exposes the shared response cache.
func (c *Core) Cache() *cache.Cache { return c.cache }

// Start subscribes to the navigation sources and the settings store and
// starts the maintenance schedule.
func (c *Core) Start(ctx context.Context, sources ...page.NavigationSource) error {
	cancels := []func(){c.store.Subscribe(func(next settings.Settings) {
		c.onSettingsChange(ctx, next)
	})}
	for _, src := range sources {
		cancels = append(cancels, src.Subscribe(func(ev page.NavigationEvent) {
			c.OnNavigation(ctx, ev)
		}))
	}

	c.mu.Lock()
	c.prev = c.store.Get()
	c.cancels = append(c.cancels, cancels...)
	c.mu.Unlock()

	if _, err := c.cron.AddFunc(c.cfg.CacheSweepSpec, c.cache.Sweep); err != nil {
		return err
	}
	c.cron.Start()
	c.logger.Info("engine core started")
	return nil
}

// Stop detaches from all sources and stops the schedule. Pending
// resolutions finish on their own; their results go nowhere.
func (c *Core) Stop() {
	c.mu.Lock()
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	c.cron.Stop()
}

// HandleToggle processes one raw toggle-protocol message. Malformed
// messages are dropped silently, per the protocol contract.
func (c *Core) HandleToggle(ctx context.Context, raw []byte) {
	msg, ok := settings.ParseToggle(raw)
	if !ok {
		c.logger.Debug("malformed toggle message ignored")
		return
	}
	if _, err := c.store.ApplyToggle(ctx, msg); err != nil {
		c.logger.Error("toggle %s=%v not applied: %v", msg.Feature, msg.Enabled(), err)
	}
}

// OnNavigation routes one detected content swap to the affected features.
func (c *Core) OnNavigation(ctx context.Context, ev page.NavigationEvent) {
	switch ev.Kind {
	case page.NavVideoChange:
		c.onVideoChange(ctx, ev)
	case page.NavMutation:
		c.onMutation(ctx, ev)
	}
}

func (c *Core) onVideoChange(ctx context.Context, ev page.NavigationEvent) {
	if ev.VideoID == "" {
		return
	}
	scope := page.Scope{Surface: ev.Surface}

	c.trigger(ctx, resolver.NewRequest(resolver.FeatureTitle, resolver.SubjectVideo, ev.VideoID, scope))
	c.trigger(ctx, resolver.NewRequest(resolver.FeatureDescription, resolver.SubjectVideo, ev.VideoID, scope))
	c.trigger(ctx, resolver.NewRequest(resolver.FeatureAudioTrack, resolver.SubjectPlayerState, ev.VideoID, scope))
	c.trigger(ctx, resolver.NewRequest(resolver.FeatureSubtitlesTrack, resolver.SubjectPlayerState, ev.VideoID, scope))

	if ev.ChannelID != "" {
		req := resolver.NewRequest(resolver.FeatureChannelName, resolver.SubjectChannel, ev.ChannelID, scope)
		req.PlayerVideoID = ev.VideoID
		c.trigger(ctx, req)
	}
}

func (c *Core) onMutation(ctx context.Context, ev page.NavigationEvent) {
	if ev.Surface == page.SurfaceChannel && (ev.ChannelID != "" || ev.ChannelHandle != "") {
		go c.triggerChannelHeader(ctx, ev)
	}

	for _, row := range ev.Rows {
		if row.VideoID == "" || row.ElementID == "" {
			continue
		}
		scope := page.Scope{Surface: ev.Surface, ElementID: row.ElementID}
		c.trigger(ctx, resolver.NewRequest(resolver.FeatureTitle, resolver.SubjectVideo, row.VideoID, scope))
		if ev.Surface == page.SurfaceSearch {
			c.trigger(ctx, resolver.NewRequest(resolver.FeatureDescription, resolver.SubjectVideo, row.VideoID, scope))
		}
	}
}

// triggerChannelHeader resolves the channel id when the URL only carried
// a handle, then kicks off the channel name and description corrections.
func (c *Core) triggerChannelHeader(ctx context.Context, ev page.NavigationEvent) {
	channelID := ev.ChannelID
	if channelID == "" {
		id, err := c.channel.ResolveChannelID(ctx, ev.ChannelHandle)
		if err != nil {
			c.logger.Debug("channel id for %q not resolvable: %v", ev.ChannelHandle, err)
			return
		}
		channelID = id
	}

	scope := page.Scope{Surface: page.SurfaceChannel}
	c.trigger(ctx, resolver.NewRequest(resolver.FeatureChannelName, resolver.SubjectChannel, channelID, scope))
	c.trigger(ctx, resolver.NewRequest(resolver.FeatureDescription, resolver.SubjectChannel, channelID, scope))
}

func (c *Core) trigger(ctx context.Context, req resolver.Request) {
	if req.Scope.ElementID == "" {
		c.mu.Lock()
		c.lastPrimary[req.Feature] = req
		c.mu.Unlock()
	}
	c.watch.Trigger(ctx, req)
}

// onSettingsChange re-runs resolution for features that just switched on,
// against the subject currently on screen. Waiting for the next
// navigation would leave the translated value visible indefinitely.
func (c *Core) onSettingsChange(ctx context.Context, next settings.Settings) {
	c.mu.Lock()
	prev := c.prev
	c.prev = next
	var reruns []resolver.Request
	for _, f := range resolver.Features() {
		if next.Enabled(f) && !prev.Enabled(f) {
			if last, ok := c.lastPrimary[f]; ok {
				req := resolver.NewRequest(last.Feature, last.SubjectKind, last.SubjectID, last.Scope)
				req.PlayerVideoID = last.PlayerVideoID
				reruns = append(reruns, req)
			}
		}
	}
	c.mu.Unlock()

	for _, req := range reruns {
		c.logger.Info("%s toggled on; re-running for %q", req.Feature, req.SubjectID)
		c.watch.Trigger(ctx, req)
	}
}
