package resolver

import (
	"context"
	"sync"

	"github.com/ynt-app/youtube-no-translation/internal/page"
)

type fakePlayer struct {
	mu sync.Mutex

	id       page.PlayerID
	videoID  string
	videoErr error

	resp    *page.PlayerResponse
	respErr error

	audioTracks   []page.AudioTrack
	audioErr      error
	setAudioCalls []string
	setAudioErr   error

	captions        []page.CaptionTrack
	active          *page.CaptionTrack
	activeErr       error
	setCaptionCalls []string
	disableCalls    int

	loadCalls []string
	loadErr   error
	ready     chan struct{}
}

func newFakePlayer(id page.PlayerID) *fakePlayer {
	return &fakePlayer{id: id, ready: make(chan struct{})}
}

func (p *fakePlayer) ID() page.PlayerID { return p.id }

func (p *fakePlayer) VideoID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID, p.videoErr
}

func (p *fakePlayer) Response() (*page.PlayerResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resp, p.respErr
}

func (p *fakePlayer) AudioTracks() ([]page.AudioTrack, error) {
	return p.audioTracks, p.audioErr
}

func (p *fakePlayer) SetAudioTrack(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setAudioCalls = append(p.setAudioCalls, id)
	return p.setAudioErr
}

func (p *fakePlayer) CaptionTracks() ([]page.CaptionTrack, error) {
	return p.captions, nil
}

func (p *fakePlayer) ActiveCaptionTrack() (*page.CaptionTrack, error) {
	return p.active, p.activeErr
}

func (p *fakePlayer) SetCaptionTrack(vssID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setCaptionCalls = append(p.setCaptionCalls, vssID)
	return nil
}

func (p *fakePlayer) DisableCaptions() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableCalls++
	return nil
}

func (p *fakePlayer) LoadVideo(videoID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadCalls = append(p.loadCalls, videoID)
	return p.loadErr
}

func (p *fakePlayer) Ready() <-chan struct{} { return p.ready }

// loadSubject makes the fake look like a player that finished loading the
// given video, and fires the ready event.
func (p *fakePlayer) loadSubject(videoID string, resp *page.PlayerResponse) {
	p.mu.Lock()
	p.videoID = videoID
	p.resp = resp
	p.mu.Unlock()
	close(p.ready)
}

type injection struct {
	source string
	attrs  map[string]string
}

type fakeRealm struct {
	mu sync.Mutex

	players map[page.PlayerID]page.Player

	clientVersion string
	hasVersion    bool

	injections []injection
	injectErr  error
	// onInject simulates the page realm: it runs after an injection is
	// recorded, typically dispatching the completion event on the bus.
	onInject func(injection)

	hidden    *fakePlayer
	hiddenErr error
	tornDown  bool
}

func newFakeRealm() *fakeRealm {
	return &fakeRealm{players: make(map[page.PlayerID]page.Player)}
}

func (r *fakeRealm) InjectScript(_ context.Context, source string, attrs map[string]string) error {
	r.mu.Lock()
	inj := injection{source: source, attrs: attrs}
	r.injections = append(r.injections, inj)
	fn := r.onInject
	err := r.injectErr
	r.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil {
		fn(inj)
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hiddenErr != nil {
		return nil, nil, r.hiddenErr
	}
	return r.hidden, func() {
		r.mu.Lock()
		r.tornDown = true
		r.mu.Unlock()
	}, nil
}

func (r *fakeRealm) injectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.injections)
}
