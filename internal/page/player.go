package page

import "context"

// PlayerID is the DOM id a live player is located by. YouTube swaps the
// underlying element across navigations, so handles are re-looked-up per
// resolution and never cached.
type PlayerID string

const (
	MoviePlayer  PlayerID = "movie_player"
	ShortsPlayer PlayerID = "shorts-player"
	EmbedPlayer  PlayerID = "c4-player"
)

// AudioTrack is one entry of the player's audio track list. ID is the
// opaque base64-encoded identifier YouTube attaches to each track; its
// decoded form carries a language descriptor.
type AudioTrack struct {
	ID          string
	DisplayName string
}

// CaptionTrack is one entry of the player's caption track list.
type CaptionTrack struct {
	LanguageCode string
	Kind         string
	DisplayName  string
	VssID        string
	// TranslationLanguage is non-empty when the track is an on-the-fly
	// translation rather than an authored track.
	TranslationLanguage string
}

// IsASR reports whether the track was produced by automatic speech
// recognition. The ASR track's language is the ground-truth original
// language of the video.
func (t CaptionTrack) IsASR() bool { return t.Kind == "asr" }

// IsTranslated reports whether the track is an automatic translation.
func (t CaptionTrack) IsTranslated() bool { return t.TranslationLanguage != "" }

// VideoDetails is the untranslated metadata block of a player response.
// Every field is optional; the response is untrusted page data.
type VideoDetails struct {
	VideoID          string `json:"videoId"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Author           string `json:"author"`
	ChannelID        string `json:"channelId"`
}

// PlayerResponse is the player's already-loaded response object. Only the
// fields the resolvers extract are modeled.
type PlayerResponse struct {
	VideoDetails *VideoDetails `json:"videoDetails,omitempty"`
}

// Player is a non-owned handle to a live player object. All methods can
// fail at any time: the underlying element may have been replaced or torn
// down by the page between lookup and call.
type Player interface {
	ID() PlayerID

	// VideoID returns the id of the video currently loaded in the player.
	VideoID() (string, error)

	// Response returns the player's loaded response object, or an error
	// when the player has not finished loading one.
	Response() (*PlayerResponse, error)

	AudioTracks() ([]AudioTrack, error)
	SetAudioTrack(id string) error

	CaptionTracks() ([]CaptionTrack, error)
	// ActiveCaptionTrack returns nil when no caption track is enabled.
	ActiveCaptionTrack() (*CaptionTrack, error)
	SetCaptionTrack(vssID string) error
	DisableCaptions() error

	// LoadVideo cues the given video into the player. Used only by hidden
	// probe instances.
	LoadVideo(videoID string) error

	// Ready returns a channel closed once the player has metadata for the
	// currently loaded video. A player that never becomes ready simply
	// never closes it; callers bound the wait themselves.
	Ready() <-chan struct{}
}

// Realm is the engine's window into the hosting page. Implementations live
// outside this module (the embedder supplies one, typically backed by a
// DevTools connection); tests supply fakes.
type Realm interface {
	// InjectScript inserts source into the page's own execution realm and
	// removes the transient script element right after insertion. Results
	// of the injected snippet arrive asynchronously as bridge events, never
	// through this call.
	InjectScript(ctx context.Context, source string, attrs map[string]string) error

	// Player looks up a live player by DOM id. The second result is false
	// when no such element exists.
	Player(id PlayerID) (Player, bool)

	// ClientVersion probes the page-global InnerTube client-version token.
	// Absence means the page has not finished bootstrapping; it is a
	// first-class outcome, not an error.
	ClientVersion() (string, bool)

	// CreateHiddenPlayer builds a muted, invisible player instance for
	// probe fallbacks. The returned teardown removes it from the page.
	CreateHiddenPlayer(ctx context.Context) (Player, func(), error)
}
