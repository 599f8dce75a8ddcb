package resolver

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// SubtitlesResolver moves an active caption track back to the original
// language. Purely a live-player operation.
//
// The ASR track establishes the ground-truth original language; a manual
// (non-ASR, non-translated) track in that language is preferred. When no
// such manual track exists, captions are disabled outright: a translated
// caption is considered strictly worse than none. That trade-off is a
// deliberate product decision.
type SubtitlesResolver struct {
	realm page.Realm
	// language returns the user's subtitles language preference;
	// "original" (the default) follows the ASR track's language.
	language func() string
	logger   *log.Logger
}

func NewSubtitlesResolver(realm page.Realm, language func() string) *SubtitlesResolver {
	return &SubtitlesResolver{
		realm:    realm,
		language: language,
		logger:   log.ForChannel(log.ChannelSubtitles),
	}
}

func (r *SubtitlesResolver) Feature() Feature { return FeatureSubtitlesTrack }

func (r *SubtitlesResolver) Resolve(ctx context.Context, req Request) Result {
	player, ok := r.realm.Player(playerID(req.Scope.Surface))
	if !ok {
		return Failed(NewError(ErrMissingElement, "player element not found").WithContext("playerId", playerID(req.Scope.Surface)))
	}

	active, err := player.ActiveCaptionTrack()
	if err != nil {
		return Failed(WrapError(err, ErrMissingElement, "caption state unavailable"))
	}
	if active == nil {
		// Captions are off; nothing to correct.
		return Found("")
	}

	tracks, err := player.CaptionTracks()
	if err != nil {
		return Failed(WrapError(err, ErrMissingElement, "caption track list unavailable"))
	}

	targetLang := r.targetLanguage(tracks)
	if targetLang == "" {
		r.logger.Debug("no ASR track; original language unknown")
		return NotFoundResult()
	}

	manual := findManualTrack(tracks, targetLang)
	if manual == nil {
		r.logger.Info("no manual %s track; disabling captions", targetLang)
		if err := player.DisableCaptions(); err != nil {
			return Failed(WrapError(err, ErrMissingElement, "could not disable captions"))
		}
		return Found("")
	}

	if active.VssID == manual.VssID ||
		(!active.IsASR() && !active.IsTranslated() && sameLanguage(active.LanguageCode, targetLang)) {
		// Already on the right track.
		return Found(manual.VssID)
	}

	if err := player.SetCaptionTrack(manual.VssID); err != nil {
		return Failed(WrapError(err, ErrMissingElement, "caption selection rejected").WithContext("track", manual.DisplayName))
	}
	r.logger.Info("switched captions to %q", manual.DisplayName)
	return Found(manual.VssID)
}

// targetLanguage picks the language the captions should end up in: the
// user's explicit preference when set, otherwise the ASR track's language.
// Returns "" when the original language cannot be determined.
func (r *SubtitlesResolver) targetLanguage(tracks []page.CaptionTrack) string {
	if r.language != nil {
		if pref := strings.TrimSpace(r.language()); pref != "" && pref != "original" {
			return pref
		}
	}
	for _, t := range tracks {
		if t.IsASR() {
			return t.LanguageCode
		}
	}
	return ""
}

func findManualTrack(tracks []page.CaptionTrack, lang string) *page.CaptionTrack {
	for i := range tracks {
		t := &tracks[i]
		if t.IsASR() || t.IsTranslated() {
			continue
		}
		if sameLanguage(t.LanguageCode, lang) {
			return t
		}
	}
	return nil
}

// sameLanguage compares two BCP 47 codes by base language, so "en" matches
// "en-US" but not "es".
func sameLanguage(a, b string) bool {
	if a == b {
		return true
	}
	baseA, confA := language.Make(a).Base()
	baseB, confB := language.Make(b).Base()
	if confA == language.No || confB == language.No {
		return false
	}
	return baseA == baseB
}
