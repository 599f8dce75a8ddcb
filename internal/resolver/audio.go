package resolver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// originalTrackMarker is the literal the decoded descriptor of the
// untranslated audio track carries.
const originalTrackMarker = "original"

// AudioResolver switches the active player back to the untranslated audio
// track. Purely a live-player operation; no remote lookup is involved.
// The track identifiers are opaque base64 blobs whose decoded form
// embeds a language descriptor.
type AudioResolver struct {
	realm page.Realm
	// language returns the user's audio language preference; "original"
	// (the default) selects the track marked as original.
	language func() string
	logger   *log.Logger
}

func NewAudioResolver(realm page.Realm, language func() string) *AudioResolver {
	return &AudioResolver{
		realm:    realm,
		language: language,
		logger:   log.ForChannel(log.ChannelAudio),
	}
}

func (r *AudioResolver) Feature() Feature { return FeatureAudioTrack }

func (r *AudioResolver) Resolve(ctx context.Context, req Request) Result {
	player, ok := r.realm.Player(playerID(req.Scope.Surface))
	if !ok {
		return Failed(NewError(ErrMissingElement, "player element not found").WithContext("playerId", playerID(req.Scope.Surface)))
	}

	tracks, err := player.AudioTracks()
	if err != nil {
		return Failed(WrapError(err, ErrMissingElement, "audio track list unavailable"))
	}

	marker := r.marker()
	for _, track := range tracks {
		decoded, err := decodeTrackID(track.ID)
		if err != nil {
			r.logger.Debug("track id %q: %v", track.ID, err)
			continue
		}
		if !strings.Contains(decoded, marker) {
			continue
		}
		if err := player.SetAudioTrack(track.ID); err != nil {
			return Failed(WrapError(err, ErrMissingElement, "track selection rejected").WithContext("track", track.DisplayName))
		}
		r.logger.Info("selected audio track %q", track.DisplayName)
		return Found(track.ID)
	}

	// No matching track. Playback is left untouched.
	return NotFoundResult()
}

func (r *AudioResolver) marker() string {
	pref := ""
	if r.language != nil {
		pref = strings.TrimSpace(r.language())
	}
	if pref == "" || pref == originalTrackMarker {
		return originalTrackMarker
	}
	return fmt.Sprintf("lang=%s", pref)
}

// decodeTrackID unwraps the base64 layer of an audio track identifier.
// YouTube emits both padded and raw, standard and URL-safe alphabets
// depending on the client, so all four are tried.
func decodeTrackID(id string) (string, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(id); err == nil {
			return string(raw), nil
		}
	}
	return "", NewError(ErrDecodeFailure, "malformed track identifier")
}
