package settings

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/language"

	"github.com/ynt-app/youtube-no-translation/internal/resolver"
)

// OriginalLanguage is the default for both language preferences: follow
// whatever the video was authored in.
const OriginalLanguage = "original"

// Settings is the per-feature enablement record plus the two language
// preferences. The core treats it as read-only input.
type Settings struct {
	TitleTranslation       bool   `json:"titleTranslation"`
	AudioTranslation       bool   `json:"audioTranslation"`
	AudioLanguage          string `json:"audioLanguage"`
	DescriptionTranslation bool   `json:"descriptionTranslation"`
	SubtitlesTranslation   bool   `json:"subtitlesTranslation"`
	SubtitlesLanguage      string `json:"subtitlesLanguage"`
}

// Defaults is the first-install record.
func Defaults() Settings {
	return Settings{
		TitleTranslation:       true,
		AudioTranslation:       true,
		AudioLanguage:          OriginalLanguage,
		DescriptionTranslation: false,
		SubtitlesTranslation:   false,
		SubtitlesLanguage:      OriginalLanguage,
	}
}

func (s Settings) Validate() error {
	if err := validateLanguage(s.AudioLanguage); err != nil {
		return err
	}
	return validateLanguage(s.SubtitlesLanguage)
}

func validateLanguage(code string) error {
	if strings.TrimSpace(code) == "" || code == OriginalLanguage {
		return nil
	}
	_, err := language.Parse(code)
	return err
}

// Enabled reports whether the feature's correction is switched on.
// Channel names follow the title toggle; the record has no separate flag
// for them.
func (s Settings) Enabled(f resolver.Feature) bool {
	switch f {
	case resolver.FeatureTitle, resolver.FeatureChannelName:
		return s.TitleTranslation
	case resolver.FeatureAudioTrack:
		return s.AudioTranslation
	case resolver.FeatureDescription:
		return s.DescriptionTranslation
	case resolver.FeatureSubtitlesTrack:
		return s.SubtitlesTranslation
	default:
		return false
	}
}

const toggleAction = "toggleTranslation"

// toggleFeatures maps protocol feature names to resolver features. The
// protocol's "titles" also governs channel names.
var toggleFeatures = map[string][]resolver.Feature{
	"titles":      {resolver.FeatureTitle, resolver.FeatureChannelName},
	"audio":       {resolver.FeatureAudioTrack},
	"description": {resolver.FeatureDescription},
	"subtitles":   {resolver.FeatureSubtitlesTrack},
}

// ToggleMessage is the UI-to-core protocol message.
type ToggleMessage struct {
	Action    string `json:"action"`
	Feature   string `json:"feature"`
	IsEnabled *bool  `json:"isEnabled"`
}

// Features returns the resolver features the toggle addresses.
func (m ToggleMessage) Features() []resolver.Feature {
	return toggleFeatures[m.Feature]
}

// Enabled returns the requested state.
func (m ToggleMessage) Enabled() bool {
	return m.IsEnabled != nil && *m.IsEnabled
}

// ParseToggle decodes and shape-checks a toggle message. Malformed input
// (wrong shape, wrong value types, unknown feature) yields ok == false
// and must be silently ignored by the caller.
func ParseToggle(data []byte) (ToggleMessage, bool) {
	var msg ToggleMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ToggleMessage{}, false
	}
	if msg.Action != toggleAction || msg.IsEnabled == nil {
		return ToggleMessage{}, false
	}
	if _, known := toggleFeatures[msg.Feature]; !known {
		return ToggleMessage{}, false
	}
	return msg, true
}
