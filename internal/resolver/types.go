package resolver

import (
	"context"

	"github.com/google/uuid"

	"github.com/ynt-app/youtube-no-translation/internal/page"
)

// Feature tags the kind of localized value a resolution restores.
type Feature string

const (
	FeatureTitle          Feature = "title"
	FeatureDescription    Feature = "description"
	FeatureChannelName    Feature = "channelName"
	FeatureAudioTrack     Feature = "audioTrack"
	FeatureSubtitlesTrack Feature = "subtitlesTrack"
)

// Features lists every feature in a stable order.
func Features() []Feature {
	return []Feature{
		FeatureTitle,
		FeatureDescription,
		FeatureChannelName,
		FeatureAudioTrack,
		FeatureSubtitlesTrack,
	}
}

// SubjectKind says what the subject id identifies.
type SubjectKind int

const (
	// SubjectVideo is a video id.
	SubjectVideo SubjectKind = iota
	// SubjectChannel is a channel id.
	SubjectChannel
	// SubjectPlayerState means the resolution operates on in-page player
	// state and carries no remote-addressable id.
	SubjectPlayerState
)

// Request identifies a unit of resolution work. Created per navigation
// event or per visible row; superseded requests are simply never applied.
type Request struct {
	ID          uuid.UUID
	Feature     Feature
	SubjectKind SubjectKind
	SubjectID   string
	Scope       page.Scope

	// PlayerVideoID is the video the active player is expected to hold,
	// used by same-context reads when the subject itself is not a video
	// (channel name on a watch page).
	PlayerVideoID string
}

func NewRequest(feature Feature, kind SubjectKind, subjectID string, scope page.Scope) Request {
	return Request{
		ID:          uuid.New(),
		Feature:     feature,
		SubjectKind: kind,
		SubjectID:   subjectID,
		Scope:       scope,
	}
}

type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeError
	// OutcomeSkipped marks a resolution that never ran, e.g. because the
	// feature is switched off. Unlike NotFound it earns no retry.
	OutcomeSkipped
)

// Result is the tagged outcome of one resolution. Immutable once
// produced; never partially applied.
type Result struct {
	Outcome Outcome
	Value   string
	Err     error
}

func Found(value string) Result {
	return Result{Outcome: OutcomeFound, Value: value}
}

func NotFoundResult() Result {
	return Result{Outcome: OutcomeNotFound}
}

func Failed(err error) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

func SkippedResult() Result {
	return Result{Outcome: OutcomeSkipped}
}

func (r Result) IsFound() bool { return r.Outcome == OutcomeFound }

// Resolver derives the original value for one feature through that
// feature's fallback chain. Failures never escape Resolve; they come back
// as error results.
type Resolver interface {
	Feature() Feature
	Resolve(ctx context.Context, req Request) Result
}

// playerID maps a surface to the DOM id its player lives under.
func playerID(s page.Surface) page.PlayerID {
	switch s {
	case page.SurfaceShorts:
		return page.ShortsPlayer
	case page.SurfaceEmbed:
		return page.EmbedPlayer
	default:
		return page.MoviePlayer
	}
}
