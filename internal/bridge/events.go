package bridge

// EventName is the DOM custom-event name a bridge payload travels under.
// The set is closed: every cross-realm message is one of these ten.
type EventName string

const (
	EventTitleData                  EventName = "ynt-title-data"
	EventDescriptionData            EventName = "ynt-description-data"
	EventChannelData                EventName = "ynt-channel-data"
	EventChannelIDInnerTube         EventName = "ynt-get-channel-id-inner-tube"
	EventChannelNameInnerTube       EventName = "ynt-get-channel-name-inner-tube"
	EventChannelDescInnerTube       EventName = "ynt-get-channel-description-inner-tube"
	EventBrowsingTitleInnerTube     EventName = "ynt-browsing-title-inner-tube-data"
	EventSearchDescriptionInnerTube EventName = "ynt-search-description-inner-tube-data"
	EventBrowsingTitleFallback      EventName = "ynt-browsing-title-fallback-data"
	EventSearchDescriptionData      EventName = "ynt-search-description-data"
)

// Event is one cross-realm message. Concrete variants exist per event name
// so the boundary stays an exhaustively-checked contract; the shared
// accessors let callers that only care about the outcome handle any
// variant uniformly.
type Event interface {
	Name() EventName
	// SubjectID is the video or channel id the event answers for.
	SubjectID() string
	// Value is the resolved original value, nil when nothing was found.
	Value() *string
	// Err carries the failure detail, empty on success.
	Err() string
}

type payload struct {
	Subject string  `json:"subjectId"`
	Val     *string `json:"value"`
	ErrMsg  string  `json:"error,omitempty"`
}

func (p payload) SubjectID() string { return p.Subject }
func (p payload) Value() *string    { return p.Val }
func (p payload) Err() string       { return p.ErrMsg }

type TitleData struct{ payload }

func (TitleData) Name() EventName { return EventTitleData }

type DescriptionData struct{ payload }

func (DescriptionData) Name() EventName { return EventDescriptionData }

type ChannelData struct{ payload }

func (ChannelData) Name() EventName { return EventChannelData }

type ChannelIDResult struct{ payload }

func (ChannelIDResult) Name() EventName { return EventChannelIDInnerTube }

type ChannelNameResult struct{ payload }

func (ChannelNameResult) Name() EventName { return EventChannelNameInnerTube }

type ChannelDescriptionResult struct{ payload }

func (ChannelDescriptionResult) Name() EventName { return EventChannelDescInnerTube }

type BrowsingTitleData struct{ payload }

func (BrowsingTitleData) Name() EventName { return EventBrowsingTitleInnerTube }

type SearchDescriptionInnerTubeData struct{ payload }

func (SearchDescriptionInnerTubeData) Name() EventName { return EventSearchDescriptionInnerTube }

type BrowsingTitleFallbackData struct{ payload }

func (BrowsingTitleFallbackData) Name() EventName { return EventBrowsingTitleFallback }

type SearchDescriptionData struct{ payload }

func (SearchDescriptionData) Name() EventName { return EventSearchDescriptionData }

// NewResult builds the success/not-found variant for the given event name.
// A nil value means the page found nothing for the subject.
func NewResult(name EventName, subjectID string, value *string) Event {
	return build(name, payload{Subject: subjectID, Val: value})
}

// NewFailure builds the error variant for the given event name.
func NewFailure(name EventName, subjectID string, errMsg string) Event {
	return build(name, payload{Subject: subjectID, ErrMsg: errMsg})
}

func build(name EventName, p payload) Event {
	switch name {
	case EventTitleData:
		return TitleData{p}
	case EventDescriptionData:
		return DescriptionData{p}
	case EventChannelData:
		return ChannelData{p}
	case EventChannelIDInnerTube:
		return ChannelIDResult{p}
	case EventChannelNameInnerTube:
		return ChannelNameResult{p}
	case EventChannelDescInnerTube:
		return ChannelDescriptionResult{p}
	case EventBrowsingTitleInnerTube:
		return BrowsingTitleData{p}
	case EventSearchDescriptionInnerTube:
		return SearchDescriptionInnerTubeData{p}
	case EventBrowsingTitleFallback:
		return BrowsingTitleFallbackData{p}
	case EventSearchDescriptionData:
		return SearchDescriptionData{p}
	default:
		// Unknown names never enter the system: the set above is closed.
		panic("bridge: unknown event name " + string(name))
	}
}
