package page

// Surface names the kind of page the user is currently on. List-based
// surfaces render many subjects at once and are eligible for the hidden
// probe fallback.
type Surface string

const (
	SurfaceWatch   Surface = "watch"
	SurfaceShorts  Surface = "shorts"
	SurfaceSearch  Surface = "search"
	SurfaceChannel Surface = "channel"
	SurfaceEmbed   Surface = "embed"
)

// IsList reports whether the surface renders subjects as rows rather than
// through the active player.
func (s Surface) IsList() bool {
	return s == SurfaceSearch || s == SurfaceChannel
}

// Scope pins a resolution to the DOM location its result is applied to.
// An empty ElementID means the primary surface (document title, active
// player metadata panel).
type Scope struct {
	Surface   Surface
	ElementID string
}

type NavigationKind int

const (
	// NavVideoChange fires when the active player's video identity changed
	// (the player's own data-change event).
	NavVideoChange NavigationKind = iota
	// NavMutation fires when list rows appeared or changed without any
	// player event (search results, channel grids).
	NavMutation
)

// ListRow is one rendered row of a list surface.
type ListRow struct {
	ElementID string
	VideoID   string
}

// NavigationEvent is one detected content swap inside the single-page app.
type NavigationEvent struct {
	Kind    NavigationKind
	Surface Surface

	// VideoID is set for NavVideoChange.
	VideoID string
	// ChannelID is set when the navigation landed on a channel page or the
	// watch page exposes the uploader's id.
	ChannelID string
	// ChannelHandle is the @handle from the URL when the page exposes no
	// channel id yet; the id is then looked up through the bridge.
	ChannelHandle string
	// Rows is set for NavMutation.
	Rows []ListRow
}

// NavigationSource delivers navigation events. Subscribe returns a cancel
// func; after cancel returns no further calls to fn are made.
type NavigationSource interface {
	Subscribe(fn func(NavigationEvent)) (cancel func())
}
