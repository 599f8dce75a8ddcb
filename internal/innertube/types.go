package innertube

// Request/response shapes of the InnerTube JSON API. Responses are
// untrusted external data: every nested field is optional and extraction
// is defensive.

type clientInfo struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	Hl            string `json:"hl,omitempty"`
}

type clientContext struct {
	Client clientInfo `json:"client"`
}

type playerRequest struct {
	Context clientContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type browseRequest struct {
	Context  clientContext `json:"context"`
	BrowseID string        `json:"browseId"`
}

type videoDetails struct {
	VideoID          string `json:"videoId"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Author           string `json:"author"`
	ChannelID        string `json:"channelId"`
}

type playerResponse struct {
	VideoDetails *videoDetails `json:"videoDetails"`
}

type channelMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ExternalID  string `json:"externalId"`
}

type browseMetadata struct {
	ChannelMetadataRenderer *channelMetadata `json:"channelMetadataRenderer"`
}

type browseResponse struct {
	Metadata *browseMetadata `json:"metadata"`
}
