package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the InnerTube endpoint of the live page's origin.
	DefaultBaseURL = "https://www.youtube.com/youtubei/v1"

	clientName = "WEB"

	// ChannelDescriptionLocale is the interface language requested for
	// channel descriptions. Esperanto has no YouTube UI localization, so
	// the API answers with the authored description rather than an
	// automatic translation.
	ChannelDescriptionLocale = "eo"
)

var (
	// ErrMissingClientVersion means the page has not finished
	// bootstrapping its InnerTube state. Hard failure for the remote
	// path; never retried.
	ErrMissingClientVersion = errors.New("innertube: client version token not available")

	// ErrNotFound means the response was well-formed but lacked the
	// requested field.
	ErrNotFound = errors.New("innertube: field not present in response")
)

// TokenSource probes the page-global client-version token. The boolean is
// false while the page has not bootstrapped yet.
type TokenSource func() (string, bool)

// Client calls the InnerTube metadata API with the live page's client
// identity. Thread-safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      TokenSource
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
	}
}

// VideoTitle fetches the untranslated title of a video.
func (c *Client) VideoTitle(ctx context.Context, videoID string) (string, error) {
	details, err := c.video(ctx, videoID)
	if err != nil {
		return "", err
	}
	if details.Title == "" {
		return "", ErrNotFound
	}
	return details.Title, nil
}

// VideoDescription fetches the untranslated description of a video.
func (c *Client) VideoDescription(ctx context.Context, videoID string) (string, error) {
	details, err := c.video(ctx, videoID)
	if err != nil {
		return "", err
	}
	if details.ShortDescription == "" {
		return "", ErrNotFound
	}
	return details.ShortDescription, nil
}

// ChannelName fetches the untranslated channel title.
func (c *Client) ChannelName(ctx context.Context, channelID string) (string, error) {
	meta, err := c.browse(ctx, channelID, "")
	if err != nil {
		return "", err
	}
	if meta.Title == "" {
		return "", ErrNotFound
	}
	return meta.Title, nil
}

// ChannelDescription fetches the channel description, pinning the
// interface language to a locale without localized translations so the
// authored text comes back.
func (c *Client) ChannelDescription(ctx context.Context, channelID string) (string, error) {
	meta, err := c.browse(ctx, channelID, ChannelDescriptionLocale)
	if err != nil {
		return "", err
	}
	if meta.Description == "" {
		return "", ErrNotFound
	}
	return meta.Description, nil
}

func (c *Client) video(ctx context.Context, videoID string) (*videoDetails, error) {
	payload := playerRequest{
		Context: c.clientContext(""),
		VideoID: videoID,
	}
	version, ok := c.token()
	if !ok {
		return nil, ErrMissingClientVersion
	}
	payload.Context.Client.ClientVersion = version

	var resp playerResponse
	if err := c.makeRequest(ctx, "/player", payload, &resp); err != nil {
		return nil, err
	}
	if resp.VideoDetails == nil || resp.VideoDetails.VideoID != videoID {
		return nil, ErrNotFound
	}
	return resp.VideoDetails, nil
}

func (c *Client) browse(ctx context.Context, channelID, hl string) (*channelMetadata, error) {
	payload := browseRequest{
		Context:  c.clientContext(hl),
		BrowseID: channelID,
	}
	version, ok := c.token()
	if !ok {
		return nil, ErrMissingClientVersion
	}
	payload.Context.Client.ClientVersion = version

	var resp browseResponse
	if err := c.makeRequest(ctx, "/browse", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Metadata == nil || resp.Metadata.ChannelMetadataRenderer == nil {
		return nil, ErrNotFound
	}
	return resp.Metadata.ChannelMetadataRenderer, nil
}

func (c *Client) clientContext(hl string) clientContext {
	return clientContext{Client: clientInfo{
		ClientName: clientName,
		Hl:         hl,
	}}
}

func (c *Client) makeRequest(ctx context.Context, path string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
