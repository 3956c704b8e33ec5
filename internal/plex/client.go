package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// Product and Version identify this app in X-Plex-* headers.
	Product = "TrackAutoTool"
	Version = "1.0.0"

	// DefaultTVURL is the plex.tv v2 API base.
	DefaultTVURL = "https://plex.tv/api/v2"
)

// Client talks to plex.tv and to individual Plex Media Servers. Media server
// methods take the server base URL explicitly since the active server is a
// per-session choice.
type Client struct {
	// TVURL is the plex.tv API base, overridable in tests.
	TVURL string

	clientID        string
	identityTimeout time.Duration
	client          *resty.Client
}

func NewClient(clientID string, timeout, identityTimeout time.Duration) *Client {
	return &Client{
		TVURL:           DefaultTVURL,
		clientID:        clientID,
		identityTimeout: identityTimeout,
		client:          resty.New().SetTimeout(timeout),
	}
}

func (c *Client) headers(token string) map[string]string {
	h := map[string]string{
		"X-Plex-Client-Identifier": c.clientID,
		"X-Plex-Product":           Product,
		"X-Plex-Version":           Version,
		"X-Plex-Platform":          "Web",
		"X-Plex-Device":            "Web",
		"X-Plex-Device-Name":       Product + " (Web)",
		"Accept":                   "application/json",
	}
	if token != "" {
		h["X-Plex-Token"] = token
	}
	return h
}

// ---------------------------------------------------------------------------
// plex.tv: PIN OAuth flow

// CreatePin requests a new PIN for the OAuth flow.
func (c *Client) CreatePin() (*Pin, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers("")).
		SetQueryParam("strong", "true").
		Post(c.TVURL + "/pins")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error creating PIN: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to create PIN: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var pin Pin
	if err := json.Unmarshal(resp.Body(), &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// CheckPin polls a PIN; AuthToken is populated once the user completed login.
func (c *Client) CheckPin(pinID int, code string) (*Pin, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers("")).
		SetQueryParam("code", code).
		Get(fmt.Sprintf("%s/pins/%d", c.TVURL, pinID))
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error checking PIN: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to check PIN: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var pin Pin
	if err := json.Unmarshal(resp.Body(), &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// ---------------------------------------------------------------------------
// plex.tv: accounts

// GetUser validates a token and returns the account behind it.
func (c *Client) GetUser(token string) (*User, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		Get(c.TVURL + "/user")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting user: %v", err), Err: err}
	}
	if resp.StatusCode() == 401 {
		return nil, &AuthError{Message: "invalid authentication token"}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get user: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var user User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetHomeUsers lists the managed/home users of the account.
func (c *Client) GetHomeUsers(token string) ([]HomeUser, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		Get(c.TVURL + "/home/users")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting home users: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get home users: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data struct {
		Users []HomeUser `json:"users"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

// SwitchHomeUser switches to a managed user and returns the new token.
func (c *Client) SwitchHomeUser(token, userUUID, pin string) (string, error) {
	req := c.client.R().SetHeaders(c.headers(token))
	if pin != "" {
		req.SetFormData(map[string]string{"pin": pin})
	}
	resp, err := req.Post(fmt.Sprintf("%s/home/users/%s/switch", c.TVURL, userUUID))
	if err != nil {
		return "", &ConnectionError{Message: fmt.Sprintf("connection error switching user: %v", err), Err: err}
	}
	if resp.IsError() {
		return "", &ClientError{Message: fmt.Sprintf("failed to switch user: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data struct {
		AuthToken string `json:"authToken"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return "", err
	}
	return data.AuthToken, nil
}

// ---------------------------------------------------------------------------
// plex.tv: resources

// GetResources lists resources (servers, players, ...) available to the user.
func (c *Client) GetResources(token string) ([]Server, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		SetQueryParam("includeRelay", "0").
		Get(c.TVURL + "/resources")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting resources: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get resources: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var servers []Server
	if err := json.Unmarshal(resp.Body(), &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// GetServers lists the media servers only.
func (c *Client) GetServers(token string) ([]Server, error) {
	resources, err := c.GetResources(token)
	if err != nil {
		return nil, err
	}
	var servers []Server
	for _, r := range resources {
		if r.IsMediaServer() {
			servers = append(servers, r)
		}
	}
	return servers, nil
}

// ---------------------------------------------------------------------------
// media server

// CheckServerIdentity probes a server and returns its machine identifier.
// Uses a short timeout so an unreachable server fails fast.
func (c *Client) CheckServerIdentity(serverURL, token string) (*ServerIdentity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.identityTimeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(c.headers(token)).
		Get(strings.TrimRight(serverURL, "/") + "/identity")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("cannot connect to server: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("server identity check failed: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data identityResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	return &data.MediaContainer, nil
}

// GetLibraries lists the library sections of a server.
func (c *Client) GetLibraries(serverURL, token string) ([]Library, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		Get(serverURL + "/library/sections")
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting libraries: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get libraries: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data containerResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	return data.MediaContainer.Directory, nil
}

// GetLibraryItems fetches the top-level contents of a library section.
func (c *Client) GetLibraryItems(serverURL, token, libraryKey string) (*MediaContainer, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		Get(fmt.Sprintf("%s/library/sections/%s/all", serverURL, libraryKey))
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting library items: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get library items: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data containerResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	return &data.MediaContainer, nil
}

// GetMetadata fetches one item with full media/part/stream info. Returns
// (nil, nil) when the server answers with an empty container.
func (c *Client) GetMetadata(serverURL, token, ratingKey string) (*MediaItem, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		SetQueryParams(map[string]string{
			"checkFiles":      "1",
			"includeElements": "Stream",
		}).
		Get(fmt.Sprintf("%s/library/metadata/%s", serverURL, ratingKey))
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting metadata: %v", err), Err: err}
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get metadata: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data containerResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	if len(data.MediaContainer.Metadata) == 0 {
		return nil, nil
	}
	return &data.MediaContainer.Metadata[0], nil
}

// GetChildren fetches direct children (seasons of a show, episodes of a season).
func (c *Client) GetChildren(serverURL, token, ratingKey string) ([]MediaItem, error) {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		Get(fmt.Sprintf("%s/library/metadata/%s/children", serverURL, ratingKey))
	if err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("connection error getting children: %v", err), Err: err}
	}
	if resp.IsError() {
		return nil, &ClientError{Message: fmt.Sprintf("failed to get children: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}

	var data containerResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, err
	}
	return data.MediaContainer.Metadata, nil
}

// ---------------------------------------------------------------------------
// media server: stream selection

// SetAudioStream makes the given audio stream the active one for a part.
func (c *Client) SetAudioStream(serverURL, token string, partID, streamID int) error {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		SetQueryParams(map[string]string{
			"audioStreamID": strconv.Itoa(streamID),
			"allParts":      "1",
		}).
		Put(fmt.Sprintf("%s/library/parts/%d", serverURL, partID))
	if err != nil {
		return &ConnectionError{Message: fmt.Sprintf("connection error setting audio stream: %v", err), Err: err}
	}
	if resp.IsError() {
		return &ClientError{Message: fmt.Sprintf("failed to set audio stream: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}
	return nil
}

// SetSubtitleStream makes the given subtitle stream active, or disables
// subtitles entirely when streamID is 0.
func (c *Client) SetSubtitleStream(serverURL, token string, partID, streamID int) error {
	resp, err := c.client.R().
		SetHeaders(c.headers(token)).
		SetQueryParams(map[string]string{
			"subtitleStreamID": strconv.Itoa(streamID),
			"allParts":         "1",
		}).
		Put(fmt.Sprintf("%s/library/parts/%d", serverURL, partID))
	if err != nil {
		return &ConnectionError{Message: fmt.Sprintf("connection error setting subtitle stream: %v", err), Err: err}
	}
	if resp.IsError() {
		return &ClientError{Message: fmt.Sprintf("failed to set subtitle stream: HTTP %d", resp.StatusCode()), StatusCode: resp.StatusCode()}
	}
	return nil
}
