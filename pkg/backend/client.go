package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultPlugin is the plugin namespace used in call URLs.
const DefaultPlugin = "titlepanel"

// Client calls the backend over HTTP: every method is a POST of a JSON body
// to {BaseURL}/{Plugin}/{Method}.
//
// No client-side timeout is applied; the backend bounds its own work and
// callers cancel through the context.
type Client struct {
	baseURL    string
	plugin     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithPlugin sets the plugin namespace.
func WithPlugin(plugin string) ClientOption {
	return func(c *Client) {
		if plugin != "" {
			c.plugin = plugin
		}
	}
}

// NewClient creates a backend client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		plugin:     DefaultPlugin,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Backend = (*Client)(nil)

// request is the call body. contentScriptQuery is always sent; the host
// RPC bridge expects it.
type request struct {
	AppID              *int   `json:"appid,omitempty"`
	Username           string `json:"username,omitempty"`
	Password           string `json:"password,omitempty"`
	ContentScriptQuery string `json:"contentScriptQuery"`
}

func itemRequest(itemID int) request {
	return request{AppID: &itemID}
}

// call performs one RPC and decodes the payload into out. out may be nil
// for fire-and-forget calls.
func (c *Client) call(ctx context.Context, method string, body request, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return &TransportError{Method: method, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.plugin, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Method: method, Err: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	return Decode(method, raw, out)
}

// Decode parses a payload into out. Payloads arrive either as a JSON object
// or as a JSON string holding the object's text; both are accepted. Any
// failure is a *ProtocolError.
func Decode(method string, raw []byte, out any) error {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return &ProtocolError{Method: method, Err: fmt.Errorf("empty payload")}
	}

	if payload[0] == '"' {
		var text string
		if err := json.Unmarshal(payload, &text); err != nil {
			return &ProtocolError{Method: method, Payload: string(raw), Err: err}
		}
		payload = bytes.TrimSpace([]byte(text))
	}

	if len(payload) == 0 || payload[0] != '{' {
		return &ProtocolError{Method: method, Payload: string(raw), Err: fmt.Errorf("payload is not an object")}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ProtocolError{Method: method, Payload: string(raw), Err: err}
	}
	return nil
}

func (c *Client) HasItemForID(ctx context.Context, itemID int) (ExistsResult, error) {
	var out ExistsResult
	err := c.call(ctx, MethodHasItemForID, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) CheckAvailability(ctx context.Context, itemID int) (AvailabilityResult, error) {
	var out AvailabilityResult
	err := c.call(ctx, MethodCheckAvailability, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) CheckSecondaryCapability(ctx context.Context, itemID int) (CapabilityResult, error) {
	var out CapabilityResult
	err := c.call(ctx, MethodCheckSecondaryCapability, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) IsSecondaryFixApplied(ctx context.Context, itemID int) (FixAppliedResult, error) {
	var out FixAppliedResult
	err := c.call(ctx, MethodIsSecondaryFixApplied, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) StartAcquire(ctx context.Context, itemID int) (StartResult, error) {
	var out StartResult
	err := c.call(ctx, MethodStartAcquire, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) GetAcquireStatus(ctx context.Context, itemID int) (StatusResult, error) {
	var out StatusResult
	err := c.call(ctx, MethodGetAcquireStatus, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) RemoveItem(ctx context.Context, itemID int) (MessageResult, error) {
	var out MessageResult
	err := c.call(ctx, MethodRemoveItem, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) RequestItem(ctx context.Context, itemID int) (MessageResult, error) {
	var out MessageResult
	err := c.call(ctx, MethodRequestItem, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) PrefetchDLCs(ctx context.Context, itemID int) (MessageResult, error) {
	var out MessageResult
	err := c.call(ctx, MethodPrefetchDLCs, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) StartSecondaryFix(ctx context.Context, itemID int) (StartResult, error) {
	var out StartResult
	err := c.call(ctx, MethodStartSecondaryFix, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) GetSecondaryFixStatus(ctx context.Context, itemID int) (StatusResult, error) {
	var out StatusResult
	err := c.call(ctx, MethodGetSecondaryFixStatus, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) RemoveSecondaryFix(ctx context.Context, itemID int) (MessageResult, error) {
	var out MessageResult
	err := c.call(ctx, MethodRemoveSecondaryFix, itemRequest(itemID), &out)
	return out, err
}

func (c *Client) SaveCredentials(ctx context.Context, username, password string) (Envelope, error) {
	var out Envelope
	err := c.call(ctx, MethodSaveCredentials, request{Username: username, Password: password}, &out)
	return out, err
}

func (c *Client) IsUpdateDismissed(ctx context.Context) (UpdateResult, error) {
	var out UpdateResult
	err := c.call(ctx, MethodIsUpdateDismissed, request{}, &out)
	return out, err
}

func (c *Client) GetUpdateMessage(ctx context.Context) (UpdateResult, error) {
	var out UpdateResult
	err := c.call(ctx, MethodGetUpdateMessage, request{}, &out)
	return out, err
}

func (c *Client) CheckForUpdatesNow(ctx context.Context) (UpdateResult, error) {
	var out UpdateResult
	err := c.call(ctx, MethodCheckForUpdatesNow, request{}, &out)
	return out, err
}

func (c *Client) DownloadAndApplyUpdate(ctx context.Context) (MessageResult, error) {
	var out MessageResult
	err := c.call(ctx, MethodDownloadAndApplyUpdate, request{}, &out)
	return out, err
}

func (c *Client) DismissUpdate(ctx context.Context) (Envelope, error) {
	var out Envelope
	err := c.call(ctx, MethodDismissUpdate, request{}, &out)
	return out, err
}

func (c *Client) RestartHostProcess(ctx context.Context) error {
	return c.call(ctx, MethodRestartHostProcess, request{}, nil)
}
