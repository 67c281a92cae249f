package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/scorekeeper-service/internal/events"
	"github.com/preston-bernstein/scorekeeper-service/internal/http/handlers"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
)

const (
	defaultBaseURL     = "http://localhost:4000"
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBody       = 512
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client drives a running scorekeeper service over HTTP.
type Client struct {
	baseURL    string
	httpClient httpDoer
	stream     httpDoer
}

// NewClient constructs a client for baseURL. A nil httpClient gets a default with a timeout;
// event streams always use a client without one.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	c := &Client{
		baseURL:    normalizeBaseURL(baseURL),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		stream:     &http.Client{},
	}
	if httpClient != nil {
		c.httpClient = httpClient
		c.stream = httpClient
	}
	return c
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

// State fetches the current match state.
func (c *Client) State(ctx context.Context) (match.State, error) {
	var st match.State
	err := c.do(ctx, http.MethodGet, "/match", nil, &st)
	return st, err
}

// Palettes fetches the service's palette catalogue.
func (c *Client) Palettes(ctx context.Context) (palette.Catalogue, error) {
	var cat palette.Catalogue
	err := c.do(ctx, http.MethodGet, "/palettes", nil, &cat)
	return cat, err
}

// SideAction posts increment, decrement or reset for side.
func (c *Client) SideAction(ctx context.Context, side, action string) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPost, "/match/"+side+"/"+action, nil)
}

// ResetAll starts a new match.
func (c *Client) ResetAll(ctx context.Context) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPost, "/match/reset", nil)
}

// SelectPalette applies the palette with key.
func (c *Client) SelectPalette(ctx context.Context, key string) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, "/match/palette", map[string]string{"key": key})
}

// SetTeamName replaces side's display name.
func (c *Client) SetTeamName(ctx context.Context, side, name string) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, "/match/"+side+"/name", map[string]string{"name": name})
}

// SetQuickSetValue records the picker value for side.
func (c *Client) SetQuickSetValue(ctx context.Context, side string, value int) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, "/match/"+side+"/quickset", map[string]int{"value": value})
}

// ToggleSettings flips the settings overlay flag.
func (c *Client) ToggleSettings(ctx context.Context) (handlers.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPost, "/match/settings/toggle", nil)
}

// Follow reads the event stream and calls fn with the state carried by every
// snapshot and change event until ctx is done or the stream ends.
func (c *Client) Follow(ctx context.Context, fn func(match.State)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/match/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var name string
	var data bytes.Buffer
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				if err := dispatch(name, data.Bytes(), fn); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func dispatch(name string, data []byte, fn func(match.State)) error {
	switch name {
	case "snapshot":
		var st match.State
		if err := json.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		fn(st)
	case "change":
		var ev events.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode change: %w", err)
		}
		fn(ev.State)
	}
	return nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (handlers.MutationResponse, error) {
	var resp handlers.MutationResponse
	err := c.do(ctx, method, path, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// StatusError is returned when the service answers with a non-200 status.
type StatusError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *StatusError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("scorekeeper: %s (status %d, request %s)", e.Message, e.Status, e.RequestID)
	}
	return fmt.Sprintf("scorekeeper: %s (status %d)", e.Message, e.Status)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error     string `json:"error"`
		RequestID string `json:"requestId"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Status: resp.StatusCode, Message: msg, RequestID: body.RequestID}
}
