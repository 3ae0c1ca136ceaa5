// Package hanna implements the Hanna Cloud GraphQL API client used by the
// polling coordinator: credential encryption, token lifecycle, and the
// Devices / GetLastDeviceReading queries.
package hanna

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultBaseURL is the production API root. Overridable for tests.
const DefaultBaseURL = "https://hannacloud.com/api"

const (
	authTimeout  = 15 * time.Second
	queryTimeout = 10 * time.Second
)

// The service gates on browser-looking headers; these values are what the
// web dashboard sends and must be reproduced verbatim.
const (
	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
	siteOrigin    = "https://hannacloud.com"
	loginPage     = "https://hannacloud.com/login"
	dashboardPage = "https://hannacloud.com/dashboard"
)

// Client talks to the Hanna Cloud API. It holds one mutable piece of state,
// the bearer token, which is only written from the Authenticate path. A
// Client is not safe for concurrent use; the coordinator runs one cycle at a
// time so this never comes up in practice.
type Client struct {
	// HTTPClient is the shared transport, injected by the owner. Per-call
	// deadlines come from request contexts, not from this client.
	HTTPClient *http.Client
	// BaseURL is the API root without trailing slash.
	BaseURL string

	email    string
	password string
	token    string
}

// NewClient builds a client for the given account. httpClient may be nil, in
// which case a default client is used.
func NewClient(httpClient *http.Client, email, password string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    DefaultBaseURL,
		email:      email,
		password:   password,
	}
}

// Token returns the currently held bearer token, empty when not logged in.
func (c *Client) Token() string { return c.token }

type graphqlError struct {
	Message string `json:"message"`
}

// Authenticate performs the Login query with freshly encrypted credentials
// and stores the bearer token on success. Every failure mode — cipher setup,
// transport error, timeout, non-200 status, GraphQL errors, malformed JSON,
// missing token — is reported through the return value, never a panic, and
// leaves no token stored.
func (c *Client) Authenticate(ctx context.Context) bool {
	cc, err := newCredentialCipher()
	if err != nil {
		// Configuration-level failure: abort before any network call.
		log.Printf("hanna: credential cipher unavailable: %v", err)
		return false
	}

	// Each credential gets its own IV.
	env := loginEnvelope(cc.Encrypt(c.email), cc.Encrypt(c.password))

	status, body, err := c.post(ctx, "/auth", env, authTimeout, c.authHeaders())
	if err != nil {
		log.Printf("hanna: authentication request failed: %v", err)
		return false
	}
	if status != http.StatusOK {
		log.Printf("hanna: authentication failed with status %d: %s", status, snippet(body))
		return false
	}

	var parsed struct {
		Data struct {
			Login loginResult `json:"login"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("hanna: malformed authentication response: %v", err)
		return false
	}
	if len(parsed.Errors) > 0 {
		log.Printf("hanna: authentication rejected: %s", parsed.Errors[0].Message)
		return false
	}
	token, ok := parsed.Data.Login.Token()
	if !ok {
		log.Printf("hanna: no token in login response")
		return false
	}
	c.token = token
	return true
}

// GetDevices returns the account's controllers, filtered to the known model
// groups. Failures are always *UpdateFailed.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	body, err := c.query(ctx, devicesEnvelope())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data *struct {
			Devices *[]Device `json:"devices"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &UpdateFailed{Reason: "malformed devices response", Err: err}
	}
	if parsed.Data != nil && parsed.Data.Devices != nil {
		return *parsed.Data.Devices, nil
	}
	if len(parsed.Errors) > 0 {
		return nil, failf("GraphQL error: %s", parsed.Errors[0].Message)
	}
	return nil, failf("unexpected devices response format")
}

// GetDeviceReadings returns the last reading per device, keyed by device ID.
// Duplicate IDs in the response overwrite earlier entries (last-wins). Same
// auth/retry/timeout policy as GetDevices.
func (c *Client) GetDeviceReadings(ctx context.Context, deviceIDs []string) (map[string]Reading, error) {
	body, err := c.query(ctx, readingsEnvelope(deviceIDs))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data *struct {
			LastDeviceReadings *[]Reading `json:"lastDeviceReadings"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &UpdateFailed{Reason: "malformed readings response", Err: err}
	}
	if parsed.Data == nil || parsed.Data.LastDeviceReadings == nil {
		if len(parsed.Errors) > 0 {
			return nil, failf("GraphQL error: %s", parsed.Errors[0].Message)
		}
		return nil, failf("unexpected readings response format")
	}

	list := *parsed.Data.LastDeviceReadings
	out := make(map[string]Reading, len(list))
	for _, r := range list {
		out[r.DeviceID] = r
	}
	return out, nil
}

// query issues an authenticated GraphQL POST. On 401/403 it clears the token
// and re-authenticates at most once before retrying the same request; a
// second rejection is terminal, never a loop.
func (c *Client) query(ctx context.Context, env envelope) ([]byte, error) {
	if c.token == "" {
		if !c.Authenticate(ctx) {
			return nil, failf("authentication failed")
		}
	}

	retried := false
	for {
		status, body, err := c.post(ctx, "/graphql", env, queryTimeout, c.queryHeaders())
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, failf("timeout on %s", env.OperationName)
			}
			return nil, &UpdateFailed{Reason: env.OperationName + " request failed", Err: err}
		}
		switch {
		case status == http.StatusOK:
			return body, nil
		case (status == http.StatusUnauthorized || status == http.StatusForbidden) && !retried:
			log.Printf("hanna: token rejected (HTTP %d), re-authenticating", status)
			c.token = ""
			if !c.Authenticate(ctx) {
				return nil, failf("re-authentication failed")
			}
			retried = true
		default:
			return nil, failf("%s failed: HTTP %d: %s", env.OperationName, status, snippet(body))
		}
	}
}

// post sends one JSON envelope with a per-call deadline and drains the body.
func (c *Client) post(ctx context.Context, path string, env envelope, timeout time.Duration, headers http.Header) (int, []byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header = headers

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) authHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "en-US,en;q=0.9,de;q=0.8")
	h.Set("Origin", siteOrigin)
	h.Set("Referer", loginPage)
	h.Set("User-Agent", userAgent)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Connection", "keep-alive")
	return h
}

func (c *Client) queryHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "*/*")
	h.Set("Authorization", "Bearer "+c.token)
	h.Set("Origin", siteOrigin)
	h.Set("Referer", dashboardPage)
	h.Set("User-Agent", userAgent)
	return h
}

// snippet truncates a response body for log/error messages.
func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
