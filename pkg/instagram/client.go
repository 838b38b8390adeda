package instagram

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/session"
)

// userAgents are rotated per client so repeated runs do not share one
// browser fingerprint
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Client owns one authenticated HTTP session against the Instagram web
// API. Credentials and login state belong exclusively to the client for
// the lifetime of a crawl; all access must come from a single goroutine.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string

	store    session.Store
	creds    *session.Credentials
	loggedIn bool

	logger logger.Logger
}

// NewClient creates a client backed by the given credential store
func NewClient(timeout time.Duration, store session.Store, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			// Redirects stay visible: the verification probe
			// distinguishes 200 from a login redirect.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers: map[string]string{
			"User-Agent":       userAgents[rand.Intn(len(userAgents))],
			"Accept":           "*/*",
			"Accept-Language":  "en-US,en;q=0.9",
			"Origin":           BaseURL,
			"Referer":          BaseURL + "/",
			"X-Requested-With": "XMLHttpRequest",
		},
		baseURL: BaseURL,
		store:   store,
		logger:  log,
	}
}

// SetBaseURL points the client at a different API host (tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// IsLoggedIn reports whether the last verification succeeded
func (c *Client) IsLoggedIn() bool {
	return c.loggedIn
}

// Username returns the identity label of the current session, if known
func (c *Client) Username() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Username
}

// Credentials returns the active credential set, or nil when logged out
func (c *Client) Credentials() *session.Credentials {
	return c.creds
}

// Initialize loads persisted credentials and verifies them against the
// server. On verification failure the client stays logged out but the
// stale credentials remain on disk until logout or a successful re-login.
func (c *Client) Initialize() bool {
	creds, err := c.store.Load()
	if err != nil || !creds.Usable() {
		return false
	}

	c.applyCredentials(creds)

	if !c.Verify() {
		c.logger.Warn("saved session is no longer valid, please log in again")
		c.loggedIn = false
		return false
	}

	c.loggedIn = true
	c.logger.InfoWithFields("restored saved session", map[string]interface{}{
		"username": creds.Username,
	})
	return true
}

// SetCredentials applies a manually supplied credential triplet, verifies
// it, and persists it only when verification succeeds.
func (c *Client) SetCredentials(sessionID, csrfToken, claimToken string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return errors.New(errors.ErrorTypeValidation, "session token must not be empty", 0)
	}

	creds := &session.Credentials{
		SessionID:  sessionID,
		CSRFToken:  strings.TrimSpace(csrfToken),
		ClaimToken: strings.TrimSpace(claimToken),
	}
	c.applyCredentials(creds)

	c.logger.Info("verifying session")
	if !c.Verify() {
		c.loggedIn = false
		return errors.New(errors.ErrorTypeAuth, "session rejected by server, check the session token", 0)
	}

	c.loggedIn = true
	if err := c.store.Save(creds); err != nil {
		c.logger.WithError(err).Warn("session verified but could not be persisted")
	}
	return nil
}

// applyCredentials injects the credential set into the transport
func (c *Client) applyCredentials(creds *session.Credentials) {
	c.creds = creds

	var cookies []string
	if creds.SessionID != "" {
		cookies = append(cookies, fmt.Sprintf("sessionid=%s", creds.SessionID))
	}
	if creds.CSRFToken != "" {
		cookies = append(cookies, fmt.Sprintf("csrftoken=%s", creds.CSRFToken))
		c.headers["X-CSRFToken"] = creds.CSRFToken
	}
	if len(cookies) > 0 {
		c.headers["Cookie"] = strings.Join(cookies, "; ")
	}
}

// Verify issues one lightweight authenticated request to the account
// settings endpoint with redirects disabled. HTTP 200 means the session
// is live; a redirect or any failure means it is not (fails closed).
func (c *Client) Verify() bool {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+AccountSettingsEndpoint, nil)
	if err != nil {
		return false
	}

	resp, err := c.do(req)
	if err != nil {
		c.logger.WithError(err).Debug("session verification request failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Logout clears the in-memory credentials, transport cookies and the
// persisted session
func (c *Client) Logout() error {
	c.creds = nil
	c.loggedIn = false
	delete(c.headers, "Cookie")
	delete(c.headers, "X-CSRFToken")

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	c.logger.Info("logged out")
	return nil
}

// TestConnection is a best-effort reachability probe; failures are
// reported, never raised
func (c *Client) TestConnection() bool {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.do(req)
	if err != nil {
		c.logger.WithError(err).Warn("connectivity check failed")
		return false
	}
	defer resp.Body.Close()

	// Any response means the host is reachable. Redirects are not
	// followed by this client, and the homepage redirects logged-out
	// visitors, so 3xx is an expected healthy answer here.
	c.logger.DebugWithFields("connectivity check completed", map[string]interface{}{
		"status": resp.StatusCode,
	})
	return true
}

// apiHeaders returns the extra headers every API request must carry,
// sourced from the stored credentials
func (c *Client) apiHeaders() map[string]string {
	csrfToken := ""
	claimToken := "0"
	if c.creds != nil {
		csrfToken = c.creds.CSRFToken
		if c.creds.ClaimToken != "" {
			claimToken = c.creds.ClaimToken
		}
	}

	return map[string]string{
		"X-IG-App-ID":      AppID,
		"X-ASBD-ID":        ASBDID,
		"X-CSRFToken":      csrfToken,
		"X-IG-WWW-Claim":   claimToken,
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "*/*",
		"Sec-Fetch-Dest":   "empty",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Site":   "same-origin",
	}
}

// do performs an HTTP request with the configured session headers
func (c *Client) do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Newf(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}
