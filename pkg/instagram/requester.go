package instagram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/ratelimit"
	"igcrawler/pkg/retry"
)

// Requester is the sole network entry point used by the crawlers. It
// paces every call through the shared limiter, attaches the API headers,
// classifies the HTTP outcome into the typed error taxonomy and retries
// transparently on throttling with a fixed cooldown, bounded by
// maxAttempts per logical call.
type Requester struct {
	client      *Client
	limiter     ratelimit.Limiter
	cooldown    time.Duration
	maxAttempts int
	logger      logger.Logger
}

// NewRequester creates a requester on top of an authenticated client.
// The limiter must be the session-wide one: the politeness interval is a
// global ordering constraint, not a per-call one.
func NewRequester(client *Client, limiter ratelimit.Limiter, cooldown time.Duration, maxAttempts int, log logger.Logger) *Requester {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Requester{
		client:      client,
		limiter:     limiter,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// GetJSON issues one GET against path (joined to the client's base URL)
// and decodes the JSON response into target. Throttling (HTTP 429) is
// retried after the cooldown up to the attempt bound; every other failure
// is returned as a typed error for the caller to act on.
func (r *Requester) GetJSON(path string, params url.Values, target interface{}) error {
	return retry.Do(func() error {
		return r.attempt(path, params, target)
	}, &retry.Config{
		MaxAttempts: r.maxAttempts,
		Backoff:     retry.NewFixedBackoff(r.cooldown),
		RetryIf:     errors.IsRateLimit,
		Context:     context.Background(),
		Logger:      r.logger,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			r.logger.WarnWithFields("throttled by server, cooling down", map[string]interface{}{
				"attempt":  attempt,
				"cooldown": delay,
			})
		},
	})
}

func (r *Requester) attempt(path string, params url.Values, target interface{}) error {
	// Politeness interval before every call, retries included.
	r.limiter.Wait()

	rawURL := r.client.baseURL + path
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Newf(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	for key, value := range r.client.apiHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := r.client.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := r.classifyStatus(resp); err != nil {
		return err
	}

	// A nominal 200 serving HTML instead of JSON is the web tier's way
	// of saying the session is gone.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "json") && strings.Contains(contentType, "text/html") {
		r.logger.WarnWithFields("received HTML instead of JSON, re-login is likely required", map[string]interface{}{
			"url":          rawURL,
			"content_type": contentType,
		})
		return errors.New(errors.ErrorTypeAuth, "received HTML instead of JSON, session may have expired", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		r.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          rawURL,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Newf(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// classifyStatus maps the HTTP status to the error taxonomy
func (r *Requester) classifyStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		r.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	case http.StatusUnauthorized:
		r.logger.WarnWithFields("authentication required", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.New(errors.ErrorTypeAuth, "authentication required", resp.StatusCode)
	case http.StatusNotFound:
		return errors.New(errors.ErrorTypeNotFound, "resource not found", resp.StatusCode)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return errors.New(errors.ErrorTypeServerError, "server error", resp.StatusCode)
	default:
		if errors.IsRetryableStatusCode(resp.StatusCode) {
			return errors.New(errors.ErrorTypeServerError, "server error", resp.StatusCode)
		}
		return errors.Newf(errors.ErrorTypeUnknown, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	}
}
