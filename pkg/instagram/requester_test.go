package instagram

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/ratelimit"
	"igcrawler/pkg/session"
)

// countingLimiter records how many times Wait was called
type countingLimiter struct {
	waits int
}

func (l *countingLimiter) Wait()  { l.waits++ }
func (l *countingLimiter) Reset() {}

func newTestRequester(t *testing.T, handler http.HandlerFunc) (*Requester, *countingLimiter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	client.SetBaseURL(srv.URL)
	client.applyCredentials(&session.Credentials{SessionID: "s", CSRFToken: "csrf"})

	limiter := &countingLimiter{}
	requester := NewRequester(client, limiter, time.Millisecond, 3, logger.NewTestLogger())
	return requester, limiter
}

func TestGetJSONSuccess(t *testing.T) {
	var gotHeaders http.Header
	requester, limiter := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"status": "ok", "next_max_id": "cursor-1"}`))
	})

	var payload struct {
		Status    string `json:"status"`
		NextMaxID string `json:"next_max_id"`
	}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "cursor-1", payload.NextMaxID)

	// One request, one politeness wait.
	assert.Equal(t, 1, limiter.waits)

	// The API identity headers rode along.
	assert.Equal(t, AppID, gotHeaders.Get("X-IG-App-ID"))
	assert.Equal(t, ASBDID, gotHeaders.Get("X-ASBD-ID"))
	assert.Equal(t, "csrf", gotHeaders.Get("X-CSRFToken"))
}

func TestGetJSONQueryParams(t *testing.T) {
	var gotQuery string
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	params := SearchParams("foo", "token", "")
	var out map[string]interface{}
	require.NoError(t, requester.GetJSON(SearchPath(), params, &out))
	assert.Contains(t, gotQuery, "query=%23foo")
	assert.Contains(t, gotQuery, "rank_token=token")
}

func TestGetJSONRetriesOnRateLimit(t *testing.T) {
	calls := 0
	requester, limiter := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	var payload struct {
		Status string `json:"status"`
	}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, 2, calls)
	// Each attempt waits again: the politeness interval covers retries too.
	assert.Equal(t, 2, limiter.waits)
}

func TestGetJSONRateLimitExhaustion(t *testing.T) {
	calls := 0
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.IsRateLimit(err))
}

func TestGetJSONAuthErrorNotRetried(t *testing.T) {
	calls := 0
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.IsAuth(err))
}

func TestGetJSONNotFound(t *testing.T) {
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestGetJSONServerErrorNotRetriedHere(t *testing.T) {
	calls := 0
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	// Only throttling is retried at this layer.
	assert.Equal(t, 1, calls)
	assert.True(t, errors.IsType(err, errors.ErrorTypeServerError))
}

func TestGetJSONUnlistedServerStatus(t *testing.T) {
	// 5xx statuses outside the explicit cases still classify as server
	// errors rather than falling through to unknown.
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeServerError))
}

func TestGetJSONHTMLResponseMeansExpiredSession(t *testing.T) {
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<!DOCTYPE html><html>login page</html>"))
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
}

func TestGetJSONMalformedBody(t *testing.T) {
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"truncated": `))
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestGetJSONUnexpectedStatus(t *testing.T) {
	requester, _ := newTestRequester(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	var payload map[string]interface{}
	err := requester.GetJSON("/api/v1/test/", nil, &payload)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknown))
}

func TestNewRequesterClampsAttempts(t *testing.T) {
	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	requester := NewRequester(client, ratelimit.Nop{}, time.Second, 0, logger.NewTestLogger())
	assert.Equal(t, 1, requester.maxAttempts)
}
