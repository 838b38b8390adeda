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
	"igcrawler/pkg/session"
)

// verifyServer answers the account settings probe with the given status
// and records the last request it saw
func verifyServer(t *testing.T, status int) (*httptest.Server, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r.Clone(r.Context())
		if status == http.StatusFound {
			w.Header().Set("Location", "/accounts/login/")
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func newVerifyClient(t *testing.T, status int, store session.Store) (*Client, *http.Request) {
	t.Helper()
	srv, last := verifyServer(t, status)
	client := NewClient(5*time.Second, store, logger.NewTestLogger())
	client.SetBaseURL(srv.URL)
	return client, last
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(30*time.Second, session.NewMemoryStore(), log)

	assert.NotNil(t, client.httpClient)
	assert.Equal(t, BaseURL, client.baseURL)
	assert.False(t, client.IsLoggedIn())
	assert.NotEmpty(t, client.headers["User-Agent"])
}

func TestSetCredentialsSuccess(t *testing.T) {
	store := session.NewMemoryStore()
	client, last := newVerifyClient(t, http.StatusOK, store)

	err := client.SetCredentials(" session-token ", "csrf-token", "claim")
	require.NoError(t, err)
	assert.True(t, client.IsLoggedIn())

	// Whitespace is trimmed before use.
	assert.Equal(t, "session-token", client.Credentials().SessionID)

	// The probe carried the session cookie and CSRF header.
	cookie, err := last.Cookie("sessionid")
	require.NoError(t, err)
	assert.Equal(t, "session-token", cookie.Value)
	assert.Equal(t, "csrf-token", last.Header.Get("X-CSRFToken"))

	// Verified credentials are persisted.
	saved, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "session-token", saved.SessionID)
}

func TestSetCredentialsRejected(t *testing.T) {
	store := session.NewMemoryStore()
	client, _ := newVerifyClient(t, http.StatusFound, store)

	err := client.SetCredentials("bad-token", "csrf", "")
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	assert.False(t, client.IsLoggedIn())

	// Rejected credentials are never persisted.
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestSetCredentialsEmptySessionID(t *testing.T) {
	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())

	err := client.SetCredentials("   ", "csrf", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestInitializeRestoresSession(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{
		SessionID: "saved-token",
		CSRFToken: "saved-csrf",
		Username:  "someone",
	}))

	client, _ := newVerifyClient(t, http.StatusOK, store)
	assert.True(t, client.Initialize())
	assert.True(t, client.IsLoggedIn())
	assert.Equal(t, "someone", client.Username())
}

func TestInitializeStaleSession(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(&session.Credentials{SessionID: "stale-token"}))

	client, _ := newVerifyClient(t, http.StatusFound, store)
	assert.False(t, client.Initialize())
	assert.False(t, client.IsLoggedIn())

	// The stale session stays on disk until an explicit logout.
	saved, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestInitializeNoSavedSession(t *testing.T) {
	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	assert.False(t, client.Initialize())
}

func TestVerifyRedirectNotFollowed(t *testing.T) {
	redirects := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == AccountSettingsEndpoint {
			http.Redirect(w, r, "/accounts/login/", http.StatusFound)
			return
		}
		redirects++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	client.SetBaseURL(srv.URL)

	// The login redirect itself must be the observed response.
	assert.False(t, client.Verify())
	assert.Equal(t, 0, redirects)
}

func TestTestConnectionRedirectIsReachable(t *testing.T) {
	// The homepage redirects logged-out visitors and this client never
	// follows redirects, so a 3xx still counts as reachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/accounts/login/", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	client.SetBaseURL(srv.URL)

	assert.True(t, client.TestConnection())
}

func TestTestConnectionUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	client.SetBaseURL(srv.URL)

	assert.False(t, client.TestConnection())
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore()
	client, _ := newVerifyClient(t, http.StatusOK, store)
	require.NoError(t, client.SetCredentials("session-token", "csrf-token", ""))

	require.NoError(t, client.Logout())
	assert.False(t, client.IsLoggedIn())
	assert.Nil(t, client.Credentials())
	assert.NotContains(t, client.headers, "Cookie")
	assert.NotContains(t, client.headers, "X-CSRFToken")

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestAPIHeaders(t *testing.T) {
	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())

	// Without credentials the claim falls back to "0".
	headers := client.apiHeaders()
	assert.Equal(t, AppID, headers["X-IG-App-ID"])
	assert.Equal(t, ASBDID, headers["X-ASBD-ID"])
	assert.Equal(t, "0", headers["X-IG-WWW-Claim"])
	assert.Equal(t, "XMLHttpRequest", headers["X-Requested-With"])

	client.applyCredentials(&session.Credentials{
		SessionID:  "s",
		CSRFToken:  "csrf",
		ClaimToken: "hmac.claim",
	})
	headers = client.apiHeaders()
	assert.Equal(t, "csrf", headers["X-CSRFToken"])
	assert.Equal(t, "hmac.claim", headers["X-IG-WWW-Claim"])
}

func TestSetHeader(t *testing.T) {
	client := NewClient(5*time.Second, session.NewMemoryStore(), logger.NewTestLogger())
	client.SetHeader("User-Agent", "custom-agent")
	assert.Equal(t, "custom-agent", client.headers["User-Agent"])
}
