package stagekit

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

// TestResourceIDExtractors validates the extractor constructors
func TestResourceIDExtractors(t *testing.T) {
	t.Run("From query", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/budgets?venue_id=42", nil)
		id, err := ResourceIDFromQuery("venue_id")(r)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("From header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Venue-ID", "7")
		id, err := ResourceIDFromHeader("X-Venue-ID")(r)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("Static", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		id, err := StaticResourceID(99)(r)
		require.NoError(t, err)
		assert.Equal(t, int64(99), id)
	})

	t.Run("Missing value", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		_, err := ResourceIDFromQuery("venue_id")(r)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("Non-numeric value", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/?venue_id=abc", nil)
		_, err := ResourceIDFromQuery("venue_id")(r)
		assert.Error(t, err)
	})

	t.Run("Non-positive value", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/?venue_id=0", nil)
		_, err := ResourceIDFromQuery("venue_id")(r)
		assert.Error(t, err)
	})
}

// TestRequireResourceRolesNoUser validates the anonymous-request rejection
func TestRequireResourceRolesNoUser(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	mw := NewMiddleware(service)

	handler, called := okHandler()
	wrapped := mw.RequireResourceRoles(ResourceVenue, []Role{RoleOwner}, ResourceIDFromQuery("id"))(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/?id=1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, *called)
}

// TestRequireResourceRolesBadID validates extractor failures map to 400
func TestRequireResourceRolesBadID(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	mw := NewMiddleware(service, WithUserIDExtractor(func(*http.Request) int64 { return 5 }))

	handler, called := okHandler()
	wrapped := mw.RequireResourceRoles(ResourceVenue, []Role{RoleOwner}, ResourceIDFromQuery("id"))(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, *called)
}

// TestCustomErrorHandler validates the error handler override
func TestCustomErrorHandler(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	var captured error
	mw := NewMiddleware(service,
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			captured = err
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	handler, _ := okHandler()
	wrapped := mw.RequireResourceRoles(ResourceVenue, []Role{RoleOwner}, ResourceIDFromQuery("id"))(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/?id=1", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.ErrorIs(t, captured, ErrNoUserID)
}

// TestInjectAuditContext validates audit metadata extraction from the request
func TestInjectAuditContext(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	mw := NewMiddleware(service, WithUserIDExtractor(func(*http.Request) int64 { return 7 }))

	var ac AuditContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac = GetAuditContext(r.Context())
	})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	r.Header.Set("User-Agent", "test-agent")
	r.Header.Set("X-Request-ID", "req-42")

	mw.InjectAuditContext()(handler).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, int64(7), ac.ActorID)
	assert.Equal(t, "203.0.113.9", ac.IPAddress)
	assert.Equal(t, "test-agent", ac.UserAgent)
	assert.Equal(t, "req-42", ac.RequestID)
}

// TestInjectAuditContextRemoteAddrFallback validates the IP fallback chain
func TestInjectAuditContextRemoteAddrFallback(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	mw := NewMiddleware(service)

	var ip string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = GetIPAddress(r.Context())
	})

	r := httptest.NewRequest("GET", "/", nil)
	mw.InjectAuditContext()(handler).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, r.RemoteAddr, ip)
}

// TestLoadCheckerAnonymous validates that anonymous requests pass through
func TestLoadCheckerAnonymous(t *testing.T) {
	service := NewService(DefaultRegistry(), nil)
	mw := NewMiddleware(service)

	handler, called := okHandler()
	w := httptest.NewRecorder()
	mw.LoadChecker()(handler).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestParsePaginationQuery validates skip/take parsing with clamping
func TestParsePaginationQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantSkip int
		wantTake int
	}{
		{"absent", "", 0, DefaultTake},
		{"both given", "skip=10&take=20", 10, 20},
		{"take capped", "take=1000", 0, MaxTake},
		{"garbage ignored", "skip=abc&take=xyz", 0, DefaultTake},
		{"negative skip", "skip=-5&take=10", 0, 10},
		{"explicit zero take clamps to one", "take=0", 0, 1},
		{"explicit negative take clamps to one", "take=-3", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			skip, take := ParsePagination(values)
			assert.Equal(t, tt.wantSkip, skip)
			assert.Equal(t, tt.wantTake, take)
		})
	}
}
