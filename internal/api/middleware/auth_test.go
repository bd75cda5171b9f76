package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/token"
)

type fakeResolver struct {
	identity *hive.UserDTO
	err      error
	calls    int
	bearer   string
}

func (r *fakeResolver) ResolveIdentity(_ context.Context, bearerHeader string, _ uuid.UUID) (*hive.UserDTO, error) {
	r.calls++
	r.bearer = bearerHeader
	if r.err != nil {
		return nil, r.err
	}
	return r.identity, nil
}

type errorBody struct {
	Message    string `json:"message"`
	HTTPStatus string `json:"httpStatus"`
	StatusCode int    `json:"statusCode"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func authEnv(t *testing.T, resolver middleware.IdentityResolver) (*token.Codec, http.Handler, *bool) {
	t.Helper()

	codec := token.NewCodec("v1", []byte("0123456789abcdef0123456789abcdef"))
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return codec, middleware.Auth(codec, resolver, "Bearer ")(inner), &reached
}

func TestAuthMissingHeader(t *testing.T) {
	resolver := &fakeResolver{}
	_, h, reached := authEnv(t, resolver)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Authentication header is missing", body.Message)
	assert.Equal(t, "UNAUTHORIZED", body.HTTPStatus)
	assert.False(t, *reached)
	assert.Zero(t, resolver.calls)
}

func TestAuthWrongPrefix(t *testing.T) {
	resolver := &fakeResolver{}
	_, h, reached := authEnv(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Zero(t, resolver.calls)
}

func TestAuthInvalidToken(t *testing.T) {
	resolver := &fakeResolver{}
	_, h, reached := authEnv(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Zero(t, resolver.calls)
}

func TestAuthExpiredToken(t *testing.T) {
	resolver := &fakeResolver{}
	codec, h, reached := authEnv(t, resolver)

	raw, err := codec.Issue(uuid.New(), "alice", nil, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Zero(t, resolver.calls)
}

func TestAuthInactiveIdentity(t *testing.T) {
	userID := uuid.New()
	resolver := &fakeResolver{identity: &hive.UserDTO{UserID: userID, Username: "alice", Active: false}}
	codec, h, reached := authEnv(t, resolver)

	raw, err := codec.Issue(userID, "alice", nil, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Valid token, deactivated account: still rejected.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
	assert.Equal(t, 1, resolver.calls)
}

func TestAuthResolverUnavailable(t *testing.T) {
	resolver := &fakeResolver{err: hive.UpstreamUnavailable("identity service is unavailable")}
	codec, h, reached := authEnv(t, resolver)

	raw, err := codec.Issue(uuid.New(), "alice", nil, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Transport failure surfaces as 503, not as an authentication failure.
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, *reached)
}

func TestAuthSuccessPopulatesContext(t *testing.T) {
	userID := uuid.New()
	resolver := &fakeResolver{identity: &hive.UserDTO{
		UserID: userID, Username: "alice", Active: true, Roles: []string{hive.RoleTeamMember},
	}}
	codec := token.NewCodec("v1", []byte("0123456789abcdef0123456789abcdef"))

	var gotIdentity *hive.UserDTO
	var gotBearer string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = middleware.GetIdentity(r.Context())
		gotBearer = middleware.GetBearerHeader(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.Auth(codec, resolver, "Bearer ")(inner)

	raw, err := codec.Issue(userID, "alice", []string{hive.RoleTeamMember}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotIdentity)
	assert.Equal(t, userID, gotIdentity.UserID)
	assert.Equal(t, "Bearer "+raw, gotBearer)
	assert.Equal(t, "Bearer "+raw, resolver.bearer)
}

func TestRequireRole(t *testing.T) {
	userID := uuid.New()
	codec := token.NewCodec("v1", []byte("0123456789abcdef0123456789abcdef"))
	resolver := &fakeResolver{identity: &hive.UserDTO{
		UserID: userID, Username: "alice", Active: true, Roles: []string{hive.RoleTeamMember},
	}}

	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.Auth(codec, resolver, "Bearer ")(middleware.RequireRole(hive.RoleAdmin)(inner))

	raw, err := codec.Issue(userID, "alice", []string{hive.RoleTeamMember}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)

	// Same request with an allowed role passes.
	resolver.identity.Roles = []string{hive.RoleAdmin}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
