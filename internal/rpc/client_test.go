package rpc_test

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

	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/rpc"
)

func TestGetUserByIDForwardsBearerHeader(t *testing.T) {
	userID := uuid.New()
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(hive.UserDTO{UserID: userID, Username: "alice", Active: true})
	}))
	defer srv.Close()

	client := rpc.NewIdentityClient(srv.URL, time.Second)
	dto, err := client.GetUserByID(context.Background(), "Bearer abc.def.ghi", userID)
	require.NoError(t, err)
	assert.Equal(t, userID, dto.UserID)
	assert.Equal(t, "alice", dto.Username)
	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
}

func TestRemoteNotFoundSurfacesAsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"message":    "User with the given userId was not found",
			"httpStatus": "NOT_FOUND",
			"statusCode": 404,
		})
	}))
	defer srv.Close()

	client := rpc.NewIdentityClient(srv.URL, time.Second)
	_, err := client.GetUserByID(context.Background(), "Bearer t", uuid.New())
	require.Error(t, err)

	// The remote kind and status survive the hop instead of collapsing to 500.
	assert.True(t, hive.IsKind(err, hive.KindResourceNotFound))
	e := hive.FromError(err)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
	assert.Equal(t, "User with the given userId was not found", e.Message)
	assert.Equal(t, "NOT_FOUND", e.HTTPStatus)
}

func TestRemoteForbiddenSurfacesWithStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"message":    "Insufficient permissions",
			"httpStatus": "FORBIDDEN",
			"statusCode": 403,
		})
	}))
	defer srv.Close()

	client := rpc.NewProjectClient(srv.URL, time.Second)
	_, err := client.IsLeaderOrAdminOfProject(context.Background(), "Bearer t", uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, hive.FromError(err).StatusCode)
}

func TestTransportFailureRetriesOnceThenUnavailable(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(true)
	}))
	srv.Close() // all connections refused from here on

	client := rpc.NewProjectClient(srv.URL, time.Second)
	_, err := client.IsMemberOfProject(context.Background(), "Bearer t", uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindUpstreamUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, hive.FromError(err).StatusCode)
	assert.Zero(t, calls)
}

func TestTransportFailureRecoversOnRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection without a response to force a retry.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		json.NewEncoder(w).Encode(true)
	}))
	defer srv.Close()

	client := rpc.NewProjectClient(srv.URL, time.Second)
	member, err := client.IsMemberOfProject(context.Background(), "Bearer t", uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 2, calls)
}

func TestAuthorizationFailureIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"message":    "Authentication token is not valid",
			"httpStatus": "UNAUTHORIZED",
			"statusCode": 401,
		})
	}))
	defer srv.Close()

	client := rpc.NewIdentityClient(srv.URL, time.Second)
	_, err := client.CurrentUser(context.Background(), "Bearer bad")
	require.Error(t, err)
	assert.True(t, hive.IsKind(err, hive.KindAuthenticationFailed))
	assert.Equal(t, 1, calls)
}

func TestIsMemberOfProjectDecodesBareBoolean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/project/intercommunication/is-member-of-project", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("projectId"))
		assert.NotEmpty(t, r.URL.Query().Get("userId"))
		json.NewEncoder(w).Encode(false)
	}))
	defer srv.Close()

	client := rpc.NewProjectClient(srv.URL, time.Second)
	member, err := client.IsMemberOfProject(context.Background(), "Bearer t", uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, member)
}

func TestErrorBodyWithoutMessageStillCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := rpc.NewTaskClient(srv.URL, time.Second)
	_, err := client.GetTaskByID(context.Background(), "Bearer t", uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, hive.FromError(err).StatusCode)
}
