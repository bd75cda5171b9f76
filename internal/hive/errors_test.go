package hive_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhive/hive/internal/hive"
)

func TestErrorWireShape(t *testing.T) {
	e := hive.TaskProjectMismatch("Task does not belong to the provided project")

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	// The body carries exactly message, httpStatus and statusCode. The kind
	// never crosses the wire.
	assert.Len(t, wire, 3)
	assert.Equal(t, "Task does not belong to the provided project", wire["message"])
	assert.Equal(t, "EXPECTATION_FAILED", wire["httpStatus"])
	assert.Equal(t, float64(http.StatusExpectationFailed), wire["statusCode"])
}

func TestDecodeReconstructsKindFromStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   hive.Kind
	}{
		{http.StatusBadRequest, hive.KindInvalidRequest},
		{http.StatusUnauthorized, hive.KindAuthenticationFailed},
		{http.StatusForbidden, hive.KindNotAuthorized},
		{http.StatusNotFound, hive.KindResourceNotFound},
		{http.StatusNotAcceptable, hive.KindResourceAlreadyExists},
		{http.StatusConflict, hive.KindResourceAlreadyExists},
		{http.StatusExpectationFailed, hive.KindTaskProjectMismatch},
		{http.StatusServiceUnavailable, hive.KindUpstreamUnavailable},
	}

	for _, tc := range cases {
		body := fmt.Sprintf(`{"message":"m","httpStatus":"X","statusCode":%d}`, tc.status)
		e := hive.Decode(tc.status, strings.NewReader(body))
		assert.Equal(t, tc.kind, e.Kind, "status %d", tc.status)
		assert.Equal(t, tc.status, e.StatusCode)
		assert.Equal(t, "m", e.Message)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	original := hive.NotFound("User with the given userId was not found")
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	decoded := hive.Decode(original.StatusCode, strings.NewReader(string(raw)))
	assert.Equal(t, original.Kind, decoded.Kind)
	assert.Equal(t, original.Message, decoded.Message)
	assert.Equal(t, original.HTTPStatus, decoded.HTTPStatus)
	assert.Equal(t, original.StatusCode, decoded.StatusCode)
}

func TestDecodeEmptyBody(t *testing.T) {
	e := hive.Decode(http.StatusBadGateway, strings.NewReader(""))
	assert.Equal(t, http.StatusBadGateway, e.StatusCode)
	assert.NotEmpty(t, e.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	e := hive.FromError(fmt.Errorf("driver: bad connection"))
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode)
	// Internal details never leak into the wire message.
	assert.NotContains(t, e.Message, "driver")
}

func TestFromErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("checking membership: %w", hive.NotMemberOfProject("no"))
	e := hive.FromError(wrapped)
	assert.Equal(t, hive.KindNotMemberOfProject, e.Kind)
	assert.Equal(t, http.StatusForbidden, e.StatusCode)

	assert.True(t, hive.IsKind(wrapped, hive.KindNotMemberOfProject))
	assert.False(t, hive.IsKind(wrapped, hive.KindResourceNotFound))
}
