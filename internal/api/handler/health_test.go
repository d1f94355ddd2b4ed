package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingOK(context.Context) error { return nil }

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/health", "")
	require.NoError(t, NewHealthHandler().Liveness(c))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthDependenciesHandler_Ready(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]DependencyCheck{"mongodb": pingOK, "redis": pingOK})

	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	require.NoError(t, h.Readiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","dependencies":{"mongodb":{"status":"ok"},"redis":{"status":"ok"}}}`, rec.Body.String())
}

func TestHealthDependenciesHandler_Degraded(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]DependencyCheck{
		"mongodb": pingOK,
		"redis": func(context.Context) error {
			return errors.New("dial tcp: connection refused")
		},
	})

	c, rec := newTestContext(http.MethodGet, "/health/ready", "")
	require.NoError(t, h.Readiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Dependencies["mongodb"].Status)
	assert.Equal(t, "dial tcp: connection refused", resp.Dependencies["redis"].Error)
}
