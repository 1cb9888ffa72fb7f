package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courseware_backend/internal/config"
	"courseware_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvaluator struct {
	calls int
}

func (s *stubEvaluator) Process(_ context.Context, req model.LearnerEvaluationRequest) (*EvaluationOutcome, error) {
	s.calls++
	return &EvaluationOutcome{Response: &model.LearnerEvaluationResponse{Request: req}}, nil
}

func legacyServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/evaluations", r.URL.Path)
		var req model.LearnerEvaluationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"success","data":{"walkableComplete":true,` +
			`"actions":[{"action":"CHANGE_PROGRESS","resolver":{"type":"LITERAL"},"context":{"progressionType":"INTERACTIVE_COMPLETE"}}]}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func reloadedConfig(eval config.EvaluationConfig) *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Mode: "release"},
		Database:   config.DatabaseConfig{Driver: "sqlite"},
		RateLimit:  config.RateLimitConfig{MaxRequests: 10, WindowMinutes: 1},
		Evaluation: eval,
	}
}

func TestEvaluationAdapter_RoutesByMode(t *testing.T) {
	srv, legacyCalls := legacyServer(t)
	reactive := &stubEvaluator{}
	adapter := NewEvaluationServiceAdapter(config.EvaluationConfig{Mode: config.EvaluationModeReactive, LegacyURL: srv.URL}, reactive)

	_, err := adapter.Process(context.Background(), evaluationRequest(""))
	require.NoError(t, err)
	assert.Equal(t, 1, reactive.calls)
	assert.Zero(t, *legacyCalls)

	adapter.Reload(reloadedConfig(config.EvaluationConfig{Mode: config.EvaluationModeLegacy, LegacyURL: srv.URL, LegacyTimeout: time.Second, RollupMaxDepth: 8}))
	assert.Equal(t, config.EvaluationModeLegacy, adapter.Mode())

	out, err := adapter.Process(context.Background(), evaluationRequest(""))
	require.NoError(t, err)
	assert.Equal(t, 1, *legacyCalls)
	assert.True(t, out.WalkableComplete)
	require.Len(t, out.Actions, 1)
	assert.NotNil(t, FirstProgressAction(out.Actions))
}

func TestEvaluationAdapter_IgnoresInvalidReload(t *testing.T) {
	adapter := NewEvaluationServiceAdapter(config.EvaluationConfig{}, &stubEvaluator{})
	assert.Equal(t, config.EvaluationModeReactive, adapter.Mode())

	adapter.Reload(reloadedConfig(config.EvaluationConfig{Mode: config.EvaluationModeLegacy, RollupMaxDepth: 8}))

	assert.Equal(t, config.EvaluationModeReactive, adapter.Mode())
}
