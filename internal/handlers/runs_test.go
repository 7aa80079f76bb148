package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskui/internal/models"
	"taskui/internal/paradigm"
)

func testEngine(registry *paradigm.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRunsHandler(zap.NewNop(), registry, paradigm.NopPresenter{}, models.DefaultPresets(), "data", false)

	r := gin.New()
	r.POST("/api/runs/gonogo", h.StartGoNoGo)
	r.POST("/api/runs/rhythm", h.StartRhythm)
	r.GET("/api/runs/active", h.Active)
	r.POST("/api/runs/active/response", h.Respond)
	r.POST("/api/runs/active/abort", h.Abort)
	r.POST("/api/schedule/preview", h.PreviewSchedule)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRunLifecycleOverHTTP(t *testing.T) {
	registry := paradigm.NewRegistry()
	r := testEngine(registry)

	// No run yet.
	w := do(r, http.MethodGet, "/api/runs/active", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Start a short test-mode run.
	body := `{
		"gonogo": {
			"go_digits": [1, 2], "nogo_digits": [9],
			"n_blocks": 1, "n_trials_per_block": 2,
			"rest_duration_s": 0.02, "post_block_rest_duration_s": 0.02,
			"inter_block_interval_s": 0.02,
			"stimulus_duration_s": 0.03, "inter_trial_interval_s": 0.01,
			"max_response_window_s": 0.05,
			"test_mode": true
		},
		"meta": {"test_mode": true}
	}`
	w = do(r, http.MethodPost, "/api/runs/gonogo", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var started map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.Equal(t, "gonogo", started["paradigm"])
	assert.InDelta(t, 2.0/3.0, started["go_ratio"].(float64), 1e-9)

	// A second start while the first is live conflicts.
	w = do(r, http.MethodPost, "/api/runs/gonogo", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Responding against the live run is accepted.
	w = do(r, http.MethodPost, "/api/runs/active/response", `{"key":"space"}`)
	assert.Contains(t, []int{http.StatusAccepted, http.StatusNotFound, http.StatusConflict}, w.Code)

	run, err := registry.Latest()
	require.NoError(t, err)
	select {
	case <-run.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
	}

	// Finished run no longer shows as active.
	w = do(r, http.MethodGet, "/api/runs/active", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAbortOverHTTP(t *testing.T) {
	registry := paradigm.NewRegistry()
	r := testEngine(registry)

	body := `{
		"rhythm": {
			"cue_type": "audio", "cue_frequency_hz": 2.0,
			"num_blocks": 1,
			"part_durations_s": {"rest_pre": 5.0},
			"test_mode": true
		},
		"meta": {"test_mode": true}
	}`
	w := do(r, http.MethodPost, "/api/runs/rhythm", body)
	require.Equal(t, http.StatusCreated, w.Code)

	// Rhythm runs take no responses.
	w = do(r, http.MethodPost, "/api/runs/active/response", `{"key":"space"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/runs/active/abort", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	run, err := registry.Latest()
	require.NoError(t, err)
	select {
	case <-run.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("aborted run did not finish")
	}
	assert.Equal(t, paradigm.StateAborted, run.State())
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	r := testEngine(paradigm.NewRegistry())

	body := `{"gonogo": {"go_digits": [1], "nogo_digits": [1], "n_blocks": 1,
		"n_trials_per_block": 5, "stimulus_duration_s": 0.3,
		"max_response_window_s": 0.8, "test_mode": true}}`
	w := do(r, http.MethodPost, "/api/runs/gonogo", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewSchedule(t *testing.T) {
	r := testEngine(paradigm.NewRegistry())

	body := `{"go_digits": [0, 1, 2], "nogo_digits": [9],
		"digit_weights": {"0": 1, "1": 1, "2": 1, "9": 1}}`
	w := do(r, http.MethodPost, "/api/schedule/preview", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		GoRatio   float64            `json:"go_ratio"`
		GoProbs   map[string]float64 `json:"go_probabilities"`
		NogoProbs map[string]float64 `json:"nogo_probabilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 0.75, resp.GoRatio, 1e-9)

	var total float64
	for _, p := range resp.GoProbs {
		total += p
	}
	for _, p := range resp.NogoProbs {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}
