package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskui/internal/fileio"
	"taskui/internal/metrics"
	"taskui/internal/models"
	"taskui/internal/paradigm"
	"taskui/internal/repository"
	"taskui/internal/schedule"
)

// RunsHandler starts and controls paradigm runs.
type RunsHandler struct {
	log         *zap.Logger
	registry    *paradigm.Registry
	presenter   paradigm.Presenter
	presets     *models.Presets
	dataFolder  string
	persistToDB bool
}

func NewRunsHandler(log *zap.Logger, registry *paradigm.Registry, presenter paradigm.Presenter, presets *models.Presets, dataFolder string, persistToDB bool) *RunsHandler {
	return &RunsHandler{
		log:         log,
		registry:    registry,
		presenter:   presenter,
		presets:     presets,
		dataFolder:  dataFolder,
		persistToDB: persistToDB,
	}
}

type startRunRequest struct {
	GoNoGo *models.GoNoGoConfig `json:"gonogo,omitempty"`
	Rhythm *models.RhythmConfig `json:"rhythm,omitempty"`
	Meta   models.Meta          `json:"meta"`
}

// StartGoNoGo launches a discrete-trial run. Omitted config falls back to the
// preset file; a missing output folder falls back to the server data folder.
func (h *RunsHandler) StartGoNoGo(c *gin.Context) {
	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cfg := h.presets.GoNoGo
	if req.GoNoGo != nil {
		cfg = *req.GoNoGo
	}
	if strings.TrimSpace(cfg.OutputFolder) == "" {
		cfg.OutputFolder = h.dataFolder
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	run, err := paradigm.NewGoNoGoRun(cfg, req.Meta, rng, h.presenter, h.log)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Begin(run); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	run.Start()
	go h.finalizeGoNoGo(run, cfg)

	c.JSON(http.StatusCreated, gin.H{
		"paradigm": run.Paradigm(),
		"state":    run.State(),
		"go_ratio": run.Log().GoRatio,
	})
}

// StartRhythm launches a periodic-cue run.
func (h *RunsHandler) StartRhythm(c *gin.Context) {
	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cfg := h.presets.Rhythm
	if req.Rhythm != nil {
		cfg = *req.Rhythm
	}
	if strings.TrimSpace(cfg.OutputFolder) == "" {
		cfg.OutputFolder = h.dataFolder
	}

	run, err := paradigm.NewRhythmRun(cfg, req.Meta, h.presenter, h.log)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Begin(run); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	run.Start()
	go h.finalizeRhythm(run, cfg)

	c.JSON(http.StatusCreated, gin.H{
		"paradigm": run.Paradigm(),
		"state":    run.State(),
	})
}

// finalizeGoNoGo waits for the run to reach its terminal state, then exports
// the log and persists the scored result. Test-mode runs are never exported
// or stored.
func (h *RunsHandler) finalizeGoNoGo(run *paradigm.GoNoGoRun, cfg models.GoNoGoConfig) {
	<-run.Done()
	log := run.Log()
	summary := metrics.ComputeGoNoGo(log)

	if cfg.TestMode {
		h.log.Info("test-mode run discarded", zap.String("paradigm", run.Paradigm()))
		return
	}

	path := fileio.BuildTimestampedPath(cfg.OutputFolder, cfg.FilePrefix(), log.StartWallTime())
	if err := fileio.SaveJSON(path, log.Export()); err != nil {
		h.log.Error("Failed to export run log", zap.Error(err), zap.String("path", path))
	} else {
		h.log.Info("Run log exported", zap.String("path", path))
	}

	if h.persistToDB {
		id, err := repository.SaveGoNoGoResult(log, summary)
		if err != nil {
			h.log.Error("Failed to persist run result", zap.Error(err))
			return
		}
		h.log.Info("Run result stored", zap.Int("resultID", id))
	}
}

func (h *RunsHandler) finalizeRhythm(run *paradigm.RhythmRun, cfg models.RhythmConfig) {
	<-run.Done()
	log := run.Log()
	summary := metrics.ComputeRhythm(log)

	if cfg.TestMode {
		h.log.Info("test-mode run discarded", zap.String("paradigm", run.Paradigm()))
		return
	}

	path := fileio.BuildTimestampedPath(cfg.OutputFolder, cfg.FilePrefix(), log.StartWallTime())
	if err := fileio.SaveJSON(path, log.Export()); err != nil {
		h.log.Error("Failed to export run log", zap.Error(err), zap.String("path", path))
	} else {
		h.log.Info("Run log exported", zap.String("path", path))
	}

	if h.persistToDB {
		id, err := repository.SaveRhythmResult(log, summary)
		if err != nil {
			h.log.Error("Failed to persist run result", zap.Error(err))
			return
		}
		h.log.Info("Run result stored", zap.Int("resultID", id))
	}
}

// Active reports the state of the run in progress.
func (h *RunsHandler) Active(c *gin.Context) {
	run, err := h.registry.Active()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paradigm": run.Paradigm(),
		"state":    run.State(),
	})
}

type respondRequest struct {
	Key string `json:"key"`
}

// Respond forwards a subject keypress to the active run. The response is
// timestamped inside Respond, before this handler returns.
func (h *RunsHandler) Respond(c *gin.Context) {
	run, err := h.registry.Active()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		req.Key = "space"
	}

	if err := run.Respond(req.Key); err != nil {
		switch {
		case errors.Is(err, paradigm.ErrNoResponses):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusAccepted)
}

// Abort terminates the active run.
func (h *RunsHandler) Abort(c *gin.Context) {
	run, err := h.registry.Active()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := run.Abort(models.AbortReasonUserRequested); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"state": run.State()})
}

// PreviewSchedule reports the go ratio and per-digit draw probabilities for a
// candidate config without starting a run.
func (h *RunsHandler) PreviewSchedule(c *gin.Context) {
	var cfg models.GoNoGoConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ratio, err := schedule.ComputeGoRatio(cfg.GoDigits, cfg.NogoDigits, cfg.DigitWeights)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	goProbs, nogoProbs, err := schedule.DigitProbabilities(cfg.GoDigits, cfg.NogoDigits, cfg.DigitWeights)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"go_ratio":           ratio,
		"go_probabilities":   goProbs,
		"nogo_probabilities": nogoProbs,
	})
}

// Presets returns the configured paradigm presets.
func (h *RunsHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, h.presets)
}
