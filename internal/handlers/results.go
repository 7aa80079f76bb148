package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskui/internal/repository"
)

// ResultsHandler serves stored run results. All endpoints require the
// database to be enabled; file exports are the fallback record otherwise.
type ResultsHandler struct {
	log       *zap.Logger
	dbEnabled bool
}

func NewResultsHandler(log *zap.Logger, dbEnabled bool) *ResultsHandler {
	return &ResultsHandler{log: log, dbEnabled: dbEnabled}
}

func (h *ResultsHandler) requireDB(c *gin.Context) bool {
	if !h.dbEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result storage is disabled"})
		return false
	}
	return true
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return 0, false
	}
	return id, true
}

// ListGoNoGo returns stored discrete-trial run summaries, newest first.
func (h *ResultsHandler) ListGoNoGo(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	results, err := repository.ListGoNoGoResults(limit)
	if err != nil {
		h.log.Error("Failed to list results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetGoNoGo returns one stored run with its trial events.
func (h *ResultsHandler) GetGoNoGo(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, events, err := repository.GetGoNoGoResult(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		h.log.Error("Failed to load result", zap.Error(err), zap.Int("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "trials": events})
}

// ListRhythm returns stored periodic-cue run summaries, newest first.
func (h *ResultsHandler) ListRhythm(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	results, err := repository.ListRhythmResults(limit)
	if err != nil {
		h.log.Error("Failed to list results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetRhythm returns one stored run with its per-part cue arrays.
func (h *ResultsHandler) GetRhythm(c *gin.Context) {
	if !h.requireDB(c) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, parts, err := repository.GetRhythmResult(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		h.log.Error("Failed to load result", zap.Error(err), zap.Int("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "cue_parts": parts})
}
