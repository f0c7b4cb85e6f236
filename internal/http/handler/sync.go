package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"qualisync.app/bridge/internal/sync"
)

type SyncHandler struct {
	syncService sync.Service
}

func NewSyncHandler(syncService sync.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncFindings files tickets for new findings and reports created and
// already-existing ticket keys.
func (h *SyncHandler) SyncFindings(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.syncService.SyncFindings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "finding sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "finding sync failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// CloseResolved runs one reconciliation pass over open tickets. Partial
// results come back as 200; only a pipeline-fatal failure (no ticket page
// could be fetched at all) is a 500.
func (h *SyncHandler) CloseResolved(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.syncService.CloseResolved(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reconciliation pass failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
