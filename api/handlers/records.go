package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/pkg/models"
)

// Reader is the read side of the store.
type Reader interface {
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
}

type RecordsHandler struct {
	reader Reader
}

func NewRecordsHandler(reader Reader) *RecordsHandler {
	return &RecordsHandler{reader: reader}
}

// ListSnapshots returns every stored snapshot, oldest first.
func (h *RecordsHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.reader.ListSnapshots(c.Request.Context())
	if err != nil {
		logger.ErrorCtxf(c.Request.Context(), "Failed to list snapshots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
		return
	}

	if snapshots == nil {
		snapshots = []models.Snapshot{}
	}
	c.JSON(http.StatusOK, snapshots)
}

// ListAlerts returns every stored alert, oldest first.
func (h *RecordsHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.reader.ListAlerts(c.Request.Context())
	if err != nil {
		logger.ErrorCtxf(c.Request.Context(), "Failed to list alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}
