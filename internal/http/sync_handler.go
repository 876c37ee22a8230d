package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionSyncAPI triggers a reconciliation sweep.
type SessionSyncAPI interface {
	SyncSessions(ctx context.Context) (int, error)
}

// SyncHandler serves the reconciliation trigger route.
type SyncHandler struct {
	sync SessionSyncAPI
}

// NewSyncHandler builds the handler.
func NewSyncHandler(sync SessionSyncAPI) *SyncHandler {
	return &SyncHandler{sync: sync}
}

type syncResponse struct {
	Synced int `json:"synced"`
}

// Sync handles POST /api/sessions/sync.
func (h *SyncHandler) Sync(c *gin.Context) {
	count, err := h.sync.SyncSessions(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, syncResponse{Synced: count})
}
