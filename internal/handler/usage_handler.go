package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/pkg/response"
	"github.com/lectern-dev/lectern/internal/repo"
)

type UsageHandler struct {
	usage *repo.UsageLogRepo
}

func NewUsageHandler(usage *repo.UsageLogRepo) *UsageHandler {
	return &UsageHandler{usage: usage}
}

func (h *UsageHandler) Mine(c *gin.Context) {
	userID := getUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	counts, err := h.usage.CountsByUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	recent, err := h.usage.RecentByUser(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"counts": counts, "recent": recent})
}
