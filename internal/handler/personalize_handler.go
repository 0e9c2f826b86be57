package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/model"
	"github.com/lectern-dev/lectern/internal/pkg/errcode"
	"github.com/lectern-dev/lectern/internal/pkg/response"
	"github.com/lectern-dev/lectern/internal/service"
)

type PersonalizeHandler struct {
	personalize *service.PersonalizeService
}

func NewPersonalizeHandler(personalize *service.PersonalizeService) *PersonalizeHandler {
	return &PersonalizeHandler{personalize: personalize}
}

type personalizeRequest struct {
	ChapterID string        `json:"chapter_id"`
	Profile   model.Profile `json:"profile"`
}

func (h *PersonalizeHandler) Personalize(c *gin.Context) {
	var req personalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChapterID == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	res, err := h.personalize.Personalize(c.Request.Context(), getUserID(c), req.ChapterID, req.Profile)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

// Labels previews the adaptation labels a profile maps to, without touching
// the cache or any provider.
func (h *PersonalizeHandler) Labels(c *gin.Context) {
	var req personalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	response.Success(c, gin.H{"labels": service.TransformationLabels(req.Profile)})
}

// InvalidateMine drops every cached personalization owned by the caller.
func (h *PersonalizeHandler) InvalidateMine(c *gin.Context) {
	deleted, err := h.personalize.InvalidateByUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

func (h *PersonalizeHandler) Stats(c *gin.Context) {
	stats, err := h.personalize.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
