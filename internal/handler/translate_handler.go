package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/pkg/errcode"
	"github.com/lectern-dev/lectern/internal/pkg/response"
	"github.com/lectern-dev/lectern/internal/service"
)

type TranslateHandler struct {
	translate *service.TranslateService
}

func NewTranslateHandler(translate *service.TranslateService) *TranslateHandler {
	return &TranslateHandler{translate: translate}
}

type translateRequest struct {
	ChapterID      string `json:"chapter_id"`
	TargetLanguage string `json:"target_language"`
	// SourceContent translates ad-hoc text instead of the stored chapter.
	SourceContent string `json:"source_content,omitempty"`
}

func (h *TranslateHandler) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChapterID == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	res, err := h.translate.Translate(c.Request.Context(), getUserID(c), req.ChapterID, req.TargetLanguage, req.SourceContent)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *TranslateHandler) InvalidateChapter(c *gin.Context) {
	deleted, err := h.translate.InvalidateByChapter(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

func (h *TranslateHandler) Stats(c *gin.Context) {
	stats, err := h.translate.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
