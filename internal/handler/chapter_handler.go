package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/contentstore"
	"github.com/lectern-dev/lectern/internal/pkg/response"
)

// ChapterHandler exposes the raw chapter source without any transformation.
type ChapterHandler struct {
	store contentstore.Store
}

func NewChapterHandler(store contentstore.Store) *ChapterHandler {
	return &ChapterHandler{store: store}
}

func (h *ChapterHandler) List(c *gin.Context) {
	ids, err := h.store.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chapters": ids})
}

func (h *ChapterHandler) Get(c *gin.Context) {
	raw, err := h.store.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chapter_id": c.Param("id"), "content": string(raw)})
}
