package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lectern-dev/lectern/internal/pkg/errcode"
	"github.com/lectern-dev/lectern/internal/pkg/response"
	"github.com/lectern-dev/lectern/internal/service"
)

type RAGHandler struct {
	ingest *service.IngestService
}

func NewRAGHandler(ingest *service.IngestService) *RAGHandler {
	return &RAGHandler{ingest: ingest}
}

type reindexRequest struct {
	ChapterID string `json:"chapter_id"`
	Force     bool   `json:"force"`
}

// Reindex rebuilds one chapter's chunks, or every chapter when chapter_id is
// omitted.
func (h *RAGHandler) Reindex(c *gin.Context) {
	var req reindexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.ChapterID == "" {
		results, err := h.ingest.ReindexAll(c.Request.Context(), req.Force)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"results": results})
		return
	}
	res, err := h.ingest.Reindex(c.Request.Context(), req.ChapterID, req.Force)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *RAGHandler) Search(c *gin.Context) {
	query := c.Query("q")
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "10"))
	matches, err := h.ingest.Search(c.Request.Context(), query, topK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"matches": matches})
}

func (h *RAGHandler) Chunks(c *gin.Context) {
	chunks, err := h.ingest.Chunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": chunks})
}
