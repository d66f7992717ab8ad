package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamup-campus/teamup/internal/services"
	"github.com/teamup-campus/teamup/internal/utils"
)

type RecommendHandler struct {
	svc services.RecommendService
}

func NewRecommendHandler(svc services.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

// Recommend accepts an optional body; an empty POST behaves like GET.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.RecommendRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, utils.E(utils.CodeInvalidArgument, "RecommendHandler.Recommend", "invalid request body", err))
			return
		}
	} else {
		k, err := queryInt(c, "k", 0)
		if err != nil {
			writeError(c, err)
			return
		}
		req.K = k
	}

	resp, err := h.svc.Recommend(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecommendHandler) History(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeError(c, err)
		return
	}

	rows, err := h.svc.History(c.Request.Context(), c.Param("user_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rows, "count": len(rows)})
}
