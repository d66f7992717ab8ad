package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamup-campus/teamup/internal/services"
	"github.com/teamup-campus/teamup/internal/utils"
)

type InteractionHandler struct {
	svc services.InteractionService
}

func NewInteractionHandler(svc services.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

type CreateInteractionRequest struct {
	TargetUserID string         `json:"target_user_id" binding:"required"`
	Action       string         `json:"action" binding:"required"`
	Meta         map[string]any `json:"meta"`
}

func (h *InteractionHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InteractionHandler.Create", "invalid request body", err))
		return
	}

	row, err := h.svc.Record(c.Request.Context(), userID, services.InteractionInput{
		TargetUserID: req.TargetUserID,
		Action:       req.Action,
		Meta:         req.Meta,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}
