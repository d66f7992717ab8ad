package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamup-campus/teamup/internal/services"
	"github.com/teamup-campus/teamup/internal/utils"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type OpenChatRequest struct {
	PeerUserID string `json:"peer_user_id" binding:"required"`
}

func (h *ChatHandler) Open(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req OpenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Open", "invalid request body", err))
		return
	}

	chat, err := h.svc.Open(c.Request.Context(), userID, req.PeerUserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	chats, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": chats, "count": len(chats)})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeError(c, err)
		return
	}

	msgs, err := h.svc.Messages(c.Request.Context(), userID, c.Param("chat_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": msgs, "count": len(msgs)})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Send", "invalid request body", err))
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), userID, c.Param("chat_id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
