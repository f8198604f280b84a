package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatSvc: chatSvc,
	}
}

func (s *ChatHandler) StartConversation(c *gin.Context) {
	var req dto.StartConversationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	conv, err := s.chatSvc.StartConversation(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}

func (s *ChatHandler) GetConversationList(c *gin.Context) {
	list, err := s.chatSvc.GetConversationList(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ChatHandler) GetConversation(c *gin.Context) {
	convID, err := parseUint64Param(c, "conversation_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	conv, err := s.chatSvc.GetConversation(c.Request.Context(), c.GetUint64("user_id"), convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}

func (s *ChatHandler) SendMessage(c *gin.Context) {
	convID, err := parseUint64Param(c, "conversation_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.SendMessageDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	msg, err := s.chatSvc.SendMessage(c.Request.Context(), c.GetUint64("user_id"), convID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *ChatHandler) GetChatHistory(c *gin.Context) {
	convID, err := parseUint64Param(c, "conversation_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	history, err := s.chatSvc.GetChatHistory(c.Request.Context(), c.GetUint64("user_id"), convID, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}

func (s *ChatHandler) MarkAsRead(c *gin.Context) {
	convID, err := parseUint64Param(c, "conversation_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sessionID := c.Query("session_id")
	modified, err := s.chatSvc.MarkAsRead(c.Request.Context(), c.GetUint64("user_id"), convID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"read_count": modified})
}
