package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

func (s *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	token, err := s.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) Login(c *gin.Context) {
	var req dto.CredentialDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	token, err := s.userSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := s.userSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserInfo(c *gin.Context) {
	info, err := s.userSvc.GetUserInfo(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}
