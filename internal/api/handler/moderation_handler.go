package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationSvc service.ModerationService
}

func NewModerationHandler(moderationSvc service.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		moderationSvc: moderationSvc,
	}
}

func (s *ModerationHandler) ListPendingReview(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := s.moderationSvc.ListPendingReview(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *ModerationHandler) ListAll(c *gin.Context) {
	var query dto.ModerationQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.moderationSvc.ListAll(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *ModerationHandler) Decide(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.ReviewDecisionDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	err = s.moderationSvc.Decide(c.Request.Context(), c.GetUint64("user_id"), listingID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ModerationHandler) Reopen(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	err = s.moderationSvc.Reopen(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ModerationHandler) StatusBreakdown(c *gin.Context) {
	breakdown, err := s.moderationSvc.StatusBreakdown(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, breakdown)
}
