package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingSvc service.ListingService
}

func NewListingHandler(listingSvc service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingSvc: listingSvc,
	}
}

func (s *ListingHandler) CreateListing(c *gin.Context) {
	var req dto.ListingBaseDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	listing, err := s.listingSvc.CreateListing(c.Request.Context(), currentViewer(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listing)
}

func (s *ListingHandler) UpdateListing(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.ListingBaseDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	listing, err := s.listingSvc.UpdateListing(c.Request.Context(), currentViewer(c), listingID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listing)
}

func (s *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	listing, err := s.listingSvc.GetListing(c.Request.Context(), currentViewer(c), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listing)
}

func (s *ListingHandler) ListListings(c *gin.Context) {
	var query dto.ListingQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	page, err := s.listingSvc.ListListings(c.Request.Context(), currentViewer(c), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *ListingHandler) GetListingStats(c *gin.Context) {
	var query dto.ListingQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	stats, err := s.listingSvc.GetListingStats(c.Request.Context(), currentViewer(c), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (s *ListingHandler) GetCategoryBreakdown(c *gin.Context) {
	var query dto.ListingQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	breakdown, err := s.listingSvc.GetCategoryBreakdown(c.Request.Context(), currentViewer(c), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, breakdown)
}

func (s *ListingHandler) GetCategories(c *gin.Context) {
	values, err := s.listingSvc.GetDistinctCategories(c.Request.Context(), currentViewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, values)
}

func (s *ListingHandler) GetUniversities(c *gin.Context) {
	values, err := s.listingSvc.GetDistinctUniversities(c.Request.Context(), currentViewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, values)
}

func (s *ListingHandler) MarkSold(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	err = s.listingSvc.MarkSold(c.Request.Context(), c.GetUint64("user_id"), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ListingHandler) RemoveListing(c *gin.Context) {
	listingID, err := parseUint64Param(c, "listing_id")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	err = s.listingSvc.RemoveListing(c.Request.Context(), currentViewer(c), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ListingHandler) SearchListings(c *gin.Context) {
	var query dto.SearchQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	listings, err := s.listingSvc.SearchListings(c.Request.Context(), currentViewer(c), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listings)
}

func (s *ListingHandler) SuggestPrice(c *gin.Context) {
	var req dto.PriceSuggestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	suggestion, err := s.listingSvc.SuggestPrice(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, suggestion)
}
