package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/es"
	"UniMarket/internal/pkg/llm"
	"UniMarket/internal/pkg/redis"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
	"strconv"

	"github.com/jinzhu/copier"
)

// Viewer 当前请求者的查看上下文
// Moderator 为 true 时跳过审核与可见性过滤
type Viewer struct {
	UserID     uint64
	University string
	Moderator  bool
}

// ListingService 商品服务接口定义
type ListingService interface {
	CreateListing(ctx context.Context, viewer *Viewer, req *dto.ListingBaseDTO) (*dto.ListingDTO, error)
	UpdateListing(ctx context.Context, viewer *Viewer, id uint64, req *dto.ListingBaseDTO) (*dto.ListingDTO, error)
	GetListing(ctx context.Context, viewer *Viewer, id uint64) (*dto.ListingDTO, error)
	ListListings(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) (*dto.PageResult, error)
	GetListingStats(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) (*dto.ListingStatsDTO, error)
	GetCategoryBreakdown(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) ([]*dto.CategoryCountDTO, error)
	GetDistinctCategories(ctx context.Context, viewer *Viewer) ([]string, error)
	GetDistinctUniversities(ctx context.Context, viewer *Viewer) ([]string, error)
	MarkSold(ctx context.Context, userID uint64, id uint64) error
	RemoveListing(ctx context.Context, viewer *Viewer, id uint64) error
	SearchListings(ctx context.Context, viewer *Viewer, query *dto.SearchQueryDTO) ([]*dto.ListingDTO, error)
	SuggestPrice(ctx context.Context, req *dto.PriceSuggestDTO) (*llm.PriceSuggestion, error)
}

type listingServiceImpl struct {
	listingRepo   repository.ListingRepo
	listingESRepo es.ListingRepo
}

func NewListingService(listingRepo repository.ListingRepo, listingESRepo es.ListingRepo) ListingService {
	return &listingServiceImpl{
		listingRepo:   listingRepo,
		listingESRepo: listingESRepo,
	}
}

// CreateListing 创建商品，新商品一律进入待审核状态
func (s *listingServiceImpl) CreateListing(ctx context.Context, viewer *Viewer, req *dto.ListingBaseDTO) (*dto.ListingDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	if err := s.checkListingRules(req); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		SellerID:         viewer.UserID,
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		SubCategory:      req.SubCategory,
		Price:            req.Price,
		PricingType:      req.PricingType,
		Condition:        req.Condition,
		SellerUniversity: viewer.University,
		Visibility:       req.Visibility,
		Status:           consts.ListingStatusActive,
		ApprovalStatus:   consts.ApprovalPending,
	}
	fillAssociations(listing, req)

	if err := s.listingRepo.CreateListing(ctx, listing); err != nil {
		log.ErrorContext(ctx, "create listing error", "err", err)
		return nil, UnExpectedError
	}

	return toListingDTO(listing), nil
}

// UpdateListing 卖家编辑商品
// 任何内容变更都会把审核状态重置为 pending，重新排队审核。
func (s *listingServiceImpl) UpdateListing(ctx context.Context, viewer *Viewer, id uint64, req *dto.ListingBaseDTO) (*dto.ListingDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	if err := s.checkListingRules(req); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetListing(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", id, "err", err)
		return nil, UnExpectedError
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.SellerID != viewer.UserID {
		return nil, ForbiddenError
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.Category = req.Category
	listing.SubCategory = req.SubCategory
	listing.Price = req.Price
	listing.PricingType = req.PricingType
	listing.Condition = req.Condition
	listing.Visibility = req.Visibility
	listing.ApprovalStatus = consts.ApprovalPending
	listing.RejectionReason = ""
	listing.ApprovedBy = 0
	listing.ApprovedAt = nil

	images, tags, locations := buildAssociations(listing.ID, req)
	if err = s.listingRepo.UpdateListing(ctx, listing, images, tags, locations); err != nil {
		log.ErrorContext(ctx, "update listing error", "id", id, "err", err)
		return nil, UnExpectedError
	}

	return s.GetListing(ctx, viewer, id)
}

// GetListing 商品详情
// 未过审商品只有卖家本人和审核员可见。
func (s *listingServiceImpl) GetListing(ctx context.Context, viewer *Viewer, id uint64) (*dto.ListingDTO, error) {
	listing, err := s.listingRepo.GetListing(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", id, "err", err)
		return nil, UnExpectedError
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	if !s.canView(viewer, listing) {
		// 对无权查看者表现为不存在，避免泄露商品存在性
		return nil, ErrListingNotFound
	}

	// 浏览计数走 Redis，定时任务批量刷回 DB
	if viewer.UserID != listing.SellerID && listing.ApprovalStatus == consts.ApprovalApproved {
		s.recordView(ctx, listing.ID)
	}

	return toListingDTO(listing), nil
}

func (s *listingServiceImpl) ListListings(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) (*dto.PageResult, error) {
	filter := s.toFilter(viewer, query)

	listings, total, err := s.listingRepo.QueryListings(ctx, filter)
	if err != nil {
		log.ErrorContext(ctx, "query listings error", "err", err)
		return nil, UnExpectedError
	}

	list := make([]*dto.ListingDTO, 0, len(listings))
	for _, l := range listings {
		list = append(list, toListingDTO(l))
	}

	return dto.NewPageResult(list, total, filter.Page, filter.Size), nil
}

func (s *listingServiceImpl) GetListingStats(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) (*dto.ListingStatsDTO, error) {
	stats, err := s.listingRepo.GetListingStats(ctx, s.toFilter(viewer, query))
	if err != nil {
		log.ErrorContext(ctx, "get listing stats error", "err", err)
		return nil, UnExpectedError
	}
	return &dto.ListingStatsDTO{
		Total:                stats.Total,
		AvgPrice:             stats.AvgPrice,
		MinPrice:             stats.MinPrice,
		MaxPrice:             stats.MaxPrice,
		DistinctCategories:   stats.DistinctCategories,
		DistinctUniversities: stats.DistinctUniversities,
	}, nil
}

func (s *listingServiceImpl) GetCategoryBreakdown(ctx context.Context, viewer *Viewer, query *dto.ListingQueryDTO) ([]*dto.CategoryCountDTO, error) {
	breakdown, err := s.listingRepo.GetCategoryBreakdown(ctx, s.toFilter(viewer, query))
	if err != nil {
		log.ErrorContext(ctx, "get category breakdown error", "err", err)
		return nil, UnExpectedError
	}
	result := make([]*dto.CategoryCountDTO, 0, len(breakdown))
	for _, b := range breakdown {
		result = append(result, &dto.CategoryCountDTO{Category: b.Category, Count: b.Count})
	}
	return result, nil
}

func (s *listingServiceImpl) GetDistinctCategories(ctx context.Context, viewer *Viewer) ([]string, error) {
	filter := s.toFilter(viewer, &dto.ListingQueryDTO{Status: consts.ListingStatusActive})
	values, err := s.listingRepo.GetDistinctValues(ctx, "category", filter)
	if err != nil {
		log.ErrorContext(ctx, "get distinct categories error", "err", err)
		return nil, UnExpectedError
	}
	return values, nil
}

func (s *listingServiceImpl) GetDistinctUniversities(ctx context.Context, viewer *Viewer) ([]string, error) {
	filter := s.toFilter(viewer, &dto.ListingQueryDTO{Status: consts.ListingStatusActive})
	values, err := s.listingRepo.GetDistinctValues(ctx, "seller_university", filter)
	if err != nil {
		log.ErrorContext(ctx, "get distinct universities error", "err", err)
		return nil, UnExpectedError
	}
	return values, nil
}

// MarkSold 卖家标记已售出，只有在售商品可以流转
func (s *listingServiceImpl) MarkSold(ctx context.Context, userID uint64, id uint64) error {
	listing, err := s.listingRepo.GetListing(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", id, "err", err)
		return UnExpectedError
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if listing.SellerID != userID {
		return ForbiddenError
	}

	ok, err := s.listingRepo.UpdateListingStatus(ctx, id, consts.ListingStatusActive, consts.ListingStatusSold)
	if err != nil {
		log.ErrorContext(ctx, "mark listing sold error", "id", id, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrActionInvalid
	}
	return nil
}

// RemoveListing 下架商品，卖家本人或审核员可操作
func (s *listingServiceImpl) RemoveListing(ctx context.Context, viewer *Viewer, id uint64) error {
	listing, err := s.listingRepo.GetListing(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "get listing error", "id", id, "err", err)
		return UnExpectedError
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if listing.SellerID != viewer.UserID && !viewer.Moderator {
		return ForbiddenError
	}
	if listing.Status == consts.ListingStatusRemoved {
		return nil
	}

	_, err = s.listingRepo.UpdateListingStatus(ctx, id, listing.Status, consts.ListingStatusRemoved)
	if err != nil {
		log.ErrorContext(ctx, "remove listing error", "id", id, "err", err)
		return UnExpectedError
	}
	return nil
}

// SearchListings 关键词搜索，走 ES 索引
func (s *listingServiceImpl) SearchListings(ctx context.Context, viewer *Viewer, query *dto.SearchQueryDTO) ([]*dto.ListingDTO, error) {
	page, size := normalizePage(query.Page, query.Size)

	university := viewer.University
	if viewer.Moderator {
		university = ""
	}

	docs, err := s.listingESRepo.SearchListings(ctx, query.Keyword, university, (page-1)*size, size)
	if err != nil {
		log.ErrorContext(ctx, "search listings error", "keyword", query.Keyword, "err", err)
		return nil, UnExpectedError
	}

	list := make([]*dto.ListingDTO, 0, len(docs))
	for _, doc := range docs {
		list = append(list, esDocToDTO(doc))
	}
	return list, nil
}

// SuggestPrice 定价建议，纯参考信息
func (s *listingServiceImpl) SuggestPrice(ctx context.Context, req *dto.PriceSuggestDTO) (*llm.PriceSuggestion, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	suggestion, err := llm.SuggestPrice(ctx, req.Title, req.Description, req.Condition)
	if err != nil {
		// 咨询性功能，模型不可用时降级为空建议而不是报错
		log.WarnContext(ctx, "price suggest unavailable", "err", err)
		return &llm.PriceSuggestion{}, nil
	}
	return suggestion, nil
}

func (s *listingServiceImpl) checkListingRules(req *dto.ListingBaseDTO) error {
	if req.Price < 0 {
		return ErrPriceInvalid
	}
	if req.Category == consts.CategoryItem {
		if len(req.Images) == 0 {
			return ErrImageRequired
		}
		if req.Condition == "" {
			return ErrConditionRequired
		}
	}
	// 非法坐标点直接丢弃，全部非法才算错误
	valid := make([]*dto.LocationDTO, 0, len(req.Locations))
	for _, loc := range req.Locations {
		if util.ValidCoordinate(loc.Longitude, loc.Latitude) {
			valid = append(valid, loc)
		}
	}
	if len(valid) == 0 {
		return ErrGeoInvalid
	}
	req.Locations = valid
	return nil
}

func (s *listingServiceImpl) canView(viewer *Viewer, listing *model.Listing) bool {
	if viewer.Moderator || viewer.UserID == listing.SellerID {
		return true
	}
	if listing.ApprovalStatus != consts.ApprovalApproved {
		return false
	}
	if listing.Visibility == consts.VisibilityUniversity {
		return viewer.University != "" && viewer.University == listing.SellerUniversity
	}
	return true
}

func (s *listingServiceImpl) recordView(ctx context.Context, id uint64) {
	idStr := strconv.FormatUint(id, 10)
	if _, err := redis.IncrBy(ctx, consts.ListingViewKey+idStr, 1); err != nil {
		log.WarnContext(ctx, "incr listing view error", "id", id, "err", err)
		return
	}
	if err := redis.SAdd(ctx, consts.ListingViewDirtyKey, idStr); err != nil {
		log.WarnContext(ctx, "mark listing view dirty error", "id", id, "err", err)
	}
}

func (s *listingServiceImpl) toFilter(viewer *Viewer, query *dto.ListingQueryDTO) *repository.ListingFilter {
	page, size := normalizePage(query.Page, query.Size)

	filter := &repository.ListingFilter{
		Keyword:     query.Keyword,
		Category:    query.Category,
		SubCategory: query.SubCategory,
		Tag:         query.Tag,
		Condition:   query.Condition,
		PricingType: query.PricingType,
		PriceMin:    query.PriceMin,
		PriceMax:    query.PriceMax,
		SellerID:    query.SellerID,
		Status:      query.Status,
		Sort:        query.Sort,
		Page:        page,
		Size:        size,
	}
	if filter.Status == "" {
		filter.Status = consts.ListingStatusActive
	}

	if viewer.Moderator {
		filter.IncludeHidden = true
	} else {
		filter.ViewerUniversity = viewer.University
	}
	return filter
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 20
	}
	return page, size
}

func fillAssociations(listing *model.Listing, req *dto.ListingBaseDTO) {
	listing.Images = make([]model.ListingImage, 0, len(req.Images))
	for i, url := range req.Images {
		listing.Images = append(listing.Images, model.ListingImage{URL: url, Position: i})
	}
	tags := util.NormalizeTags(req.Tags)
	listing.Tags = make([]model.ListingTag, 0, len(tags))
	for _, name := range tags {
		listing.Tags = append(listing.Tags, model.ListingTag{Name: name})
	}
	listing.Locations = make([]model.ListingLocation, 0, len(req.Locations))
	for _, loc := range req.Locations {
		listing.Locations = append(listing.Locations, model.ListingLocation{
			Longitude: loc.Longitude,
			Latitude:  loc.Latitude,
			Label:     loc.Label,
		})
	}
}

func buildAssociations(listingID uint64, req *dto.ListingBaseDTO) ([]*model.ListingImage, []*model.ListingTag, []*model.ListingLocation) {
	images := make([]*model.ListingImage, 0, len(req.Images))
	for i, url := range req.Images {
		images = append(images, &model.ListingImage{ListingID: listingID, URL: url, Position: i})
	}
	tagNames := util.NormalizeTags(req.Tags)
	tags := make([]*model.ListingTag, 0, len(tagNames))
	for _, name := range tagNames {
		tags = append(tags, &model.ListingTag{ListingID: listingID, Name: name})
	}
	locations := make([]*model.ListingLocation, 0, len(req.Locations))
	for _, loc := range req.Locations {
		locations = append(locations, &model.ListingLocation{
			ListingID: listingID,
			Longitude: loc.Longitude,
			Latitude:  loc.Latitude,
			Label:     loc.Label,
		})
	}
	return images, tags, locations
}

func toListingDTO(listing *model.Listing) *dto.ListingDTO {
	result := &dto.ListingDTO{
		ID:               listing.ID,
		SellerID:         listing.SellerID,
		Title:            listing.Title,
		Description:      listing.Description,
		Category:         listing.Category,
		SubCategory:      listing.SubCategory,
		Price:            listing.Price,
		PricingType:      listing.PricingType,
		Condition:        listing.Condition,
		SellerUniversity: listing.SellerUniversity,
		Visibility:       listing.Visibility,
		Status:           listing.Status,
		ApprovalStatus:   listing.ApprovalStatus,
		RejectionReason:  listing.RejectionReason,
		Views:            listing.Views,
		CreatedAt:        listing.CreatedAt,
		UpdatedAt:        listing.UpdatedAt,
	}
	result.Images = make([]string, 0, len(listing.Images))
	for _, img := range listing.Images {
		result.Images = append(result.Images, img.URL)
	}
	result.Tags = make([]string, 0, len(listing.Tags))
	for _, t := range listing.Tags {
		result.Tags = append(result.Tags, t.Name)
	}
	result.Locations = make([]*dto.LocationDTO, 0, len(listing.Locations))
	for _, loc := range listing.Locations {
		result.Locations = append(result.Locations, &dto.LocationDTO{
			Longitude: loc.Longitude,
			Latitude:  loc.Latitude,
			Label:     loc.Label,
		})
	}
	return result
}

func esDocToDTO(doc *es.ListingES) *dto.ListingDTO {
	result := &dto.ListingDTO{}
	_ = copier.Copy(result, doc)
	// 搜索文档不含交易地点，明细需回源数据库
	result.Locations = make([]*dto.LocationDTO, 0)
	return result
}
