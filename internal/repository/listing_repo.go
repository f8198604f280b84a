package repository

import (
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ListingFilter 商品查询条件
// IncludeHidden 为 true 时跳过审核与可见性过滤（管理端专用），
// 普通查询路径永远在 SQL 层强制 approved + 可见性规则。
type ListingFilter struct {
	Keyword          string
	Category         string
	SubCategory      string
	Tag              string
	Condition        string
	PricingType      string
	PriceMin         *float64
	PriceMax         *float64
	SellerID         uint64
	Status           string
	ApprovalStatus   string
	ViewerUniversity string
	IncludeHidden    bool
	Sort             string
	Page             int
	Size             int
}

// ListingStats 过滤结果集上的聚合指标
type ListingStats struct {
	Total                int64   `json:"total"`
	AvgPrice             float64 `json:"avg_price"`
	MinPrice             float64 `json:"min_price"`
	MaxPrice             float64 `json:"max_price"`
	DistinctCategories   int64   `json:"distinct_categories"`
	DistinctUniversities int64   `json:"distinct_universities"`
}

// CategoryCount 类目分布
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ApprovalCount 审核状态分布
type ApprovalCount struct {
	ApprovalStatus string `json:"approval_status"`
	Count          int64  `json:"count"`
}

type ListingRepo interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id uint64) (*model.Listing, error)
	UpdateListing(ctx context.Context, listing *model.Listing, images []*model.ListingImage, tags []*model.ListingTag, locations []*model.ListingLocation) error
	QueryListings(ctx context.Context, filter *ListingFilter) ([]*model.Listing, int64, error)
	GetListingStats(ctx context.Context, filter *ListingFilter) (*ListingStats, error)
	GetCategoryBreakdown(ctx context.Context, filter *ListingFilter) ([]*CategoryCount, error)
	GetApprovalBreakdown(ctx context.Context) ([]*ApprovalCount, error)
	GetDistinctValues(ctx context.Context, column string, filter *ListingFilter) ([]string, error)
	UpdateListingStatus(ctx context.Context, id uint64, fromStatus, toStatus string) (bool, error)
	DecideApproval(ctx context.Context, id uint64, decision string, reviewerID uint64, reason string) (bool, error)
	ReopenApproval(ctx context.Context, id uint64) (bool, error)
	ListPendingReview(ctx context.Context, page, size int) ([]*model.Listing, int64, error)
	ExpireListingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	AddListingViews(ctx context.Context, id uint64, delta uint64) error
}

type ListingRepoImpl struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepo {
	return &ListingRepoImpl{db: db}
}

func (s ListingRepoImpl) CreateListing(ctx context.Context, listing *model.Listing) error {
	// 关联子表跟随主表一起写入
	return s.db.WithContext(ctx).Create(listing).Error
}

func (s ListingRepoImpl) GetListing(ctx context.Context, id uint64) (*model.Listing, error) {
	var listing model.Listing
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tags").
		Preload("Locations").
		First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (s ListingRepoImpl) UpdateListing(ctx context.Context, listing *model.Listing, images []*model.ListingImage, tags []*model.ListingTag, locations []*model.ListingLocation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(listing).Select(
			"title", "description", "category", "sub_category",
			"price", "pricing_type", "condition", "visibility",
			"approval_status", "rejection_reason", "approved_by", "approved_at",
		).Updates(listing).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.ListingImage{}, "listing_id = ?", listing.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ListingTag{}, "listing_id = ?", listing.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.ListingLocation{}, "listing_id = ?", listing.ID).Error; err != nil {
			return err
		}

		if len(images) > 0 {
			if err := tx.Create(images).Error; err != nil {
				return err
			}
		}
		if len(tags) > 0 {
			if err := tx.Create(tags).Error; err != nil {
				return err
			}
		}
		if len(locations) > 0 {
			if err := tx.Create(locations).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s ListingRepoImpl) QueryListings(ctx context.Context, filter *ListingFilter) ([]*model.Listing, int64, error) {
	query := s.buildFilterQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*model.Listing
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tags").
		Preload("Locations").
		Order(sortClause(filter.Sort)).
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// GetListingStats 聚合统计与列表查询共用同一份 WHERE 条件
func (s ListingRepoImpl) GetListingStats(ctx context.Context, filter *ListingFilter) (*ListingStats, error) {
	var stats ListingStats
	err := s.buildFilterQuery(ctx, filter).
		Select("COUNT(*) AS total, COALESCE(AVG(price), 0) AS avg_price, COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price, COUNT(DISTINCT category) AS distinct_categories, COUNT(DISTINCT seller_university) AS distinct_universities").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s ListingRepoImpl) GetCategoryBreakdown(ctx context.Context, filter *ListingFilter) ([]*CategoryCount, error) {
	var breakdown []*CategoryCount
	err := s.buildFilterQuery(ctx, filter).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&breakdown).Error
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// GetApprovalBreakdown 全量商品按审核状态分布，管理端视图
func (s ListingRepoImpl) GetApprovalBreakdown(ctx context.Context) ([]*ApprovalCount, error) {
	var breakdown []*ApprovalCount
	err := s.db.WithContext(ctx).Model(&model.Listing{}).
		Select("approval_status, COUNT(*) AS count").
		Group("approval_status").
		Scan(&breakdown).Error
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// GetDistinctValues column 只接受白名单列，调用方负责传入合法值
func (s ListingRepoImpl) GetDistinctValues(ctx context.Context, column string, filter *ListingFilter) ([]string, error) {
	var values []string
	err := s.buildFilterQuery(ctx, filter).
		Distinct(column).
		Where(column+" <> ''").
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// UpdateListingStatus 带前置状态校验的状态流转，返回是否命中
func (s ListingRepoImpl) UpdateListingStatus(ctx context.Context, id uint64, fromStatus, toStatus string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecideApproval 审核裁决
// WHERE 条件限定 pending，保证同一商品并发裁决只有一个生效。
func (s ListingRepoImpl) DecideApproval(ctx context.Context, id uint64, decision string, reviewerID uint64, reason string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"approval_status":  decision,
		"rejection_reason": reason,
		"approved_by":      reviewerID,
		"approved_at":      &now,
	}
	if decision == consts.ApprovalApproved {
		updates["rejection_reason"] = ""
	}

	result := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("id = ? AND approval_status = ?", id, consts.ApprovalPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReopenApproval 将已裁决商品重新置为待审
func (s ListingRepoImpl) ReopenApproval(ctx context.Context, id uint64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("id = ? AND approval_status <> ?", id, consts.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status":  consts.ApprovalPending,
			"rejection_reason": "",
			"approved_by":      0,
			"approved_at":      nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s ListingRepoImpl) ListPendingReview(ctx context.Context, page, size int) ([]*model.Listing, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("approval_status = ?", consts.ApprovalPending).
		Where("status = ?", consts.ListingStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*model.Listing
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tags").
		Order("created_at ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (s ListingRepoImpl) ExpireListingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("status = ? AND created_at < ?", consts.ListingStatusActive, cutoff).
		Update("status", consts.ListingStatusExpired)
	return result.RowsAffected, result.Error
}

func (s ListingRepoImpl) AddListingViews(ctx context.Context, id uint64, delta uint64) error {
	return s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + ?", delta)).Error
}

// buildFilterQuery 列表、统计、分布共用的条件拼装
func (s ListingRepoImpl) buildFilterQuery(ctx context.Context, filter *ListingFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&model.Listing{})

	if !filter.IncludeHidden {
		query = query.Where("approval_status = ?", consts.ApprovalApproved)
		if filter.ViewerUniversity != "" {
			query = query.Where("visibility = ? OR (visibility = ? AND seller_university = ?)",
				consts.VisibilityAll, consts.VisibilityUniversity, filter.ViewerUniversity)
		} else {
			query = query.Where("visibility = ?", consts.VisibilityAll)
		}
	} else if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SubCategory != "" {
		query = query.Where("sub_category = ?", filter.SubCategory)
	}
	if filter.Condition != "" {
		query = query.Where("`condition` = ?", filter.Condition)
	}
	if filter.PricingType != "" {
		query = query.Where("pricing_type = ?", filter.PricingType)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}
	if filter.Tag != "" {
		query = query.Where("id IN (?)",
			s.db.Model(&model.ListingTag{}).Select("listing_id").Where("name = ?", filter.Tag))
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR id IN (?)",
			like, like,
			s.db.Model(&model.ListingTag{}).Select("listing_id").Where("name LIKE ?", like))
	}

	return query
}

func sortClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "views_desc":
		return "views DESC"
	case "created_asc":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}
