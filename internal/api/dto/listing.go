package dto

import "time"

// ListingBaseDTO 商品 - 新增或修改
type ListingBaseDTO struct {
	Title       string         `json:"title" binding:"required" validate:"min=1,max=255"`
	Description string         `json:"description" binding:"required" validate:"min=1,max=5000"`
	Category    string         `json:"category" binding:"required,oneof=item service"`
	SubCategory string         `json:"sub_category" validate:"max=64"`
	Price       float64        `json:"price"`
	PricingType string         `json:"pricing_type" binding:"required,oneof=fixed bidding hourly"`
	Condition   string         `json:"condition" validate:"max=32"`
	Visibility  string         `json:"visibility" binding:"required,oneof=university all"`
	Images      []string       `json:"images" validate:"max=9,dive,max=512"`
	Tags        []string       `json:"tags" validate:"max=10,dive,max=64"`
	Locations   []*LocationDTO `json:"locations" validate:"max=5"`
}

// LocationDTO 交易地点
type LocationDTO struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Label     string  `json:"label" validate:"max=128"`
}

// ListingQueryDTO 商品列表查询条件
type ListingQueryDTO struct {
	Keyword     string   `form:"keyword"`
	Category    string   `form:"category"`
	SubCategory string   `form:"sub_category"`
	Tag         string   `form:"tag"`
	Condition   string   `form:"condition"`
	PricingType string   `form:"pricing_type"`
	PriceMin    *float64 `form:"price_min"`
	PriceMax    *float64 `form:"price_max"`
	SellerID    uint64   `form:"seller_id"`
	Status      string   `form:"status"`
	Sort        string   `form:"sort"`
	Page        int      `form:"page"`
	Size        int      `form:"size"`
}

// ListingDTO 商品明细响应
type ListingDTO struct {
	ID               uint64         `json:"id"`
	SellerID         uint64         `json:"seller_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	SubCategory      string         `json:"sub_category"`
	Price            float64        `json:"price"`
	PricingType      string         `json:"pricing_type"`
	Condition        string         `json:"condition"`
	SellerUniversity string         `json:"seller_university"`
	Visibility       string         `json:"visibility"`
	Status           string         `json:"status"`
	ApprovalStatus   string         `json:"approval_status"`
	RejectionReason  string         `json:"rejection_reason,omitempty"`
	Views            uint64         `json:"views"`
	Images           []string       `json:"images"`
	Tags             []string       `json:"tags"`
	Locations        []*LocationDTO `json:"locations"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ListingStatsDTO 过滤结果集的聚合指标
type ListingStatsDTO struct {
	Total                int64   `json:"total"`
	AvgPrice             float64 `json:"avg_price"`
	MinPrice             float64 `json:"min_price"`
	MaxPrice             float64 `json:"max_price"`
	DistinctCategories   int64   `json:"distinct_categories"`
	DistinctUniversities int64   `json:"distinct_universities"`
}

// CategoryCountDTO 类目分布项
type CategoryCountDTO struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// SearchQueryDTO 关键词搜索
type SearchQueryDTO struct {
	Keyword string `form:"keyword" binding:"required"`
	Page    int    `form:"page"`
	Size    int    `form:"size"`
}

// PriceSuggestDTO 价格建议请求
type PriceSuggestDTO struct {
	Title       string `json:"title" binding:"required" validate:"min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Condition   string `json:"condition" validate:"max=32"`
}
