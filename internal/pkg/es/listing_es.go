package es

import "time"

// ListingES 写入 ES 的商品文档
type ListingES struct {
	ID               uint64    `json:"id"`
	SellerID         uint64    `json:"seller_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	SubCategory      string    `json:"sub_category"`
	Price            float64   `json:"price"`
	PricingType      string    `json:"pricing_type"`
	Condition        string    `json:"condition"`
	SellerUniversity string    `json:"seller_university"`
	Visibility       string    `json:"visibility"`
	Status           string    `json:"status"`
	ApprovalStatus   string    `json:"approval_status"`
	Tags             []string  `json:"tags"`
	Images           []string  `json:"images"`
	Views            uint64    `json:"views"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
