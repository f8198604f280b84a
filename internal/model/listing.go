package model

import (
	"time"
)

type Listing struct {
	ID               uint64     `gorm:"primaryKey"`
	SellerID         uint64     `gorm:"not null;index:idx_seller_id" json:"seller_id"`
	Title            string     `gorm:"type:varchar(255);not null" json:"title"`
	Description      string     `gorm:"not null" json:"description"`
	Category         string     `gorm:"type:varchar(16);not null;index:idx_category" json:"category"` // item / service
	SubCategory      string     `gorm:"type:varchar(64);index" json:"sub_category"`
	Price            float64    `gorm:"not null;default:0" json:"price"`
	PricingType      string     `gorm:"type:varchar(16);not null;default:'fixed'" json:"pricing_type"` // fixed / bidding / hourly
	Condition        string     `gorm:"type:varchar(32)" json:"condition"`                             // 仅实物商品有效
	SellerUniversity string     `gorm:"type:varchar(128);index" json:"seller_university"`
	Visibility       string     `gorm:"type:varchar(16);not null;default:'university'" json:"visibility"` // university / all
	Status           string     `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`   // active / sold / expired / removed
	ApprovalStatus   string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"approval_status"`
	RejectionReason  string     `gorm:"type:varchar(255)" json:"rejection_reason"` // 仅 rejected 时非空
	ApprovedBy       uint64     `gorm:"not null;default:0" json:"approved_by"`
	ApprovedAt       *time.Time `json:"approved_at"`
	Views            uint64     `gorm:"not null;default:0" json:"views"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 关联关系
	Images    []ListingImage    `gorm:"foreignKey:ListingID;references:ID"`
	Tags      []ListingTag      `gorm:"foreignKey:ListingID;references:ID"`
	Locations []ListingLocation `gorm:"foreignKey:ListingID;references:ID"`
}

func (Listing) TableName() string {
	return "listings"
}

// ListingImage 商品图片，Position 维持展示顺序
type ListingImage struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	ListingID uint64 `gorm:"not null;index:idx_listing_id" json:"listing_id"`
	URL       string `gorm:"type:varchar(512);not null" json:"url"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}

type ListingTag struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	ListingID uint64 `gorm:"not null;index:idx_listing_tag" json:"listing_id"`
	Name      string `gorm:"type:varchar(64);not null;index:idx_tag_name" json:"name"`
}

func (ListingTag) TableName() string {
	return "listing_tags"
}

// ListingLocation 交易地点，创建时至少一个合法坐标
type ListingLocation struct {
	ID        uint64  `gorm:"primaryKey" json:"id"`
	ListingID uint64  `gorm:"not null;index:idx_listing_loc" json:"listing_id"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Label     string  `gorm:"type:varchar(128)" json:"label"`
}

func (ListingLocation) TableName() string {
	return "listing_locations"
}
