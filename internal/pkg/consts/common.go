package consts

const (
	MimePrefixImage = "image"
)

// 商品类目
const (
	CategoryItem    = "item"
	CategoryService = "service"
)

// 定价方式
const (
	PricingFixed   = "fixed"
	PricingBidding = "bidding"
	PricingHourly  = "hourly"
)

// 商品生命周期状态
const (
	ListingStatusActive  = "active"
	ListingStatusSold    = "sold"
	ListingStatusExpired = "expired"
	ListingStatusRemoved = "removed"
)

// 审核状态
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// 可见范围
const (
	VisibilityUniversity = "university"
	VisibilityAll        = "all"
)
