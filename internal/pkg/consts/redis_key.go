package consts

const (
	ListingViewKey      = "listing:view:"
	ListingViewDirtyKey = "listing:view:dirty"
	TokenBlacklistKey   = "token:blacklist:"
)
