package model

import "time"

// Conversation 会话主表
// PeerKey 为 "小uid_大uid"，与 ListingID 组成唯一索引，
// 保证同一对用户针对同一商品只存在一个会话。
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PeerKey       string    `gorm:"uniqueIndex:idx_peer_listing;type:varchar(64);not null" json:"peerKey"`
	ListingID     uint64    `gorm:"uniqueIndex:idx_peer_listing;not null;default:0" json:"listingId"`
	UserAID       uint64    `gorm:"not null;index:idx_user_a" json:"userAId"` // 较小的参与者 ID
	UserBID       uint64    `gorm:"not null;index:idx_user_b" json:"userBId"` // 较大的参与者 ID
	LastMessage   string    `gorm:"type:varchar(255)" json:"lastMessage"` // 冗余预览字段，非权威数据
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// HasParticipant 判断用户是否为会话参与者
func (c *Conversation) HasParticipant(userID uint64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// PeerOf 返回对端用户 ID，userID 不是参与者时返回 0
func (c *Conversation) PeerOf(userID uint64) uint64 {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	default:
		return 0
	}
}
