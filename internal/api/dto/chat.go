package dto

import "time"

// StartConversationDTO 发起会话请求
type StartConversationDTO struct {
	TargetUserID uint64 `json:"target_user_id" binding:"required"`
	ListingID    uint64 `json:"listing_id"`
}

// SendMessageDTO 发送消息请求体
// SessionID 为发送方 WS 连接标识，广播时排除该连接避免自回显
type SendMessageDTO struct {
	Content   string   `json:"content" validate:"max=5000"`
	Images    []string `json:"images" validate:"max=9,dive,max=512"`
	SessionID string   `json:"session_id" validate:"max=64"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID             string    `json:"id"`
	ConversationID uint64    `json:"conversation_id"`
	SenderID       uint64    `json:"sender_id"`
	Content        string    `json:"content"`
	Images         []string  `json:"images"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationDTO 会话列表项响应
type ConversationDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	PeerID         uint64    `json:"peer_id"`
	ListingID      uint64    `json:"listing_id"`
	LastMessage    string    `json:"last_message"`
	LastMessageAt  time.Time `json:"last_message_at"`
	UnreadCount    int64     `json:"unread_count"`
}

// WsCommandDTO 客户端上行指令帧，订阅或退订某个会话房间
type WsCommandDTO struct {
	Type           string `json:"type"` // join / leave
	ConversationID uint64 `json:"conversation_id"`
}

// WsEnvelopeDTO WS 推送信封
type WsEnvelopeDTO struct {
	Type           string      `json:"type"` // message / read_receipt / session
	ConversationID uint64      `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
}

// ReadReceiptDTO 已读回执推送
type ReadReceiptDTO struct {
	ConversationID uint64 `json:"conversation_id"`
	ReaderID       uint64 `json:"reader_id"`
	ReadCount      int64  `json:"read_count"`
}
