package repository

import (
	"UniMarket/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL duplicate entry
const duplicateEntryCode = 1062

type ConversationRepo interface {
	FindOrCreateConversation(ctx context.Context, userA, userB, listingID uint64) (*model.Conversation, bool, error)
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	GetUserConversations(ctx context.Context, userID uint64) ([]*model.Conversation, error)
	TouchLastMessage(ctx context.Context, convID uint64, preview string, at time.Time) error
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// BuildPeerKey 生成规范化会话标识，小 ID 在前
func BuildPeerKey(userA, userB uint64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d_%d", userA, userB)
}

// FindOrCreateConversation 获取或创建会话
// 依赖 (peer_key, listing_id) 唯一索引兜底并发创建：
// 撞唯一键说明对端刚创建完，重新读取即可。
func (s *conversationRepoImpl) FindOrCreateConversation(ctx context.Context, userA, userB, listingID uint64) (*model.Conversation, bool, error) {
	peerKey := BuildPeerKey(userA, userB)

	conv, err := s.getByPeerKey(ctx, peerKey, listingID)
	if err != nil {
		return nil, false, err
	}
	if conv != nil {
		return conv, false, nil
	}

	if userA > userB {
		userA, userB = userB, userA
	}
	newConv := &model.Conversation{
		PeerKey:       peerKey,
		ListingID:     listingID,
		UserAID:       userA,
		UserBID:       userB,
		LastMessageAt: time.Now(),
	}

	err = s.db.WithContext(ctx).Create(newConv).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryCode {
			conv, err = s.getByPeerKey(ctx, peerKey, listingID)
			if err != nil {
				return nil, false, err
			}
			return conv, false, nil
		}
		return nil, false, err
	}
	return newConv, true, nil
}

func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, convID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations 用户参与的全部会话，按最近消息倒序
func (s *conversationRepoImpl) GetUserConversations(ctx context.Context, userID uint64) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	err := s.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	return convs, err
}

// TouchLastMessage 刷新会话预览，消息权威数据在 Mongo
func (s *conversationRepoImpl) TouchLastMessage(ctx context.Context, convID uint64, preview string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", convID).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": at,
		}).Error
}

func (s *conversationRepoImpl) getByPeerKey(ctx context.Context, peerKey string, listingID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Where("peer_key = ? AND listing_id = ?", peerKey, listingID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}
