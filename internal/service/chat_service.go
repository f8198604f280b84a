package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/hub"
	"UniMarket/internal/pkg/mongo"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
)

const imagePreview = "[图片]"

// ChatService 即时通讯服务接口定义
type ChatService interface {
	StartConversation(ctx context.Context, userID uint64, req *dto.StartConversationDTO) (*dto.ConversationDTO, error)
	GetConversationList(ctx context.Context, userID uint64) ([]*dto.ConversationDTO, error)
	SendMessage(ctx context.Context, senderID uint64, convID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error)
	GetChatHistory(ctx context.Context, userID uint64, convID uint64, page, size int) ([]*dto.MessageDTO, error)
	MarkAsRead(ctx context.Context, userID uint64, convID uint64, sessionID string) (int64, error)
	GetConversation(ctx context.Context, userID uint64, convID uint64) (*dto.ConversationDTO, error)
}

type chatServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo mongo.MessageRepo
	userRepo    repository.UserRepo
	listingRepo repository.ListingRepo
	bus         *hub.Hub
}

func NewChatService(
	convRepo repository.ConversationRepo,
	messageRepo mongo.MessageRepo,
	userRepo repository.UserRepo,
	listingRepo repository.ListingRepo,
	bus *hub.Hub,
) ChatService {
	return &chatServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		bus:         bus,
	}
}

// StartConversation 发起或复用会话
// 同一对用户针对同一商品只会存在一个会话。
func (s *chatServiceImpl) StartConversation(ctx context.Context, userID uint64, req *dto.StartConversationDTO) (*dto.ConversationDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	if req.TargetUserID == userID {
		return nil, ErrSelfConversation
	}

	target, err := s.userRepo.GetUserById(ctx, req.TargetUserID)
	if err != nil {
		log.ErrorContext(ctx, "get target user error", "target", req.TargetUserID, "err", err)
		return nil, UnExpectedError
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if req.ListingID != 0 {
		listing, err := s.listingRepo.GetListing(ctx, req.ListingID)
		if err != nil {
			log.ErrorContext(ctx, "get listing error", "id", req.ListingID, "err", err)
			return nil, UnExpectedError
		}
		if listing == nil {
			return nil, ErrListingNotFound
		}
	}

	conv, created, err := s.convRepo.FindOrCreateConversation(ctx, userID, req.TargetUserID, req.ListingID)
	if err != nil {
		log.ErrorContext(ctx, "find or create conversation error", "err", err)
		return nil, UnExpectedError
	}
	if created {
		// 连接建立时只订阅已有会话，新会话在此处把双方在线连接挂进房间。
		// 仅创建时挂一次，之后的 leave 由客户端自己决定，发消息不再强拉。
		s.bus.JoinUser(conv.UserAID, conv.ID)
		s.bus.JoinUser(conv.UserBID, conv.ID)

		log.InfoContext(ctx, "conversation created",
			"conversation_id", conv.ID,
			"listing_id", conv.ListingID)
	}

	return &dto.ConversationDTO{
		ConversationID: conv.ID,
		PeerID:         conv.PeerOf(userID),
		ListingID:      conv.ListingID,
		LastMessage:    conv.LastMessage,
		LastMessageAt:  conv.LastMessageAt,
	}, nil
}

// GetConversationList 用户会话列表，附带各会话未读数
func (s *chatServiceImpl) GetConversationList(ctx context.Context, userID uint64) ([]*dto.ConversationDTO, error) {
	convs, err := s.convRepo.GetUserConversations(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get user conversations error", "userID", userID, "err", err)
		return nil, UnExpectedError
	}

	list := make([]*dto.ConversationDTO, 0, len(convs))
	for _, conv := range convs {
		unread, err := s.messageRepo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			log.WarnContext(ctx, "count unread error", "conversation_id", conv.ID, "err", err)
		}
		list = append(list, &dto.ConversationDTO{
			ConversationID: conv.ID,
			PeerID:         conv.PeerOf(userID),
			ListingID:      conv.ListingID,
			LastMessage:    conv.LastMessage,
			LastMessageAt:  conv.LastMessageAt,
			UnreadCount:    unread,
		})
	}
	return list, nil
}

// SendMessage 发送消息
// 消息明细写入 Mongo，会话预览回写 MySQL，最后广播给房间内其他连接。
// req.SessionID 标识发送方自己的连接，广播时排除，避免自回显。
func (s *chatServiceImpl) SendMessage(ctx context.Context, senderID uint64, convID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}
	if req.Content == "" && len(req.Images) == 0 {
		return nil, ErrMessageEmpty
	}

	conv, err := s.loadParticipantConversation(ctx, senderID, convID)
	if err != nil {
		return nil, err
	}

	msg := &mongo.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        req.Content,
		Images:         req.Images,
		Read:           false,
		CreatedAt:      time.Now(),
	}
	if err = s.messageRepo.SaveMessage(ctx, msg); err != nil {
		log.ErrorContext(ctx, "save message error", "conversation_id", conv.ID, "err", err)
		return nil, UnExpectedError
	}

	preview := req.Content
	if preview == "" {
		preview = imagePreview
	}
	if err = s.convRepo.TouchLastMessage(ctx, conv.ID, preview, msg.CreatedAt); err != nil {
		// 预览是冗余字段，刷新失败不影响消息本身
		log.WarnContext(ctx, "touch last message error", "conversation_id", conv.ID, "err", err)
	}

	msgDTO := toMessageDTO(msg)
	s.broadcast(ctx, conv.ID, req.SessionID, &dto.WsEnvelopeDTO{
		Type:           "message",
		ConversationID: conv.ID,
		Payload:        msgDTO,
	})

	return msgDTO, nil
}

// GetChatHistory 历史消息，按时间正序返回
func (s *chatServiceImpl) GetChatHistory(ctx context.Context, userID uint64, convID uint64, page, size int) ([]*dto.MessageDTO, error) {
	if _, err := s.loadParticipantConversation(ctx, userID, convID); err != nil {
		return nil, err
	}

	page, size = normalizePage(page, size)
	messages, err := s.messageRepo.ListPage(ctx, convID, page, size)
	if err != nil {
		log.ErrorContext(ctx, "list messages error", "conversation_id", convID, "err", err)
		return nil, UnExpectedError
	}

	// 仓储层新消息在前，翻转成时间正序
	list := make([]*dto.MessageDTO, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		list = append(list, toMessageDTO(messages[i]))
	}
	return list, nil
}

// MarkAsRead 将对方发来的未读消息全部置为已读，幂等
func (s *chatServiceImpl) MarkAsRead(ctx context.Context, userID uint64, convID uint64, sessionID string) (int64, error) {
	conv, err := s.loadParticipantConversation(ctx, userID, convID)
	if err != nil {
		return 0, err
	}

	modified, err := s.messageRepo.MarkRead(ctx, conv.ID, userID)
	if err != nil {
		log.ErrorContext(ctx, "mark read error", "conversation_id", convID, "err", err)
		return 0, UnExpectedError
	}

	if modified > 0 {
		s.broadcast(ctx, conv.ID, sessionID, &dto.WsEnvelopeDTO{
			Type:           "read_receipt",
			ConversationID: conv.ID,
			Payload: &dto.ReadReceiptDTO{
				ConversationID: conv.ID,
				ReaderID:       userID,
				ReadCount:      modified,
			},
		})
	}
	return modified, nil
}

func (s *chatServiceImpl) GetConversation(ctx context.Context, userID uint64, convID uint64) (*dto.ConversationDTO, error) {
	conv, err := s.loadParticipantConversation(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messageRepo.CountUnread(ctx, conv.ID, userID)
	if err != nil {
		log.WarnContext(ctx, "count unread error", "conversation_id", conv.ID, "err", err)
	}
	return &dto.ConversationDTO{
		ConversationID: conv.ID,
		PeerID:         conv.PeerOf(userID),
		ListingID:      conv.ListingID,
		LastMessage:    conv.LastMessage,
		LastMessageAt:  conv.LastMessageAt,
		UnreadCount:    unread,
	}, nil
}

func (s *chatServiceImpl) loadParticipantConversation(ctx context.Context, userID uint64, convID uint64) (*model.Conversation, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		log.ErrorContext(ctx, "get conversation error", "conversation_id", convID, "err", err)
		return nil, UnExpectedError
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *chatServiceImpl) broadcast(ctx context.Context, convID uint64, excludeSessionID string, envelope *dto.WsEnvelopeDTO) {
	data, err := json.Marshal(envelope)
	if err != nil {
		log.ErrorContext(ctx, "marshal ws envelope error", "err", err)
		return
	}
	s.bus.Publish(convID, excludeSessionID, data)
}

func toMessageDTO(msg *mongo.Message) *dto.MessageDTO {
	images := msg.Images
	if images == nil {
		images = make([]string, 0)
	}
	return &dto.MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		Images:         images,
		Read:           msg.Read,
		CreatedAt:      msg.CreatedAt,
	}
}
