package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/hub"
	"UniMarket/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationRepo struct {
	convs  map[uint64]*model.Conversation
	nextID uint64
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[uint64]*model.Conversation), nextID: 1}
}

func (f *fakeConversationRepo) FindOrCreateConversation(_ context.Context, userA, userB, listingID uint64) (*model.Conversation, bool, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	for _, c := range f.convs {
		if c.UserAID == userA && c.UserBID == userB && c.ListingID == listingID {
			return c, false, nil
		}
	}
	conv := &model.Conversation{
		ID:        f.nextID,
		UserAID:   userA,
		UserBID:   userB,
		ListingID: listingID,
	}
	f.nextID++
	f.convs[conv.ID] = conv
	return conv, true, nil
}

func (f *fakeConversationRepo) GetConversation(_ context.Context, convID uint64) (*model.Conversation, error) {
	return f.convs[convID], nil
}

func (f *fakeConversationRepo) GetUserConversations(_ context.Context, userID uint64) ([]*model.Conversation, error) {
	var result []*model.Conversation
	for _, c := range f.convs {
		if c.HasParticipant(userID) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeConversationRepo) TouchLastMessage(_ context.Context, convID uint64, preview string, at time.Time) error {
	if c, ok := f.convs[convID]; ok {
		c.LastMessage = preview
		c.LastMessageAt = at
	}
	return nil
}

type fakeMessageRepo struct {
	messages []*mongo.Message
	marked   int64
}

func (f *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	msg.ID = "msg-" + time.Now().Format("150405.000000")
	f.messages = append(f.messages, msg)
	return nil
}

// ListPage 与 Mongo 实现保持同一契约：新消息在前
func (f *fakeMessageRepo) ListPage(_ context.Context, convID uint64, page, pageSize int) ([]*mongo.Message, error) {
	var all []*mongo.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ConversationID == convID {
			all = append(all, f.messages[i])
		}
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, convID uint64, readerID uint64) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.ConversationID == convID && m.SenderID != readerID && !m.Read {
			m.Read = true
			count++
		}
	}
	f.marked = count
	return count, nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, convID uint64, userID uint64) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.ConversationID == convID && m.SenderID != userID && !m.Read {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[uint64]*model.User
}

func (f *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByIds(_ context.Context, ids []uint64) ([]*model.User, error) {
	var result []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User, _ []*model.UserRole) error {
	user.ID = uint64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, _ *model.User) error { return nil }

type chatFixture struct {
	svc      ChatService
	convRepo *fakeConversationRepo
	msgRepo  *fakeMessageRepo
	bus      *hub.Hub
}

func newChatFixture() *chatFixture {
	convRepo := newFakeConversationRepo()
	msgRepo := &fakeMessageRepo{}
	userRepo := &fakeUserRepo{users: map[uint64]*model.User{
		1: {ID: 1, Username: "alice1"},
		2: {ID: 2, Username: "bob123"},
	}}
	listingRepo := newFakeListingRepo()
	listingRepo.listings[10] = &model.Listing{ID: 10, SellerID: 2}
	bus := hub.NewHub()

	return &chatFixture{
		svc:      NewChatService(convRepo, msgRepo, userRepo, listingRepo, bus),
		convRepo: convRepo,
		msgRepo:  msgRepo,
		bus:      bus,
	}
}

func TestStartConversationRejectsSelf(t *testing.T) {
	fx := newChatFixture()
	_, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 1})
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestStartConversationTargetMissing(t *testing.T) {
	fx := newChatFixture()
	_, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 999})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStartConversationDeduplicates(t *testing.T) {
	fx := newChatFixture()

	first, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2, ListingID: 10})
	require.NoError(t, err)

	// 对端发起同一商品的会话，应复用同一条记录
	second, err := fx.svc.StartConversation(context.Background(), 2, &dto.StartConversationDTO{TargetUserID: 1, ListingID: 10})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, uint64(2), first.PeerID)
	assert.Equal(t, uint64(1), second.PeerID)
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{})
	assert.ErrorIs(t, err, ErrMessageEmpty)

	// 纯图片消息是合法的
	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{Images: []string{"http://img/1.jpg"}})
	assert.NoError(t, err)
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(context.Background(), 99, conv.ConversationID, &dto.SendMessageDTO{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessageBroadcastExcludesSenderSession(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	senderSession := fx.bus.Register("s-sender", 1)
	peerSession := fx.bus.Register("s-peer", 2)
	fx.bus.Join("s-sender", conv.ConversationID)
	fx.bus.Join("s-peer", conv.ConversationID)

	sent, err := fx.svc.SendMessage(context.Background(), 1, conv.ConversationID,
		&dto.SendMessageDTO{Content: "你好", SessionID: "s-sender"})
	require.NoError(t, err)

	select {
	case data := <-peerSession.Send:
		var envelope dto.WsEnvelopeDTO
		require.NoError(t, json.Unmarshal(data, &envelope))
		assert.Equal(t, "message", envelope.Type)
		assert.Equal(t, conv.ConversationID, envelope.ConversationID)
	default:
		t.Fatal("peer session should receive the broadcast")
	}

	select {
	case <-senderSession.Send:
		t.Fatal("sender session must not receive its own message")
	default:
	}

	assert.Equal(t, "你好", sent.Content)
	assert.NotEmpty(t, sent.ID)
}

func TestConversationCreatedAfterConnectStillDelivers(t *testing.T) {
	fx := newChatFixture()

	// 双方先建立 WS 连接，会话随后才创建
	fx.bus.Register("s-sender", 1)
	peerSession := fx.bus.Register("s-peer", 2)

	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID,
		&dto.SendMessageDTO{Content: "在吗", SessionID: "s-sender"})
	require.NoError(t, err)

	select {
	case data := <-peerSession.Send:
		var envelope dto.WsEnvelopeDTO
		require.NoError(t, json.Unmarshal(data, &envelope))
		assert.Equal(t, "message", envelope.Type)
	default:
		t.Fatal("peer session should be attached to the room at conversation creation")
	}
}

func TestLeaveStopsRealtimeDeliveryOnNextSend(t *testing.T) {
	fx := newChatFixture()

	fx.bus.Register("s-sender", 1)
	peerSession := fx.bus.Register("s-peer", 2)

	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	// 对端主动退订房间后，后续消息不再实时投递
	fx.bus.Leave("s-peer", conv.ConversationID)

	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID,
		&dto.SendMessageDTO{Content: "还在吗", SessionID: "s-sender"})
	require.NoError(t, err)

	select {
	case <-peerSession.Send:
		t.Fatal("session that left the room must not receive the broadcast")
	default:
	}

	// 消息本身不受影响，仍然落库可拉取
	history, err := fx.svc.GetChatHistory(context.Background(), 2, conv.ConversationID, 1, 20)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestChatHistoryChronologicalOrder(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	for _, content := range []string{"第一条", "第二条", "第三条"} {
		_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{Content: content})
		require.NoError(t, err)
	}

	history, err := fx.svc.GetChatHistory(context.Background(), 2, conv.ConversationID, 1, 20)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "第一条", history[0].Content)
	assert.Equal(t, "第三条", history[2].Content)
}

func TestMarkAsReadIdempotent(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{Content: "msg"})
	require.NoError(t, err)

	modified, err := fx.svc.MarkAsRead(context.Background(), 2, conv.ConversationID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	// 第二次没有可标记的消息
	modified, err = fx.svc.MarkAsRead(context.Background(), 2, conv.ConversationID, "")
	require.NoError(t, err)
	assert.Zero(t, modified)
}

func TestConversationListUnreadCount(t *testing.T) {
	fx := newChatFixture()
	conv, err := fx.svc.StartConversation(context.Background(), 1, &dto.StartConversationDTO{TargetUserID: 2})
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{Content: "a"})
	require.NoError(t, err)
	_, err = fx.svc.SendMessage(context.Background(), 1, conv.ConversationID, &dto.SendMessageDTO{Content: "b"})
	require.NoError(t, err)

	list, err := fx.svc.GetConversationList(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].UnreadCount)
	assert.Equal(t, uint64(1), list[0].PeerID)
	assert.Equal(t, "b", list[0].LastMessage)
}
