package hub

import (
	log "log/slog"
	"sync"
)

// 单个会话的发送缓冲大小，写满即判定客户端消费过慢
const sessionSendBuffer = 64

// Session 一条 WS 连接在总线上的注册信息
type Session struct {
	ID     string
	UserID uint64
	Send   chan []byte

	closeOnce sync.Once
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.Send)
	})
}

// Hub 进程内消息总线
// 维护 会话ID -> Session 与 会话房间 的双向索引，所有操作都在锁内完成。
type Hub struct {
	mu sync.RWMutex

	// sessions 全量在线连接
	sessions map[string]*Session

	// rooms conversationID -> 订阅该会话的连接
	rooms map[uint64]map[string]*Session

	// sessionRooms sessionID -> 已加入的会话，断连时反向清理
	sessionRooms map[string]map[uint64]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Session),
		rooms:        make(map[uint64]map[string]*Session),
		sessionRooms: make(map[string]map[uint64]struct{}),
	}
}

// Register 注册一条新连接
func (h *Hub) Register(sessionID string, userID uint64) *Session {
	session := &Session{
		ID:     sessionID,
		UserID: userID,
		Send:   make(chan []byte, sessionSendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.sessions[sessionID]; ok {
		// 旧连接必须先退出所有房间，否则广播会写已关闭的通道
		for conversationID := range h.sessionRooms[sessionID] {
			h.removeFromRoom(sessionID, conversationID)
		}
		old.close()
	}
	h.sessions[sessionID] = session
	h.sessionRooms[sessionID] = make(map[uint64]struct{})

	return session
}

// Join 将连接加入某个会话房间
func (h *Hub) Join(sessionID string, conversationID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}

	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[string]*Session)
		h.rooms[conversationID] = room
	}
	room[sessionID] = session
	h.sessionRooms[sessionID][conversationID] = struct{}{}
}

// JoinUser 把某用户当前在线的所有连接加入会话房间
// 用于会话创建晚于连接建立的场景，只在会话创建时调用一次，
// 不覆盖连接此后主动 Leave 的选择。
func (h *Hub) JoinUser(userID uint64, conversationID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, session := range h.sessions {
		if session.UserID != userID {
			continue
		}
		room, ok := h.rooms[conversationID]
		if !ok {
			room = make(map[string]*Session)
			h.rooms[conversationID] = room
		}
		room[id] = session
		h.sessionRooms[id][conversationID] = struct{}{}
	}
}

// Leave 将连接移出某个会话房间
func (h *Hub) Leave(sessionID string, conversationID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(sessionID, conversationID)
	if rooms, ok := h.sessionRooms[sessionID]; ok {
		delete(rooms, conversationID)
	}
}

// Publish 向会话房间广播一条消息
// excludeSessionID 为发消息方自己的连接，为空则推送给房间内所有连接。
// 慢消费者直接丢弃本条消息，不阻塞广播。
func (h *Hub) Publish(conversationID uint64, excludeSessionID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[conversationID]
	if !ok {
		return 0
	}

	delivered := 0
	for id, session := range room {
		if id == excludeSessionID {
			continue
		}
		select {
		case session.Send <- data:
			delivered++
		default:
			log.Warn("session send buffer full, drop message",
				"sessionID", id, "conversationID", conversationID)
		}
	}
	return delivered
}

// Disconnect 注销连接并清理其加入的所有房间
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}

	for conversationID := range h.sessionRooms[sessionID] {
		h.removeFromRoom(sessionID, conversationID)
	}
	delete(h.sessionRooms, sessionID)
	delete(h.sessions, sessionID)
	session.close()
}

// OnlineCount 会话房间内的在线连接数
func (h *Hub) OnlineCount(conversationID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// removeFromRoom 调用方必须持有写锁
func (h *Hub) removeFromRoom(sessionID string, conversationID uint64) {
	room, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}
