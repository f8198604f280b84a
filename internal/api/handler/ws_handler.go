package handler

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/pkg/hub"
	"UniMarket/internal/pkg/response"
	"UniMarket/internal/pkg/security"
	"UniMarket/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	chatSvc service.ChatService
	bus     *hub.Hub
}

func NewWsHandler(chatSvc service.ChatService, bus *hub.Hub) *WsHandler {
	return &WsHandler{chatSvc: chatSvc, bus: bus}
}

func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// 注册连接并加入用户参与的所有会话房间
	sessionID := uuid.NewString()
	session := s.bus.Register(sessionID, userID)
	defer s.bus.Disconnect(sessionID)

	list, err := s.chatSvc.GetConversationList(context.Background(), userID)
	if err != nil {
		log.Error("获取会话列表失败", "userID", userID, "err", err)
		return
	}
	for _, conv := range list {
		s.bus.Join(sessionID, conv.ConversationID)
	}

	// 首帧下发连接标识，客户端发消息时带上它以避免自回显
	hello, _ := json.Marshal(&dto.WsEnvelopeDTO{
		Type:    "session",
		Payload: gin.H{"session_id": sessionID},
	})
	if err = conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		log.Error("WS 下发连接标识失败", "userID", userID, "err", err)
		return
	}

	log.Info("用户 WS 连接已建立", "userID", userID, "sessionID", sessionID, "rooms", len(list))

	stopChan := make(chan struct{})

	// 读循环：处理订阅指令，连接出错即退出
	go func() {
		defer close(stopChan)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.handleCommand(userID, sessionID, data)
		}
	}()

	// 写循环：监听总线并推送至客户端
	for {
		select {
		case data, ok := <-session.Send:
			if !ok {
				// 同一连接被重复注册时旧通道会被关闭
				log.Info("用户 WS 会话被替换", "userID", userID, "sessionID", sessionID)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("WS 推送失败", "userID", userID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "userID", userID, "sessionID", sessionID)
			return
		}
	}
}

// handleCommand 处理客户端上行的 join/leave 指令
// join 前先校验该用户确实是会话成员，防止订阅他人会话。
func (s *WsHandler) handleCommand(userID uint64, sessionID string, data []byte) {
	var cmd dto.WsCommandDTO
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Warn("WS 指令解析失败", "sessionID", sessionID, "err", err)
		return
	}

	switch cmd.Type {
	case "join":
		if _, err := s.chatSvc.GetConversation(context.Background(), userID, cmd.ConversationID); err != nil {
			log.Warn("WS join 校验失败", "userID", userID, "conversationID", cmd.ConversationID, "err", err)
			return
		}
		s.bus.Join(sessionID, cmd.ConversationID)
	case "leave":
		s.bus.Leave(sessionID, cmd.ConversationID)
	default:
		log.Warn("WS 未知指令", "sessionID", sessionID, "type", cmd.Type)
	}
}
