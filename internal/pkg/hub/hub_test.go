package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishExcludesSender(t *testing.T) {
	h := NewHub()

	sender := h.Register("s-sender", 1)
	peer := h.Register("s-peer", 2)
	h.Join("s-sender", 100)
	h.Join("s-peer", 100)

	delivered := h.Publish(100, "s-sender", []byte("hello"))
	assert.Equal(t, 1, delivered)

	select {
	case data := <-peer.Send:
		assert.Equal(t, "hello", string(data))
	default:
		t.Fatal("peer should have received the message")
	}

	select {
	case <-sender.Send:
		t.Fatal("sender session must not receive its own message")
	default:
	}
}

func TestPublishReachesOtherSessionsOfSameUser(t *testing.T) {
	h := NewHub()

	// 同一用户的两端设备
	h.Register("s-phone", 1)
	tablet := h.Register("s-tablet", 1)
	h.Join("s-phone", 100)
	h.Join("s-tablet", 100)

	delivered := h.Publish(100, "s-phone", []byte("msg"))
	assert.Equal(t, 1, delivered)

	select {
	case data := <-tablet.Send:
		assert.Equal(t, "msg", string(data))
	default:
		t.Fatal("tablet session of the same user should receive the message")
	}
}

func TestPublishToEmptyRoom(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Publish(42, "", []byte("x")))
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := NewHub()
	peer := h.Register("s1", 1)
	h.Join("s1", 100)
	h.Leave("s1", 100)

	assert.Equal(t, 0, h.Publish(100, "", []byte("x")))
	select {
	case <-peer.Send:
		t.Fatal("session left the room, should not receive")
	default:
	}
}

func TestDisconnectCleansRooms(t *testing.T) {
	h := NewHub()
	h.Register("s1", 1)
	h.Join("s1", 100)
	h.Join("s1", 200)
	require.Equal(t, 1, h.OnlineCount(100))

	h.Disconnect("s1")

	assert.Equal(t, 0, h.OnlineCount(100))
	assert.Equal(t, 0, h.OnlineCount(200))
	assert.Equal(t, 0, h.Publish(100, "", []byte("x")))

	// 重复断连不应 panic
	h.Disconnect("s1")
}

func TestSlowConsumerDropsMessage(t *testing.T) {
	h := NewHub()
	peer := h.Register("s1", 1)
	h.Join("s1", 100)

	for i := 0; i < sessionSendBuffer; i++ {
		require.Equal(t, 1, h.Publish(100, "", []byte("fill")))
	}

	// 缓冲已满，消息被丢弃而不是阻塞
	assert.Equal(t, 0, h.Publish(100, "", []byte("overflow")))
	assert.Len(t, peer.Send, sessionSendBuffer)
}

func TestJoinUserAttachesAllSessions(t *testing.T) {
	h := NewHub()
	phone := h.Register("s-phone", 1)
	tablet := h.Register("s-tablet", 1)
	h.Register("s-other", 2)

	h.JoinUser(1, 100)

	assert.Equal(t, 2, h.Publish(100, "", []byte("x")))
	assert.Len(t, phone.Send, 1)
	assert.Len(t, tablet.Send, 1)
}

func TestRegisterReplacesOldSession(t *testing.T) {
	h := NewHub()
	old := h.Register("s1", 1)
	h.Register("s1", 1)

	_, ok := <-old.Send
	assert.False(t, ok, "old session channel should be closed")
}

func TestRegisterEvictsOldSessionFromRooms(t *testing.T) {
	h := NewHub()
	h.Register("s1", 1)
	h.Join("s1", 100)

	// 同一 sessionID 重新注册，旧连接残留在房间里会导致广播写已关闭通道
	replacement := h.Register("s1", 1)

	assert.Equal(t, 0, h.Publish(100, "", []byte("x")))
	assert.Empty(t, replacement.Send)

	// 新连接重新入房后恢复投递
	h.Join("s1", 100)
	assert.Equal(t, 1, h.Publish(100, "", []byte("y")))
}
