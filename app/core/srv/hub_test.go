package srv

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/INDUS0007/soul/pkg/types/protocol"
)

type fakeWS struct {
	mu      sync.Mutex
	frames  [][]byte
	block   chan struct{}
	closed  bool
	writing int32
	overlap bool
}

func (f *fakeWS) WriteMessage(messageType int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&f.writing, 0, 1) {
		f.mu.Lock()
		f.overlap = true
		f.mu.Unlock()
	}
	defer atomic.StoreInt32(&f.writing, 0)

	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeWS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeWS) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeWS) hadOverlap() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlap
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second * 2)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
	t.Fatal("condition not met in time")
}

func TestHubDeliversOncePerJoin(t *testing.T) {
	hub := NewHub(HubConfig{})

	ws1 := &fakeWS{}
	ws2 := &fakeWS{}
	c1 := hub.NewConn("user-1", ws1)
	c2 := hub.NewConn("user-2", ws2)

	hub.Join("chat-1", c1)
	hub.Join("chat-1", c2)
	hub.Join("chat-1", c2) // 同一连接二次加入，应收到两份

	err := hub.Broadcast("chat-1", protocol.MessageEvent{
		Type:    protocol.EVENT_MESSAGE,
		Message: "hello",
	})
	assert.NoError(t, err)

	waitFor(t, func() bool { return ws1.count() == 1 && ws2.count() == 2 })

	hub.Leave("chat-1", c2)

	err = hub.Broadcast("chat-1", protocol.MessageEvent{
		Type:    protocol.EVENT_MESSAGE,
		Message: "again",
	})
	assert.NoError(t, err)

	waitFor(t, func() bool { return ws1.count() == 2 && ws2.count() == 3 })
}

func TestHubBroadcastUnknownChat(t *testing.T) {
	hub := NewHub(HubConfig{})
	assert.NoError(t, hub.Broadcast("nobody-here", protocol.MessageEvent{Type: protocol.EVENT_MESSAGE}))
}

func TestHubSlowConsumerDropped(t *testing.T) {
	hub := NewHub(HubConfig{SendQueueSize: 1, SendTimeout: time.Millisecond * 50})

	blocked := &fakeWS{block: make(chan struct{})}
	slow := hub.NewConn("slow", blocked)
	hub.Join("chat-1", slow)

	// 第一条卡在写循环里，第二条填满队列，第三条触发超时断开
	for i := 0; i < 3; i++ {
		err := hub.Broadcast("chat-1", protocol.MessageEvent{Type: protocol.EVENT_MESSAGE, Message: "x"})
		assert.NoError(t, err)
	}

	waitFor(t, blocked.isClosed)
	close(blocked.block)
}

func TestNewConnReturnsWithoutWaiting(t *testing.T) {
	hub := NewHub(HubConfig{})

	done := make(chan struct{})
	go func() {
		c := hub.NewConn("user-1", &fakeWS{})
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NewConn must return immediately, the write loop runs on its own goroutine")
	}
}

func TestConnSendSharesBroadcastWriter(t *testing.T) {
	hub := NewHub(HubConfig{})

	ws := &fakeWS{}
	c := hub.NewConn("user-1", ws)
	hub.Join("chat-1", c)

	// 确认 ack 直发与话题广播走同一个写循环，底层连接不会出现并发写
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := "m1"
			assert.NoError(t, c.Send(protocol.NewAckFrame(protocol.ACK_STATUS_SENT, "c1", &id)))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, hub.Broadcast("chat-1", protocol.MessageEvent{Type: protocol.EVENT_MESSAGE, Message: "x"}))
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return ws.count() == 40 })
	assert.False(t, ws.hadOverlap())
}

func TestJoinDuringLeaveKeepsMembership(t *testing.T) {
	hub := NewHub(HubConfig{})

	for i := 0; i < 200; i++ {
		a := hub.NewConn("user-a", &fakeWS{})
		hub.Join("chat-1", a)

		wsB := &fakeWS{}
		b := hub.NewConn("user-b", wsB)

		// 旧成员退出清空分组的同时有新成员加入，新成员不能落进孤儿分组
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Leave("chat-1", a)
		}()
		go func() {
			defer wg.Done()
			hub.Join("chat-1", b)
		}()
		wg.Wait()

		assert.NoError(t, hub.Broadcast("chat-1", protocol.MessageEvent{Type: protocol.EVENT_MESSAGE, Message: "x"}))
		waitFor(t, func() bool { return wsB.count() == 1 })

		hub.Leave("chat-1", b)
		a.Close()
		b.Close()
	}
}

func TestHubRoster(t *testing.T) {
	hub := NewHub(HubConfig{})

	ws := &fakeWS{}
	c := hub.NewConn("counsellor-1", ws)
	hub.JoinRoster(c)

	err := hub.BroadcastRoster(protocol.StatusEvent{
		Type:      protocol.EVENT_STATUS_UPDATE,
		SessionID: "chat-1",
		NewStatus: "active",
	})
	assert.NoError(t, err)
	waitFor(t, func() bool { return ws.count() == 1 })

	hub.LeaveRoster(c)
	assert.NoError(t, hub.BroadcastRoster(protocol.StatusEvent{Type: protocol.EVENT_STATUS_UPDATE}))
	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, 1, ws.count())
}
