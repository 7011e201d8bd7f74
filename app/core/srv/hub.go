package srv

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/INDUS0007/soul/pkg/safe"
	"github.com/INDUS0007/soul/pkg/types/protocol"
	"github.com/INDUS0007/soul/pkg/utils"
)

type HubConfig struct {
	SendQueueSize int           `toml:"send_queue_size"`
	SendTimeout   time.Duration `toml:"-"`
}

// Hub 负责会话话题与咨询师大厅的消息分发。
// 同一个连接 Join 几次就会收到几份消息，去重交给调用方。
type Hub struct {
	groups      cmap.ConcurrentMap[string, *group]
	roster      *group
	queueSize   int
	sendTimeout time.Duration
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = time.Second * 5
	}
	return &Hub{
		groups:      cmap.New[*group](),
		roster:      &group{},
		queueSize:   cfg.SendQueueSize,
		sendTimeout: cfg.SendTimeout,
	}
}

type group struct {
	mu      sync.Mutex
	members []*Conn
}

func (g *group) add(c *Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members = append(g.members, c)
}

// remove 只移除一个成员实例，重复加入的连接需要逐次退出。
func (g *group) remove(c *Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, m := range g.members {
		if m == c {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return
		}
	}
}

func (g *group) snapshot() []*Conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := make([]*Conn, len(g.members))
	copy(res, g.members)
	return res
}

func (g *group) empty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members) == 0
}

// wsConn 抽象 websocket 写端，方便测试替换。
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Conn struct {
	id          string
	userID      string
	ws          wsConn
	sendq       chan []byte
	sendTimeout time.Duration
	closed      chan struct{}
	once        sync.Once
}

func (h *Hub) NewConn(userID string, ws wsConn) *Conn {
	c := &Conn{
		id:          utils.GenRandomID(),
		userID:      userID,
		ws:          ws,
		sendq:       make(chan []byte, h.queueSize),
		sendTimeout: h.sendTimeout,
		closed:      make(chan struct{}),
	}
	go safe.Run(func() {
		c.writeLoop()
	})
	return c
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) UserID() string {
	return c.userID
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.sendq:
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// Send 序列化后经由连接自己的发送队列投递。写 websocket 的永远只有
// writeLoop 一个协程，调用方不得直接写底层连接。
func (c *Conn) Send(event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.send(raw, c.sendTimeout)
	return nil
}

// send 带超时投递，消费过慢的连接直接断开，避免拖垮广播。
func (c *Conn) send(raw []byte, timeout time.Duration) {
	select {
	case <-c.closed:
	case c.sendq <- raw:
	case <-time.After(timeout):
		c.Close()
	}
}

func (h *Hub) Join(chatID string, c *Conn) {
	topic := protocol.GenChatTopic(chatID)
	// add 必须在 Upsert 回调内完成，借分片锁与 Leave 的 RemoveCb 串行化，
	// 否则可能加入一个刚被摘掉的孤儿分组
	h.groups.Upsert(topic, nil, func(exist bool, valueInMap, _ *group) *group {
		g := valueInMap
		if !exist {
			g = &group{}
		}
		g.add(c)
		return g
	})
}

func (h *Hub) Leave(chatID string, c *Conn) {
	topic := protocol.GenChatTopic(chatID)
	g, ok := h.groups.Get(topic)
	if !ok {
		return
	}
	g.remove(c)
	if g.empty() {
		h.groups.RemoveCb(topic, func(_ string, v *group, exists bool) bool {
			return exists && v.empty()
		})
	}
}

func (h *Hub) JoinRoster(c *Conn) {
	h.roster.add(c)
}

func (h *Hub) LeaveRoster(c *Conn) {
	h.roster.remove(c)
}

func (h *Hub) Broadcast(chatID string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	g, ok := h.groups.Get(protocol.GenChatTopic(chatID))
	if !ok {
		return nil
	}
	for _, c := range g.snapshot() {
		c.send(raw, h.sendTimeout)
	}
	return nil
}

func (h *Hub) BroadcastRoster(event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, c := range h.roster.snapshot() {
		c.send(raw, h.sendTimeout)
	}
	return nil
}
