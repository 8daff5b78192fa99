package sse

import (
	"bufio"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/qaboard/pkg/log"
)

// KeepAlive 空闲连接的注释心跳间隔
const KeepAlive = 15 * time.Second

// Hub fans server-sent events out to subscribers grouped by topic. Slow
// subscribers lose events instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[chan []byte]struct{} // topic -> set(ch)
	closing chan struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		subs:    make(map[string]map[chan []byte]struct{}),
		closing: make(chan struct{}),
	}
}

// Encode formats payload as one SSE frame for topic.
func Encode(topic string, payload any) ([]byte, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", topic, data)), nil
}

func (h *Hub) Broadcast(topic string, payload any) {
	frame, err := Encode(topic, payload)
	if err != nil {
		log.Warnw("failed to encode event", "topic", topic, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[topic] {
		select {
		case ch <- frame:
		default:
			// 慢消费者丢弃
		}
	}
}

// Subscribe returns a channel of encoded frames for topic. The channel is
// closed by cancel or when the hub closes.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte, 128)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = make(map[chan []byte]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			set, ok := h.subs[topic]
			if !ok {
				return
			}
			if _, ok := set[ch]; !ok {
				return
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, topic)
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Feed starts a goroutine that broadcasts snapshot() on topic after every
// burst of notify calls. notify never blocks, so it is safe to call from
// under other locks. The goroutine exits when the hub closes.
func (h *Hub) Feed(topic string, snapshot func() any) (notify func()) {
	kick := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-kick:
				h.Broadcast(topic, snapshot())
			case <-h.closing:
				return
			}
		}
	}()
	return func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
}

// Close ends every subscription and stops all feeds.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.closing)
	for topic, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, topic)
	}
}

// Handler streams topic to the client. When initial is set its value is
// sent first so a new subscriber does not wait for the next change.
func (h *Hub) Handler(topic string, initial func() any) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		ch, cancel := h.Subscribe(topic)
		var first []byte
		if initial != nil {
			first, _ = Encode(topic, initial())
		}

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer cancel()
			if len(first) > 0 {
				_, _ = w.Write(first)
				if err := w.Flush(); err != nil {
					return
				}
			}

			ticker := time.NewTicker(KeepAlive)
			defer ticker.Stop()
			for {
				select {
				case frame, ok := <-ch:
					if !ok {
						return
					}
					_, _ = w.Write(frame)
				case <-ticker.C:
					_, _ = w.WriteString(": ping\n\n")
				}
				// 写失败说明客户端已断开
				if err := w.Flush(); err != nil {
					return
				}
			}
		})
		return nil
	}
}
