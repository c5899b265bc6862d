// Package coalesce groups rapid-fire inbound messages per conversation into
// one unit of downstream work. Each conversation key owns at most one pending
// buffer and one inactivity timer at any instant.
package coalesce

import (
	"sync"
	"time"

	"bengkelbot/models"

	"go.uber.org/zap"
)

// Handler consumes the flushed buffer of one conversation. It runs on the
// timer goroutine; panics are recovered so a misbehaving handler cannot
// corrupt the coalescer or kill the process.
type Handler func(key models.ConversationKey, displayName string, messages []models.BufferedMessage)

type pendingBuffer struct {
	displayName string
	messages    []models.BufferedMessage
	timer       *time.Timer
	gen         uint64 // bumped on every re-arm; stale timer callbacks see a mismatch
}

// Coalescer owns the pending buffers and timers for all conversations.
type Coalescer struct {
	mu      sync.Mutex
	delay   time.Duration
	handler Handler
	pending map[models.ConversationKey]*pendingBuffer
	logger  *zap.Logger
}

// NewCoalescer builds a coalescer with the given inactivity window.
func NewCoalescer(delay time.Duration, handler Handler, logger *zap.Logger) *Coalescer {
	return &Coalescer{
		delay:   delay,
		handler: handler,
		pending: make(map[models.ConversationKey]*pendingBuffer),
		logger:  logger,
	}
}

// Schedule appends a message to the key's buffer, creating it if absent, and
// re-arms the inactivity timer. Messages are delivered to the handler in the
// order they were scheduled.
func (c *Coalescer) Schedule(key models.ConversationKey, displayName string, msg models.BufferedMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf, ok := c.pending[key]
	if !ok {
		buf = &pendingBuffer{displayName: displayName}
		c.pending[key] = buf
	}
	if displayName != "" {
		buf.displayName = displayName
	}
	buf.messages = append(buf.messages, msg)

	// Stop is best-effort: a timer that already fired may have its callback
	// parked on the mutex right now. The generation check in flushExpired
	// keeps that stale callback from draining the re-armed buffer early.
	if buf.timer != nil {
		buf.timer.Stop()
	}
	buf.gen++
	gen := buf.gen
	buf.timer = time.AfterFunc(c.delay, func() {
		c.flushExpired(key, gen)
	})
}

// Flush detaches the key's buffer, cancels its timer, and invokes the handler
// with the ordered message list. A flush with no pending buffer is a no-op,
// so calling it twice in a row is safe.
func (c *Coalescer) Flush(key models.ConversationKey) {
	c.mu.Lock()
	buf, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	if buf.timer != nil {
		buf.timer.Stop()
	}
	c.mu.Unlock()

	c.invoke(key, buf)
}

// flushExpired is the timer-driven flush path. It only drains the buffer when
// the firing timer is still the current one; a callback from a timer that was
// superseded by a later Schedule does nothing.
func (c *Coalescer) flushExpired(key models.ConversationKey, gen uint64) {
	c.mu.Lock()
	buf, ok := c.pending[key]
	if !ok || buf.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	c.invoke(key, buf)
}

// FlushAll flushes every outstanding key. Used on graceful shutdown so
// buffered user input is not dropped.
func (c *Coalescer) FlushAll() {
	c.mu.Lock()
	keys := make([]models.ConversationKey, 0, len(c.pending))
	for key := range c.pending {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.Flush(key)
	}
}

// Pending reports how many conversations currently hold a buffer.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer) invoke(key models.ConversationKey, buf *pendingBuffer) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("coalesce handler panicked",
				zap.String("key", string(key)),
				zap.Any("panic", r),
			)
		}
	}()
	c.handler(key, buf.displayName, buf.messages)
}
