package coalesce

import (
	"sync"
	"testing"
	"time"

	"bengkelbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capture struct {
	mu      sync.Mutex
	flushes []flushed
}

type flushed struct {
	key      models.ConversationKey
	name     string
	messages []models.BufferedMessage
}

func (c *capture) handler(key models.ConversationKey, name string, msgs []models.BufferedMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes = append(c.flushes, flushed{key: key, name: name, messages: msgs})
}

func (c *capture) snapshot() []flushed {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]flushed, len(c.flushes))
	copy(out, c.flushes)
	return out
}

func msg(text string) models.BufferedMessage {
	return models.BufferedMessage{Content: text}
}

func TestFlushPreservesOrder(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(time.Hour, cap.handler, zap.NewNop())

	c.Schedule("a", "Budi", msg("one"))
	c.Schedule("a", "Budi", msg("two"))
	c.Schedule("a", "Budi", msg("three"))
	c.Flush("a")

	flushes := cap.snapshot()
	require.Len(t, flushes, 1)
	assert.Equal(t, models.ConversationKey("a"), flushes[0].key)
	assert.Equal(t, "Budi", flushes[0].name)
	require.Len(t, flushes[0].messages, 3)
	assert.Equal(t, "one", flushes[0].messages[0].Content)
	assert.Equal(t, "two", flushes[0].messages[1].Content)
	assert.Equal(t, "three", flushes[0].messages[2].Content)
}

func TestFlushIsIdempotent(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(time.Hour, cap.handler, zap.NewNop())

	c.Schedule("a", "", msg("hi"))
	c.Flush("a")
	c.Flush("a")

	assert.Len(t, cap.snapshot(), 1)
}

func TestKeysAreIsolated(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(time.Hour, cap.handler, zap.NewNop())

	c.Schedule("a", "", msg("for a"))
	c.Schedule("b", "", msg("for b"))
	c.Flush("a")

	flushes := cap.snapshot()
	require.Len(t, flushes, 1)
	assert.Equal(t, models.ConversationKey("a"), flushes[0].key)
	assert.Equal(t, 1, c.Pending())
}

func TestTimerFiresAfterQuietPeriod(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(50*time.Millisecond, cap.handler, zap.NewNop())

	// Burst of messages inside the window must produce a single flush.
	c.Schedule("a", "", msg("one"))
	time.Sleep(20 * time.Millisecond)
	c.Schedule("a", "", msg("two"))
	time.Sleep(20 * time.Millisecond)
	c.Schedule("a", "", msg("three"))

	assert.Empty(t, cap.snapshot(), "flush before the quiet period elapsed")

	require.Eventually(t, func() bool {
		return len(cap.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	flushes := cap.snapshot()
	require.Len(t, flushes[0].messages, 3)
	assert.Equal(t, 0, c.Pending())
}

func TestStaleTimerDoesNotCutQuietPeriodShort(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(time.Hour, cap.handler, zap.NewNop())

	// First Schedule arms a timer. A second Schedule supersedes it; if the
	// first timer had already fired and was waiting on the lock, its callback
	// runs with a stale generation and must leave the buffer alone.
	c.Schedule("a", "", msg("one"))
	c.Schedule("a", "", msg("two"))

	c.flushExpired("a", 1)
	assert.Empty(t, cap.snapshot(), "superseded timer drained the re-armed buffer")
	assert.Equal(t, 1, c.Pending())

	// The current timer's callback still flushes normally.
	c.flushExpired("a", 2)
	flushes := cap.snapshot()
	require.Len(t, flushes, 1)
	require.Len(t, flushes[0].messages, 2)
	assert.Equal(t, 0, c.Pending())
}

func TestFlushAllDrainsEverything(t *testing.T) {
	cap := &capture{}
	c := NewCoalescer(time.Hour, cap.handler, zap.NewNop())

	c.Schedule("a", "", msg("a1"))
	c.Schedule("b", "", msg("b1"))
	c.Schedule("c", "", msg("c1"))
	c.FlushAll()

	assert.Len(t, cap.snapshot(), 3)
	assert.Equal(t, 0, c.Pending())
}

func TestHandlerPanicDoesNotCorruptState(t *testing.T) {
	calls := 0
	var c *Coalescer
	c = NewCoalescer(time.Hour, func(key models.ConversationKey, name string, msgs []models.BufferedMessage) {
		calls++
		panic("boom")
	}, zap.NewNop())

	c.Schedule("a", "", msg("hi"))
	assert.NotPanics(t, func() { c.Flush("a") })
	assert.Equal(t, 1, calls)

	// The coalescer must keep working for other keys afterwards.
	c.Schedule("b", "", msg("hello"))
	assert.NotPanics(t, func() { c.Flush("b") })
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Pending())
}
