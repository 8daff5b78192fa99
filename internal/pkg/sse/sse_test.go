package sse

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	frame, err := Encode("status", map[string]int{"teams": 2})
	require.NoError(t, err)
	assert.Equal(t, "event: status\ndata: {\"teams\":2}\n\n", string(frame))
}

func TestHub_SubscribeBroadcast(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ch, cancel := h.Subscribe("status")
	other, cancelOther := h.Subscribe("other")
	defer cancelOther()
	assert.Equal(t, 1, h.Subscribers("status"))

	h.Broadcast("status", 1)
	select {
	case frame := <-ch:
		assert.Contains(t, string(frame), "data: 1")
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
	select {
	case <-other:
		t.Fatal("frame leaked to another topic")
	default:
	}

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers("status"))
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	defer h.Close()

	_, cancel := h.Subscribe("status")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Broadcast("status", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}
}

func TestHub_Feed(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ch, cancel := h.Subscribe("status")
	defer cancel()

	var calls atomic.Int32
	notify := h.Feed("status", func() any { return calls.Add(1) })
	notify()

	select {
	case frame := <-ch:
		assert.Contains(t, string(frame), "event: status")
	case <-time.After(time.Second):
		t.Fatal("feed did not broadcast")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("status")
	h.Close()
	h.Close()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, cancel)

	late, _ := h.Subscribe("status")
	_, ok = <-late
	assert.False(t, ok)
}
