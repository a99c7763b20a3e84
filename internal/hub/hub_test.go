package hub

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveOne(t *testing.T, sub *Subscriber) []byte {
	t.Helper()
	select {
	case event := <-sub.C():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHub_FanOut(t *testing.T) {
	h := New(10, DefaultQueueSize)
	defer h.Stop()

	first, err := h.Subscribe("content-updates")
	require.NoError(t, err)
	second, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	h.Publish("content-updates", []byte("hello"))

	assert.Equal(t, []byte("hello"), receiveOne(t, first))
	assert.Equal(t, []byte("hello"), receiveOne(t, second))
}

func TestHub_PerSubscriberFIFO(t *testing.T) {
	h := New(10, DefaultQueueSize)
	defer h.Stop()

	sub, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	for i := range 10 {
		h.Publish("content-updates", []byte(fmt.Sprintf("event-%d", i)))
	}

	for i := range 10 {
		assert.Equal(t, fmt.Sprintf("event-%d", i), string(receiveOne(t, sub)))
	}
}

func TestHub_GroupsAreIsolated(t *testing.T) {
	h := New(10, DefaultQueueSize)
	defer h.Stop()

	content, err := h.Subscribe("content-updates")
	require.NoError(t, err)
	stats, err := h.Subscribe("device-stats")
	require.NoError(t, err)

	h.Publish("device-stats", []byte("stats"))

	assert.Equal(t, []byte("stats"), receiveOne(t, stats))
	select {
	case event := <-content.C():
		t.Fatalf("content subscriber received foreign event %q", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberEvicted(t *testing.T) {
	h := New(10, 2)
	defer h.Stop()

	slow, err := h.Subscribe("content-updates")
	require.NoError(t, err)
	healthy, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	// Fill both buffers, drain only the healthy subscriber, then publish once
	// more: the slow subscriber's full buffer gets it dropped.
	h.Publish("content-updates", []byte("e1"))
	h.Publish("content-updates", []byte("e2"))
	assert.Equal(t, []byte("e1"), receiveOne(t, healthy))
	assert.Equal(t, []byte("e2"), receiveOne(t, healthy))

	h.Publish("content-updates", []byte("e3"))

	select {
	case <-slow.Done():
	case <-time.After(time.Second):
		t.Fatal("slow subscriber was not dropped")
	}

	// Dropped subscriber keeps its already-queued events but gets no more.
	assert.Equal(t, []byte("e1"), receiveOne(t, slow))
	assert.Equal(t, []byte("e2"), receiveOne(t, slow))

	// Eviction of the slow subscriber never blocks delivery to the rest.
	assert.Equal(t, []byte("e3"), receiveOne(t, healthy))
	assert.Equal(t, 1, h.SubscriberCount("content-updates"))
}

func TestHub_UnsubscribeIdempotent(t *testing.T) {
	h := New(10, DefaultQueueSize)
	defer h.Stop()

	sub, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed after unsubscribe")
	}
	assert.Equal(t, 0, h.SubscriberCount("content-updates"))
}

func TestHub_NoDeliveryAfterUnsubscribe(t *testing.T) {
	h := New(10, DefaultQueueSize)
	defer h.Stop()

	sub, err := h.Subscribe("content-updates")
	require.NoError(t, err)
	h.Unsubscribe(sub)
	<-sub.Done()

	h.Publish("content-updates", []byte("late"))

	select {
	case event := <-sub.C():
		t.Fatalf("received event %q after unsubscribe", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_GroupFull(t *testing.T) {
	h := New(1, DefaultQueueSize)
	defer h.Stop()

	_, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	_, err = h.Subscribe("content-updates")
	assert.ErrorContains(t, err, "full")
}

func TestHub_StopClosesSubscribers(t *testing.T) {
	h := New(10, DefaultQueueSize)

	sub, err := h.Subscribe("content-updates")
	require.NoError(t, err)

	h.Stop()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed on hub stop")
	}
}
