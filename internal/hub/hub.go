// Package hub implements the in-process broadcast layer: named groups of
// subscribers with bounded per-subscriber queues. Publishers never inspect
// or wait on individual subscribers; a subscriber whose buffer is full is
// dropped from the group instead of stalling delivery to others.
package hub

import (
	"fmt"
	"log/slog"

	"github.com/tbraun92/gamehub/internal/metrics"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdSubscribe struct {
	group   string
	buffer  int
	replyCh chan subscribeReply
}

func (cmdSubscribe) hubCmd() {}

type subscribeReply struct {
	sub *Subscriber
	err error
}

type cmdUnsubscribe struct {
	group string
	sub   *Subscriber
}

func (cmdUnsubscribe) hubCmd() {}

type cmdPublish struct {
	group string
	event []byte
}

func (cmdPublish) hubCmd() {}

type cmdCount struct {
	group   string
	replyCh chan int
}

func (cmdCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Hub ---

// Hub owns group membership. All state is confined to the run goroutine;
// the public API communicates over the command channel.
type Hub struct {
	cmdCh        chan hubCmd
	groups       map[string]map[*Subscriber]struct{}
	maxPerGroup  int
	defaultQueue int
	done         chan struct{}
}

// DefaultQueueSize is the outbound event buffer per subscriber.
const DefaultQueueSize = 16

// New creates a running hub. maxPerGroup limits subscribers per group
// (prevents resource exhaustion); queueSize is the bounded per-subscriber
// event buffer.
func New(maxPerGroup, queueSize int) *Hub {
	h := &Hub{
		cmdCh:        make(chan hubCmd, 256),
		groups:       make(map[string]map[*Subscriber]struct{}),
		maxPerGroup:  maxPerGroup,
		defaultQueue: queueSize,
		done:         make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdSubscribe:
			c.replyCh <- h.handleSubscribe(c)
		case cmdUnsubscribe:
			h.handleUnsubscribe(c.group, c.sub)
		case cmdPublish:
			h.handlePublish(c)
		case cmdCount:
			c.replyCh <- len(h.groups[c.group])
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleSubscribe(c cmdSubscribe) subscribeReply {
	members, exists := h.groups[c.group]
	if !exists {
		members = make(map[*Subscriber]struct{})
		h.groups[c.group] = members
	}

	if len(members) >= h.maxPerGroup {
		slog.Warn("Rejecting subscriber: group full", "group", c.group, "max", h.maxPerGroup)
		return subscribeReply{err: fmt.Errorf("group %s full (%d subscribers)", c.group, h.maxPerGroup)}
	}

	sub := newSubscriber(c.group, c.buffer)
	members[sub] = struct{}{}
	metrics.HubSubscribers.WithLabelValues(c.group).Set(float64(len(members)))
	slog.Debug("Subscriber attached", "group", c.group, "total", len(members))
	return subscribeReply{sub: sub}
}

func (h *Hub) handleUnsubscribe(group string, sub *Subscriber) {
	members, exists := h.groups[group]
	if !exists {
		return
	}
	if _, exists := members[sub]; !exists {
		return
	}

	sub.close()
	delete(members, sub)
	metrics.HubSubscribers.WithLabelValues(group).Set(float64(len(members)))

	if len(members) == 0 {
		delete(h.groups, group)
	}
	slog.Debug("Subscriber detached", "group", group, "remaining", len(members))
}

func (h *Hub) handlePublish(c cmdPublish) {
	metrics.HubEventsPublished.WithLabelValues(c.group).Inc()

	members := h.groups[c.group]
	var slow []*Subscriber
	for sub := range members {
		if !sub.offer(c.event) {
			slow = append(slow, sub)
		}
	}

	// A full buffer means the client stopped consuming; treat it as
	// disconnected so one stalled client cannot degrade the group.
	for _, sub := range slow {
		slog.Warn("Dropping slow subscriber", "group", c.group)
		metrics.HubSlowSubscribersEvicted.Inc()
		h.handleUnsubscribe(c.group, sub)
	}
}

func (h *Hub) handleStop() {
	for group, members := range h.groups {
		for sub := range members {
			sub.close()
		}
		delete(h.groups, group)
		metrics.HubSubscribers.WithLabelValues(group).Set(0)
	}
}

// --- Public API ---

// Subscribe attaches a new subscriber to the group. Membership is ephemeral:
// events published before Subscribe returns are not delivered.
func (h *Hub) Subscribe(group string) (*Subscriber, error) {
	replyCh := make(chan subscribeReply, 1)
	h.cmdCh <- cmdSubscribe{group: group, buffer: h.defaultQueue, replyCh: replyCh}
	reply := <-replyCh
	return reply.sub, reply.err
}

// Unsubscribe detaches the subscriber and closes its Done channel. No-op if
// the subscriber is already detached.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.cmdCh <- cmdUnsubscribe{group: sub.group, sub: sub}
}

// Publish delivers event to every current subscriber of the group. Delivery
// is best-effort and non-durable; per-subscriber ordering matches publish
// order.
func (h *Hub) Publish(group string, event []byte) {
	h.cmdCh <- cmdPublish{group: group, event: event}
}

// SubscriberCount returns the current membership of a group.
func (h *Hub) SubscriberCount(group string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdCount{group: group, replyCh: replyCh}
	return <-replyCh
}

// Stop detaches all subscribers and shuts the hub down.
func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
	<-h.done
}
