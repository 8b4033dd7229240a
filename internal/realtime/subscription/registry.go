// Package subscription maps topics to the live connections following them.
package subscription

import (
	"sort"
	"sync"

	"orderflow/internal/realtime"
)

type set[T comparable] map[T]struct{}

// Registry is safe for concurrent use. It keeps both directions so that
// dropping a connection is proportional to the topics it held.
type Registry struct {
	mu      sync.RWMutex
	byTopic map[realtime.Topic]set[realtime.ConnectionID]
	byConn  map[realtime.ConnectionID]set[realtime.Topic]
}

func NewRegistry() *Registry {
	return &Registry{
		byTopic: make(map[realtime.Topic]set[realtime.ConnectionID]),
		byConn:  make(map[realtime.ConnectionID]set[realtime.Topic]),
	}
}

// Subscribe adds the pair and reports whether it was new.
func (r *Registry) Subscribe(topic realtime.Topic, conn realtime.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byTopic[topic]
	if !ok {
		conns = make(set[realtime.ConnectionID])
		r.byTopic[topic] = conns
	}
	if _, exists := conns[conn]; exists {
		return false
	}
	conns[conn] = struct{}{}

	topics, ok := r.byConn[conn]
	if !ok {
		topics = make(set[realtime.Topic])
		r.byConn[conn] = topics
	}
	topics[topic] = struct{}{}
	return true
}

// Unsubscribe removes the pair and reports whether it existed.
func (r *Registry) Unsubscribe(topic realtime.Topic, conn realtime.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unlink(topic, conn)
}

// Resolve returns the connections following topic in a stable order.
func (r *Registry) Resolve(topic realtime.Topic) []realtime.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]realtime.ConnectionID, 0, len(r.byTopic[topic]))
	for c := range r.byTopic[topic] {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i] < conns[j] })
	return conns
}

// Topics returns what conn follows.
func (r *Registry) Topics(conn realtime.ConnectionID) []realtime.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]realtime.Topic, 0, len(r.byConn[conn]))
	for t := range r.byConn[conn] {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// RemoveConnection drops every subscription held by conn and returns how many there were.
func (r *Registry) RemoveConnection(conn realtime.ConnectionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for topic := range r.byConn[conn] {
		if r.unlink(topic, conn) {
			n++
		}
	}
	return n
}

// Stats reports the number of non-empty topics and tracked connections.
func (r *Registry) Stats() (topics, connections int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTopic), len(r.byConn)
}

func (r *Registry) unlink(topic realtime.Topic, conn realtime.ConnectionID) bool {
	conns, ok := r.byTopic[topic]
	if !ok {
		return false
	}
	if _, exists := conns[conn]; !exists {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(r.byTopic, topic)
	}
	if topics, ok := r.byConn[conn]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(r.byConn, conn)
		}
	}
	return true
}
