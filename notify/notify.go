// Package notify is the fire-and-forget outcome channel: every user-visible
// success or failure goes through a Sink, no acknowledgement expected.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
)

type Sink interface {
	Notify(level Level, message string)
}

// LogSink writes notifications to the process log.
type LogSink struct {
	Tag string
}

func (s LogSink) Notify(level Level, message string) {
	tag := s.Tag
	if tag == "" {
		tag = "NOTIFY"
	}
	log.Printf("[%s] %s: %s", tag, level, message)
}

// Collector records notifications for inspection in tests.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Level   Level
	Message string
}

func (c *Collector) Notify(level Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Message: message})
}

func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Discard drops everything; useful where a sink is required but nobody
// listens.
type Discard struct{}

func (Discard) Notify(Level, string) {}

// Fanout forwards each notification to every member sink.
type Fanout []Sink

func (f Fanout) Notify(level Level, message string) {
	for _, s := range f {
		s.Notify(level, message)
	}
}

// Publisher is the redis slice a RedisSink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes notifications to a redis channel so connected portal
// sessions can surface them live. Failures are logged and swallowed.
type RedisSink struct {
	Conn    Publisher
	Channel string
}

type redisNotification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (s RedisSink) Notify(level Level, message string) {
	if s.Conn == nil {
		return
	}
	channel := s.Channel
	if channel == "" {
		channel = "notifications"
	}
	data, err := json.Marshal(redisNotification{Level: level, Message: message})
	if err != nil {
		return
	}
	if err := s.Conn.Publish(context.Background(), channel, data).Err(); err != nil {
		log.Printf("[NOTIFY] publish failed: %v", err)
	}
}
