// Package events publishes forum domain events.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	TopicUser    = "user_events"
	TopicBoard   = "board_events"
	TopicComment = "comment_events"
)

var Topics = []string{TopicUser, TopicBoard, TopicComment}

type Event struct {
	Type      string    `json:"type"`
	Kind      string    `json:"kind,omitempty"`
	UserNo    uint      `json:"user_no,omitempty"`
	BoardNo   uint      `json:"board_no,omitempty"`
	CommentNo uint      `json:"comment_no,omitempty"`
	Nick      string    `json:"nick,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                            { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Topic string
	Key   string
	Event any
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		if ev, ok := e.Event.(Event); ok {
			out = append(out, ev.Type)
		}
	}
	return out
}
