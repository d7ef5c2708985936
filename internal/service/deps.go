package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/query"
)

// BoardIndexer mirrors board writes into the search index.
type BoardIndexer interface {
	IndexBoard(ctx context.Context, kind models.Kind, board *models.Board) error
	DeleteBoard(ctx context.Context, kind models.Kind, no uint) error
	DeleteByAuthor(ctx context.Context, authorNo uint) error
	UpdateAuthorNick(ctx context.Context, authorNo uint, nick string) error
}

type Searcher interface {
	Search(ctx context.Context, kind models.Kind, cat query.Category, key string, offset, limit int) (*models.Page, error)
}

func key(no uint) string {
	return strconv.FormatUint(uint64(no), 10)
}

// publish never fails the caller; delivery errors are only logged.
func publish(ctx context.Context, p events.Publisher, topic string, ev events.Event) {
	if p == nil {
		return
	}
	ev.At = time.Now().UTC()
	k := key(ev.UserNo)
	if ev.BoardNo != 0 {
		k = key(ev.BoardNo)
	}
	if err := p.PublishEvent(ctx, topic, k, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}

func indexed(ctx context.Context, op string, err error) {
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "op", op, "error", err)
	}
}
