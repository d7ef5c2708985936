package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/query"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/util"
)

type SearchQuery struct {
	Board string
	Cat   string
	Key   string
	Page  string
}

type SearchService struct {
	Backend Searcher
}

// Search validates the raw query parameters in order and runs the search.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) (*models.Page, error) {
	switch {
	case q.Board == "":
		return nil, fail(ErrValidation, "Board missing")
	case q.Cat == "":
		return nil, fail(ErrValidation, "Category missing")
	case q.Key == "":
		return nil, fail(ErrValidation, "Keyword missing")
	}
	page, ok := util.ParsePage(q.Page)
	if !ok {
		return nil, fail(ErrValidation, "Page missing")
	}

	kind, err := models.ParseKind(q.Board)
	if err != nil {
		return nil, fail(ErrValidation, "Invalid Board")
	}
	cat, err := query.ParseCategory(q.Cat)
	if err != nil {
		return nil, fail(ErrValidation, "Invalid Category")
	}

	offset, limit := util.Calculate(page)
	res, err := s.Backend.Search(ctx, kind, cat, q.Key, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(res.Boards) == 0 {
		return nil, fail(ErrNotFound, "Not Found")
	}
	return res, nil
}

// DBSearcher runs searches against the board tables.
type DBSearcher struct {
	Repo *repo.GormRepo
}

func (d *DBSearcher) Search(ctx context.Context, kind models.Kind, cat query.Category, key string, offset, limit int) (*models.Page, error) {
	scope, err := query.Filter(kind, cat, key)
	if err != nil {
		return nil, err
	}
	return d.Repo.ListBoards(ctx, kind, scope, kind.BoardTable()+".created_at DESC", offset, limit)
}
