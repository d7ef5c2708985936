package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/query"
)

const boardMapping = `{
  "mappings": {
    "properties": {
      "kind":       {"type": "keyword"},
      "no":         {"type": "long"},
      "author_no":  {"type": "long"},
      "title":      {"type": "wildcard"},
      "content":    {"type": "wildcard"},
      "nick":       {"type": "wildcard"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// CommentRefLoader supplies the comment author ids of search hits; comments are not indexed.
type CommentRefLoader interface {
	CommentRefs(ctx context.Context, kind models.Kind, boardNos []uint) (map[uint][]models.CommentRef, error)
}

// BoardIndex mirrors both board tables into one index for keyword search.
type BoardIndex struct {
	Client *elasticsearch.Client
	Index  string
	Refs   CommentRefLoader
}

type boardDoc struct {
	Kind      string         `json:"kind"`
	No        uint           `json:"no"`
	AuthorNo  uint           `json:"author_no"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Nick      string         `json:"nick"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Author    *models.Author `json:"author,omitempty"`
}

func docID(kind models.Kind, no uint) string {
	return string(kind) + "-" + strconv.FormatUint(uint64(no), 10)
}

func (b *BoardIndex) EnsureIndex(ctx context.Context) error {
	res, err := b.Client.Indices.Exists([]string{b.Index}, b.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = b.Client.Indices.Create(b.Index,
		b.Client.Indices.Create.WithContext(ctx),
		b.Client.Indices.Create.WithBody(strings.NewReader(boardMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: create index: %w", err)
	}
	return checkResponse(res)
}

func (b *BoardIndex) IndexBoard(ctx context.Context, kind models.Kind, board *models.Board) error {
	doc := boardDoc{
		Kind:      string(kind),
		No:        board.No,
		AuthorNo:  board.AuthorNo,
		Title:     board.Title,
		Content:   board.Content,
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
		Author:    board.Author,
	}
	if board.Author != nil {
		doc.Nick = board.Author.Nick
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := b.Client.Index(b.Index, bytes.NewReader(body),
		b.Client.Index.WithContext(ctx),
		b.Client.Index.WithDocumentID(docID(kind, board.No)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index board: %w", err)
	}
	return checkResponse(res)
}

func (b *BoardIndex) DeleteBoard(ctx context.Context, kind models.Kind, no uint) error {
	res, err := b.Client.Delete(b.Index, docID(kind, no), b.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete board: %w", err)
	}
	if res.StatusCode == 404 {
		res.Body.Close()
		return nil
	}
	return checkResponse(res)
}

func (b *BoardIndex) DeleteByAuthor(ctx context.Context, authorNo uint) error {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"author_no": authorNo}},
	})
	if err != nil {
		return err
	}
	res, err := b.Client.DeleteByQuery([]string{b.Index}, bytes.NewReader(body),
		b.Client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: delete by author: %w", err)
	}
	return checkResponse(res)
}

func (b *BoardIndex) UpdateAuthorNick(ctx context.Context, authorNo uint, nick string) error {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"author_no": authorNo}},
		"script": map[string]any{
			"lang":   "painless",
			"source": "ctx._source.nick = params.nick; if (ctx._source.author != null) { ctx._source.author.nick = params.nick }",
			"params": map[string]any{"nick": nick},
		},
	})
	if err != nil {
		return err
	}
	res, err := b.Client.UpdateByQuery([]string{b.Index},
		b.Client.UpdateByQuery.WithContext(ctx),
		b.Client.UpdateByQuery.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: update nick: %w", err)
	}
	return checkResponse(res)
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// Search matches key as a literal substring of the category field within kind.
func (b *BoardIndex) Search(ctx context.Context, kind models.Kind, cat query.Category, key string, offset, limit int) (*models.Page, error) {
	kindFilter := map[string]any{"term": map[string]any{"kind": string(kind)}}
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					kindFilter,
					map[string]any{"wildcard": map[string]any{
						cat.Field(): map[string]any{"value": "*" + wildcardEscaper.Replace(key) + "*"},
					}},
				},
			},
		},
		"sort":             []any{map[string]any{"created_at": map[string]any{"order": "desc"}}},
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := b.Client.Search(
		b.Client.Search.WithContext(ctx),
		b.Client.Search.WithIndex(b.Index),
		b.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: search: %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source boardDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	all, err := b.count(ctx, kindFilter)
	if err != nil {
		return nil, err
	}

	boards := make([]models.Board, len(r.Hits.Hits))
	nos := make([]uint, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		d := hit.Source
		boards[i] = models.Board{
			No:        d.No,
			AuthorNo:  d.AuthorNo,
			Title:     d.Title,
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
			Author:    d.Author,
		}
		nos[i] = d.No
	}

	var refs map[uint][]models.CommentRef
	if b.Refs != nil && len(nos) > 0 {
		if refs, err = b.Refs.CommentRefs(ctx, kind, nos); err != nil {
			return nil, fmt.Errorf("comment refs: %w", err)
		}
	}

	return &models.Page{
		Boards:      models.Summaries(boards, refs),
		BoardsCount: r.Hits.Total.Value,
		AllCounts:   all,
	}, nil
}

func (b *BoardIndex) count(ctx context.Context, q map[string]any) (int64, error) {
	body, err := json.Marshal(map[string]any{"query": q})
	if err != nil {
		return 0, err
	}
	res, err := b.Client.Count(
		b.Client.Count.WithContext(ctx),
		b.Client.Count.WithIndex(b.Index),
		b.Client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch: count: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch: count: %s", res.Status())
	}

	var r struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, err
	}
	return r.Count, nil
}

func checkResponse(res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch: %s: %s", res.Status(), raw)
	}
	return nil
}

// Nop is used when no search cluster is configured.
type Nop struct{}

func (Nop) IndexBoard(context.Context, models.Kind, *models.Board) error { return nil }
func (Nop) DeleteBoard(context.Context, models.Kind, uint) error         { return nil }
func (Nop) DeleteByAuthor(context.Context, uint) error                   { return nil }
func (Nop) UpdateAuthorNick(context.Context, uint, string) error         { return nil }
