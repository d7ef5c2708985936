package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/util"
)

const recentLimit = 3

type BoardService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  BoardIndexer
}

func (s *BoardService) List(ctx context.Context, kind models.Kind, page int) (*models.Page, error) {
	offset, limit := util.Calculate(page)
	res, err := s.Repo.ListBoards(ctx, kind, nil, kind.BoardTable()+".no DESC", offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	if len(res.Boards) == 0 {
		return nil, fail(ErrNotFound, "Not Found")
	}
	return res, nil
}

func (s *BoardService) Get(ctx context.Context, kind models.Kind, no uint) (*models.BoardDetail, error) {
	board, err := s.Repo.GetBoard(ctx, kind, no)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Not Found")
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	return board, nil
}

func (s *BoardService) Create(ctx context.Context, kind models.Kind, authorNo uint, title, content string) (*models.Board, error) {
	if title == "" {
		return nil, fail(ErrValidation, "TITLE missing")
	}
	if content == "" {
		return nil, fail(ErrValidation, "CONTENT missing")
	}

	board := models.Board{AuthorNo: authorNo, Title: title, Content: content}
	if err := s.Repo.CreateBoard(ctx, kind, &board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.afterWrite(ctx, kind, &board, "board_created")
	return &board, nil
}

func (s *BoardService) Update(ctx context.Context, kind models.Kind, callerNo, no uint, title, content string) (*models.Board, error) {
	if title == "" {
		return nil, fail(ErrValidation, "TITLE missing")
	}
	if content == "" {
		return nil, fail(ErrValidation, "CONTENT missing")
	}
	if err := s.checkOwner(ctx, kind, callerNo, no); err != nil {
		return nil, err
	}

	board, err := s.Repo.UpdateBoard(ctx, kind, no, title, content)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, fmt.Sprintf("Cannot find Board with %d", no))
		}
		return nil, fmt.Errorf("update board: %w", err)
	}

	s.afterWrite(ctx, kind, board, "board_updated")
	return board, nil
}

func (s *BoardService) Delete(ctx context.Context, kind models.Kind, callerNo, no uint) error {
	if err := s.checkOwner(ctx, kind, callerNo, no); err != nil {
		return err
	}
	if err := s.Repo.DeleteBoard(ctx, kind, no); err != nil {
		if repo.IsNotFound(err) {
			return fail(ErrNotFound, fmt.Sprintf("Cannot find Board with %d", no))
		}
		return fmt.Errorf("delete board: %w", err)
	}

	if s.Index != nil {
		indexed(ctx, "delete_board", s.Index.DeleteBoard(ctx, kind, no))
	}
	publish(ctx, s.Events, events.TopicBoard, events.Event{Type: "board_deleted", Kind: string(kind), BoardNo: no, UserNo: callerNo})
	return nil
}

func (s *BoardService) Recent(ctx context.Context, kind models.Kind) ([]models.BoardSummary, error) {
	boards, err := s.Repo.RecentBoards(ctx, kind, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent boards: %w", err)
	}
	if len(boards) == 0 {
		return nil, fail(ErrNotFound, "no data")
	}
	return boards, nil
}

func (s *BoardService) checkOwner(ctx context.Context, kind models.Kind, callerNo, no uint) error {
	board, err := s.Repo.FindBoard(ctx, kind, no)
	if err != nil {
		if repo.IsNotFound(err) {
			return fail(ErrNotFound, fmt.Sprintf("Cannot find Board with %d", no))
		}
		return fmt.Errorf("find board: %w", err)
	}
	if board.AuthorNo != callerNo {
		return fail(ErrNotAuthor, "No Author")
	}
	return nil
}

func (s *BoardService) afterWrite(ctx context.Context, kind models.Kind, board *models.Board, typ string) {
	if s.Index != nil {
		indexed(ctx, "index_board", s.Index.IndexBoard(ctx, kind, board))
	}
	publish(ctx, s.Events, events.TopicBoard, events.Event{Type: typ, Kind: string(kind), BoardNo: board.No, UserNo: board.AuthorNo})
}
