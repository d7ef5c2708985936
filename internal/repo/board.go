package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/forum_api/internal/models"
)

// ListBoards returns one page of kind's boards matching scope, each with the author
// ids of its comments, together with the filtered and total counts, read in one transaction.
func (r *GormRepo) ListBoards(ctx context.Context, kind models.Kind, scope Scope, order string, offset, limit int) (*models.Page, error) {
	table := kind.BoardTable()
	if scope == nil {
		scope = func(db *gorm.DB) *gorm.DB { return db }
	}

	var page models.Page
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Count(&page.AllCounts).Error; err != nil {
			return err
		}
		if err := tx.Table(table).Scopes(scope).Count(&page.BoardsCount).Error; err != nil {
			return err
		}

		var boards []models.Board
		err := tx.Table(table).
			Scopes(scope).
			Preload("Author", authorColumns).
			Order(order).
			Offset(offset).
			Limit(limit).
			Find(&boards).Error
		if err != nil {
			return err
		}
		page.Boards, err = summarize(tx, kind, boards)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *GormRepo) FindBoard(ctx context.Context, kind models.Kind, no uint) (*models.Board, error) {
	var board models.Board
	if err := r.DB.WithContext(ctx).Table(kind.BoardTable()).Where("no = ?", no).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// GetBoard loads a board with its author and its comments, newest comment first.
func (r *GormRepo) GetBoard(ctx context.Context, kind models.Kind, no uint) (*models.BoardDetail, error) {
	var detail models.BoardDetail
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(kind.BoardTable()).Preload("Author", authorColumns).Where("no = ?", no).First(&detail.Board).Error; err != nil {
			return err
		}
		return tx.Table(kind.CommentTable()).
			Preload("Author", authorColumns).
			Where("board_no = ?", no).
			Order("no DESC").
			Find(&detail.Comments).Error
	})
	if err != nil {
		return nil, err
	}
	if detail.Comments == nil {
		detail.Comments = []models.Comment{}
	}
	return &detail, nil
}

func (r *GormRepo) CreateBoard(ctx context.Context, kind models.Kind, board *models.Board) error {
	board.Author = nil
	if err := r.DB.WithContext(ctx).Table(kind.BoardTable()).Create(board).Error; err != nil {
		return err
	}
	return r.attachAuthor(ctx, &board.Author, board.AuthorNo)
}

func (r *GormRepo) UpdateBoard(ctx context.Context, kind models.Kind, no uint, title, content string) (*models.Board, error) {
	res := r.DB.WithContext(ctx).Table(kind.BoardTable()).Where("no = ?", no).Updates(map[string]any{
		"title":      title,
		"content":    content,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var board models.Board
	if err := r.DB.WithContext(ctx).Table(kind.BoardTable()).Preload("Author", authorColumns).Where("no = ?", no).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// DeleteBoard removes the board and its comments.
func (r *GormRepo) DeleteBoard(ctx context.Context, kind models.Kind, no uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(kind.CommentTable()).Where("board_no = ?", no).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Table(kind.BoardTable()).Where("no = ?", no).Delete(&models.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// RecentBoards returns the n newest boards with the author ids of their comments.
func (r *GormRepo) RecentBoards(ctx context.Context, kind models.Kind, n int) ([]models.BoardSummary, error) {
	var out []models.BoardSummary
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var boards []models.Board
		if err := tx.Table(kind.BoardTable()).Preload("Author", authorColumns).Order("no DESC").Limit(n).Find(&boards).Error; err != nil {
			return err
		}
		var err error
		out, err = summarize(tx, kind, boards)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommentRefs returns the comment author ids of the given boards, oldest comment first.
func (r *GormRepo) CommentRefs(ctx context.Context, kind models.Kind, boardNos []uint) (map[uint][]models.CommentRef, error) {
	return commentRefs(r.DB.WithContext(ctx), kind, boardNos)
}

func commentRefs(db *gorm.DB, kind models.Kind, boardNos []uint) (map[uint][]models.CommentRef, error) {
	byBoard := make(map[uint][]models.CommentRef, len(boardNos))
	if len(boardNos) == 0 {
		return byBoard, nil
	}
	var refs []models.CommentRef
	if err := db.Table(kind.CommentTable()).Select("board_no", "author_no").Where("board_no IN ?", boardNos).Order("no ASC").Find(&refs).Error; err != nil {
		return nil, err
	}
	for _, ref := range refs {
		byBoard[ref.BoardNo] = append(byBoard[ref.BoardNo], ref)
	}
	return byBoard, nil
}

func summarize(db *gorm.DB, kind models.Kind, boards []models.Board) ([]models.BoardSummary, error) {
	nos := make([]uint, len(boards))
	for i, b := range boards {
		nos[i] = b.No
	}
	refs, err := commentRefs(db, kind, nos)
	if err != nil {
		return nil, err
	}
	return models.Summaries(boards, refs), nil
}

func (r *GormRepo) attachAuthor(ctx context.Context, dst **models.Author, no uint) error {
	var author models.Author
	if err := r.DB.WithContext(ctx).Scopes(authorColumns).Where("no = ?", no).First(&author).Error; err != nil {
		return err
	}
	*dst = &author
	return nil
}
