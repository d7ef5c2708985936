package db

import (
	"time"

	"github.com/Skotchmaster/forum_api/internal/models"
)

// The per-kind tables are migrated from these row types; models.Board and
// models.Comment carry the Author relation and are only used for queries.

type boardRow struct {
	No        uint      `gorm:"column:no;primaryKey;autoIncrement"`
	AuthorNo  uint      `gorm:"column:author_no;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type commentRow struct {
	No        uint      `gorm:"column:no;primaryKey;autoIncrement"`
	BoardNo   uint      `gorm:"column:board_no;not null;index"`
	AuthorNo  uint      `gorm:"column:author_no;not null;index"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type freeBoardRow struct {
	Row boardRow `gorm:"embedded"`
}

type qnaBoardRow struct {
	Row boardRow `gorm:"embedded"`
}

type freeCommentRow struct {
	Row commentRow `gorm:"embedded"`
}

type qnaCommentRow struct {
	Row commentRow `gorm:"embedded"`
}

func (freeBoardRow) TableName() string   { return models.KindFree.BoardTable() }
func (qnaBoardRow) TableName() string    { return models.KindQnA.BoardTable() }
func (freeCommentRow) TableName() string { return models.KindFree.CommentTable() }
func (qnaCommentRow) TableName() string  { return models.KindQnA.CommentTable() }

func schema() []any {
	return []any{
		&models.User{},
		&models.RevokedToken{},
		&freeBoardRow{},
		&qnaBoardRow{},
		&freeCommentRow{},
		&qnaCommentRow{},
	}
}
