package models

import (
	"errors"
	"time"
)

var ErrUnknownKind = errors.New("unknown board kind")

type User struct {
	No           uint      `gorm:"column:no;primaryKey;autoIncrement" json:"no"`
	LoginID      string    `gorm:"column:id;size:64;uniqueIndex;not null" json:"id"`
	Nick         string    `gorm:"column:nick;size:64;uniqueIndex;not null" json:"nick"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Author is the public projection of a user attached to posts and comments.
type Author struct {
	No      uint   `gorm:"column:no;primaryKey" json:"no"`
	LoginID string `gorm:"column:id" json:"id"`
	Nick    string `gorm:"column:nick" json:"nick"`
}

func (Author) TableName() string { return "users" }

// Kind selects one of the two parallel board/comment table pairs.
type Kind string

const (
	KindFree Kind = "free"
	KindQnA  Kind = "qna"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFree, KindQnA:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

func (k Kind) BoardTable() string   { return string(k) + "_board" }
func (k Kind) CommentTable() string { return string(k) + "_comment" }

// Board rows live in free_board or qna_board; queries pick the table through Kind.
type Board struct {
	No        uint      `gorm:"column:no;primaryKey;autoIncrement" json:"no"`
	AuthorNo  uint      `gorm:"column:author_no;not null" json:"author_no"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	Author *Author `gorm:"foreignKey:AuthorNo;references:No" json:"author,omitempty"`
}

// BoardDetail is a board with its comments, newest first.
type BoardDetail struct {
	Board
	Comments []Comment `json:"comments"`
}

type Comment struct {
	No        uint      `gorm:"column:no;primaryKey;autoIncrement" json:"no"`
	BoardNo   uint      `gorm:"column:board_no;not null" json:"board_no"`
	AuthorNo  uint      `gorm:"column:author_no;not null" json:"author_no"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	Author *Author `gorm:"foreignKey:AuthorNo;references:No" json:"author,omitempty"`
}

// CommentRef is the comment projection attached to listed boards.
type CommentRef struct {
	BoardNo  uint `gorm:"column:board_no" json:"-"`
	AuthorNo uint `gorm:"column:author_no" json:"author_no"`
}

// BoardSummary is a board as it appears in lists, search results and the recent feed.
type BoardSummary struct {
	Board
	Comments []CommentRef `json:"comments"`
}

// Summaries pairs boards with their comment refs; boards without comments get an empty list.
func Summaries(boards []Board, refs map[uint][]CommentRef) []BoardSummary {
	out := make([]BoardSummary, len(boards))
	for i, b := range boards {
		comments := refs[b.No]
		if comments == nil {
			comments = []CommentRef{}
		}
		out[i] = BoardSummary{Board: b, Comments: comments}
	}
	return out
}

type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	JTI       string    `gorm:"column:jwt;size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RevokedToken) TableName() string { return "jwt_blacklist" }

// UserInfo is a user together with their post and comment counts.
type UserInfo struct {
	No               uint      `json:"no"`
	LoginID          string    `json:"id"`
	Nick             string    `json:"nick"`
	CreatedAt        time.Time `json:"created_at"`
	FreeBoardCount   int64     `json:"freeBoardCount"`
	QnaBoardCount    int64     `json:"qnaBoardCount"`
	FreeCommentCount int64     `json:"freeCommentCount"`
	QnaCommentCount  int64     `json:"qnaCommentCount"`
}

// Page is one window of boards plus the filtered and total counts.
type Page struct {
	Boards      []BoardSummary
	BoardsCount int64
	AllCounts   int64
}
