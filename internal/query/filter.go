// Package query builds the search predicates for board listings.
package query

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/forum_api/internal/models"
)

var ErrUnknownCategory = errors.New("unknown search category")

type Category string

const (
	CategoryTitle   Category = "title"
	CategoryNick    Category = "nick"
	CategoryContent Category = "content"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryTitle, CategoryNick, CategoryContent:
		return Category(s), nil
	}
	return "", ErrUnknownCategory
}

// Field is the document field the category matches against.
func (c Category) Field() string {
	return string(c)
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// Contains returns a LIKE pattern matching key as a literal substring.
func Contains(key string) string {
	return "%" + likeEscaper.Replace(key) + "%"
}

// Filter restricts a board query on kind's table to rows matching key in cat.
func Filter(kind models.Kind, cat Category, key string) (func(*gorm.DB) *gorm.DB, error) {
	pattern := Contains(key)
	table := kind.BoardTable()

	switch cat {
	case CategoryNick:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(table+`.author_no IN (SELECT no FROM users WHERE nick LIKE ? ESCAPE '!')`, pattern)
		}, nil
	case CategoryTitle:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(table+`.title LIKE ? ESCAPE '!'`, pattern)
		}, nil
	case CategoryContent:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(table+`.content LIKE ? ESCAPE '!'`, pattern)
		}, nil
	}
	return nil, ErrUnknownCategory
}
