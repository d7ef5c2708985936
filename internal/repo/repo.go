package repo

import (
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Scope narrows a board query, e.g. to a search filter.
type Scope = func(*gorm.DB) *gorm.DB

func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("no", "id", "nick")
}
