package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/forum_api/internal/models"
)

func (r *GormRepo) FindComment(ctx context.Context, kind models.Kind, no uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).Table(kind.CommentTable()).Where("no = ?", no).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormRepo) GetComment(ctx context.Context, kind models.Kind, no uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.DB.WithContext(ctx).Table(kind.CommentTable()).Preload("Author", authorColumns).Where("no = ?", no).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormRepo) CreateComment(ctx context.Context, kind models.Kind, comment *models.Comment) error {
	comment.Author = nil
	if err := r.DB.WithContext(ctx).Table(kind.CommentTable()).Create(comment).Error; err != nil {
		return err
	}
	return r.attachAuthor(ctx, &comment.Author, comment.AuthorNo)
}

func (r *GormRepo) UpdateComment(ctx context.Context, kind models.Kind, no uint, content string) (*models.Comment, error) {
	res := r.DB.WithContext(ctx).Table(kind.CommentTable()).Where("no = ?", no).Updates(map[string]any{
		"content":    content,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetComment(ctx, kind, no)
}

func (r *GormRepo) DeleteComment(ctx context.Context, kind models.Kind, no uint) error {
	res := r.DB.WithContext(ctx).Table(kind.CommentTable()).Where("no = ?", no).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
