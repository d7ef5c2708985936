package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/forum_api/internal/models"
)

// GormRepo satisfies revocation.Store over the jwt_blacklist table.

func (r *GormRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	entry := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jwt"}}, DoNothing: true}).
		Create(&entry).Error
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("jwt = ?", jti).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) PruneRevoked(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
