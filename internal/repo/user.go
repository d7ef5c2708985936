package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/forum_api/internal/models"
)

var kinds = []models.Kind{models.KindFree, models.KindQnA}

func (r *GormRepo) FindUserByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", loginID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByNo(ctx context.Context, no uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("no = ?", no).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) LoginIDExists(ctx context.Context, loginID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", loginID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) NickExists(ctx context.Context, nick string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("nick = ?", nick).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("no ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user together with every board and comment they own,
// and every comment left on their boards.
func (r *GormRepo) DeleteUser(ctx context.Context, no uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range kinds {
			owned := tx.Table(k.BoardTable()).Select("no").Where("author_no = ?", no)
			if err := tx.Table(k.CommentTable()).Where("author_no = ? OR board_no IN (?)", no, owned).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Table(k.BoardTable()).Where("author_no = ?", no).Delete(&models.Board{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("no = ?", no).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UserInfo reads the user and their four post/comment counts in one transaction.
func (r *GormRepo) UserInfo(ctx context.Context, no uint) (*models.UserInfo, error) {
	var info models.UserInfo
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("no = ?", no).First(&user).Error; err != nil {
			return err
		}
		info = models.UserInfo{No: user.No, LoginID: user.LoginID, Nick: user.Nick, CreatedAt: user.CreatedAt}

		counts := []struct {
			table string
			dst   *int64
		}{
			{models.KindFree.BoardTable(), &info.FreeBoardCount},
			{models.KindQnA.BoardTable(), &info.QnaBoardCount},
			{models.KindFree.CommentTable(), &info.FreeCommentCount},
			{models.KindQnA.CommentTable(), &info.QnaCommentCount},
		}
		for _, c := range counts {
			if err := tx.Table(c.table).Where("author_no = ?", no).Count(c.dst).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *GormRepo) UpdateNick(ctx context.Context, no uint, nick string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("no = ?", no).Update("nick", nick)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports a unique index violation translated by the dialector.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
