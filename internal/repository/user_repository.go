package repository

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// UpsertByTgID registers the chat identity or refreshes its display
	// fields, leaving phone and points class untouched on conflict.
	UpsertByTgID(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByTgID(tgID int64) (*model.User, error)
	SavePhone(tgID int64, phone, fullName string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) UpsertByTgID(user *model.User) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tg_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "username", "lang", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return err
	}
	if user.ID == 0 {
		// Conflict path on dialects that do not return the existing id.
		existing, findErr := r.FindByTgID(user.TgID)
		if findErr != nil {
			return findErr
		}
		if existing == nil {
			return gorm.ErrRecordNotFound
		}
		user.ID = existing.ID
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByTgID(tgID int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("tg_id = ?", tgID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SavePhone(tgID int64, phone, fullName string) error {
	updates := map[string]interface{}{"phone": phone}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	res := r.db.Model(&model.User{}).Where("tg_id = ?", tgID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
