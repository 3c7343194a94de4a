package repository

import (
	"errors"

	"github.com/bekzodm/levelcheck/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointsRepository interface {
	// InsertOnce writes the entry unless one already exists for the same
	// (user_id, test_id, reason). Returns false without error when a
	// concurrent completion got there first.
	InsertOnce(entry *model.PointsEntry) (bool, error)
	HasGrant(userID, testID uint, reason string) (bool, error)
	LifetimeTotal(userID uint) (int, error)
	MonthlyTotal(userID uint, monthKey string) (int, error)
	FindAllByUser(userID uint) ([]model.PointsEntry, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) InsertOnce(entry *model.PointsEntry) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "test_id"}, {Name: "reason"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		// Some dialects still report the conflict instead of swallowing it.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pointsRepository) HasGrant(userID, testID uint, reason string) (bool, error) {
	var count int64
	err := r.db.Model(&model.PointsEntry{}).
		Where("user_id = ? AND test_id = ? AND reason = ?", userID, testID, reason).
		Count(&count).Error
	return count > 0, err
}

func (r *pointsRepository) LifetimeTotal(userID uint) (int, error) {
	var total int
	err := r.db.Model(&model.PointsEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pointsRepository) MonthlyTotal(userID uint, monthKey string) (int, error) {
	var total int
	err := r.db.Model(&model.PointsEntry{}).
		Where("user_id = ? AND period_month = ?", userID, monthKey).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pointsRepository) FindAllByUser(userID uint) ([]model.PointsEntry, error) {
	var entries []model.PointsEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&entries).Error
	return entries, err
}
