package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	"github.com/Abeselom-bb/BatiTone/internal/domain/repository"
	apperrors "github.com/Abeselom-bb/BatiTone/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий журнала попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Save добавляет новую попытку. Журнал append-only: обновлений и удалений нет.
func (r *AttemptRepo) Save(attempt *entity.Attempt) error {
	return r.db.Create(attempt).Error
}

// GetLatest возвращает самую свежую попытку пользователя по типу
func (r *AttemptRepo) GetLatest(userID uint, exType entity.ExerciseType) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.
		Where("user_id = ? AND type = ?", userID, exType).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetRecent возвращает до limit последних попыток, от новых к старым
func (r *AttemptRepo) GetRecent(userID uint, exType entity.ExerciseType, limit int) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.
		Where("user_id = ? AND type = ?", userID, exType).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// GetBySession возвращает все попытки сессии, от новых к старым
func (r *AttemptRepo) GetBySession(userID uint, exType entity.ExerciseType, sessionID string) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.
		Where("user_id = ? AND type = ? AND session_id = ?", userID, exType, sessionID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// AggregateByUser возвращает агрегаты total/correct по типам для пользователя
func (r *AttemptRepo) AggregateByUser(userID uint) ([]repository.TypeStat, error) {
	var stats []repository.TypeStat
	err := r.db.Model(&entity.Attempt{}).
		Select("type, COUNT(*) AS total, COUNT(*) FILTER (WHERE is_correct) AS correct").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AggregateByUsers возвращает агрегаты по парам (пользователь, тип)
func (r *AttemptRepo) AggregateByUsers(userIDs []uint) ([]repository.UserTypeStat, error) {
	var stats []repository.UserTypeStat
	if len(userIDs) == 0 {
		return stats, nil
	}
	err := r.db.Model(&entity.Attempt{}).
		Select("user_id, type, COUNT(*) AS total, COUNT(*) FILTER (WHERE is_correct) AS correct").
		Where("user_id IN ?", userIDs).
		Group("user_id, type").
		Order("user_id, type").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
