package repository

import (
	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// TypeStat — агрегат попыток одного пользователя по одному типу упражнения
type TypeStat struct {
	Type    entity.ExerciseType `json:"type"`
	Total   int64               `json:"total"`
	Correct int64               `json:"correct"`
}

// UserTypeStat — агрегат попыток по паре (пользователь, тип).
// Используется отчётом преподавателя.
type UserTypeStat struct {
	UserID  uint                `json:"user_id"`
	Type    entity.ExerciseType `json:"type"`
	Total   int64               `json:"total"`
	Correct int64               `json:"correct"`
}

// AttemptRepository определяет методы для работы с журналом попыток.
// Журнал append-only: попытки никогда не изменяются и не удаляются.
type AttemptRepository interface {
	// Save добавляет новую попытку в журнал
	Save(attempt *entity.Attempt) error

	// GetLatest возвращает самую свежую попытку пользователя по типу
	// или apperrors.ErrNotFound, если попыток ещё не было
	GetLatest(userID uint, exType entity.ExerciseType) (*entity.Attempt, error)

	// GetRecent возвращает до limit последних попыток пользователя по типу,
	// отсортированных от новых к старым
	GetRecent(userID uint, exType entity.ExerciseType, limit int) ([]entity.Attempt, error)

	// GetBySession возвращает все попытки пользователя по типу в рамках
	// одной сессии, отсортированные от новых к старым
	GetBySession(userID uint, exType entity.ExerciseType, sessionID string) ([]entity.Attempt, error)

	// AggregateByUser возвращает агрегаты total/correct по типам для пользователя
	AggregateByUser(userID uint) ([]TypeStat, error)

	// AggregateByUsers возвращает агрегаты по парам (пользователь, тип)
	// для набора пользователей
	AggregateByUsers(userIDs []uint) ([]UserTypeStat, error)
}
