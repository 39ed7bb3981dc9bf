package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	"github.com/Abeselom-bb/BatiTone/internal/domain/repository"
	apperrors "github.com/Abeselom-bb/BatiTone/internal/pkg/errors"
	"github.com/Abeselom-bb/BatiTone/internal/service/trainer"
)

// HistoryWindow — сколько последних попыток читается для вычисления уровня
const HistoryWindow = 10

// progressSummaryKey — ключ кеша сводки прогресса пользователя
func progressSummaryKey(userID uint) string {
	return fmt.Sprintf("progress:summary:%d", userID)
}

// ExercisePayload — сгенерированное упражнение для клиента
type ExercisePayload struct {
	Type     entity.ExerciseType `json:"type"`
	Level    int                 `json:"level"`
	Key      string              `json:"key"`
	Notes    []string            `json:"notes,omitempty"`
	Answer   []string            `json:"answer,omitempty"`
	Units    []int               `json:"units,omitempty"`
	Tempo    int                 `json:"tempo,omitempty"`
	Playback string              `json:"playback"`
}

// SubmitAnswerInput — отправка ответа на упражнение
type SubmitAnswerInput struct {
	Type       entity.ExerciseType
	Target     entity.Payload
	UserAnswer entity.Payload
	Playback   string
	Key        string
	Tempo      int
	DurationMs int64
	SessionID  *string
}

// SubmitAnswerResult — результат проверки плюс уровень на следующий вопрос
type SubmitAnswerResult struct {
	IsCorrect bool                   `json:"is_correct"`
	NextLevel int                    `json:"next_level"`
	Session   trainer.SessionOutcome `json:"session"`
}

// ExerciseService реализует цикл упражнения: генерация → проверка → запись
// попытки → вычисление уровня. Уровень пользователя не хранится отдельным
// счётчиком — он каждый раз выводится из журнала попыток.
type ExerciseService struct {
	attemptRepo repository.AttemptRepository
	cacheRepo   repository.CacheRepository
	generator   *trainer.Generator
}

// NewExerciseService создает новый сервис упражнений
func NewExerciseService(
	attemptRepo repository.AttemptRepository,
	cacheRepo repository.CacheRepository,
	generator *trainer.Generator,
) *ExerciseService {
	return &ExerciseService{
		attemptRepo: attemptRepo,
		cacheRepo:   cacheRepo,
		generator:   generator,
	}
}

// NewExercise генерирует упражнение. Для известного пользователя уровень
// всегда читается из журнала, а requestedLevel игнорируется; для анонимного
// вызова используется requestedLevel (по умолчанию 1).
func (s *ExerciseService) NewExercise(userID uint, exType entity.ExerciseType, requestedLevel int) (*ExercisePayload, error) {
	level := requestedLevel
	if userID != 0 {
		current, err := s.currentLevel(userID, exType)
		if err != nil {
			return nil, fmt.Errorf("failed to read current level: %w", err)
		}
		level = current
	} else if level < entity.MinLevel {
		level = entity.MinLevel
	}

	ex := s.generator.Generate(exType, level)

	return &ExercisePayload{
		Type:     exType,
		Level:    level,
		Key:      "C",
		Notes:    ex.Target.Notes,
		Answer:   ex.Target.Answer,
		Units:    ex.Target.Units,
		Tempo:    ex.Tempo,
		Playback: ex.Playback,
	}, nil
}

// StartSession выдаёт идентификатор новой практической сессии. Идентификаторы,
// придуманные клиентом, по-прежнему принимаются при отправке ответов.
func (s *ExerciseService) StartSession() string {
	return uuid.NewString()
}

// SubmitAnswer проверяет ответ, записывает попытку и вычисляет уровень на
// следующий вопрос. При отказе журнала запрос завершается ошибкой целиком:
// частичное обновление уровня не применяется и успех не сообщается.
func (s *ExerciseService) SubmitAnswer(userID uint, in SubmitAnswerInput) (*SubmitAnswerResult, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown exercise type %q", apperrors.ErrValidation, in.Type)
	}

	// Уровень попытки — всегда текущий уровень из журнала, не присланный клиентом
	attemptedLevel, err := s.currentLevel(userID, in.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to read current level: %w", err)
	}

	isCorrect := trainer.Grade(in.Type, in.Target, in.UserAnswer)

	attempt := &entity.Attempt{
		UserID:     userID,
		Type:       in.Type,
		Level:      attemptedLevel,
		SessionID:  normalizeSessionID(in.SessionID),
		Target:     in.Target,
		UserAnswer: in.UserAnswer,
		IsCorrect:  isCorrect,
		DurationMs: in.DurationMs,
		Key:        defaultString(in.Key, "C"),
		Tempo:      defaultInt(in.Tempo, 90),
		Playback:   defaultString(in.Playback, entity.PlaybackMelodic),
	}

	if err := s.attemptRepo.Save(attempt); err != nil {
		log.Printf("[ExerciseService] CRITICAL: Ошибка при сохранении попытки user=#%d type=%s: %v", userID, in.Type, err)
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	// Базовый следующий уровень — по последним 10 попыткам, включая текущую
	recent, err := s.attemptRepo.GetRecent(userID, in.Type, HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}
	nextLevel := trainer.NextLevelFromHistory(recent, attemptedLevel, in.Type)

	// Понижение по сессии (>=40% неверных из 7) переопределяет базовый результат
	sessionInfo := trainer.DefaultSessionOutcome()
	if attempt.SessionID != nil {
		sessionAttempts, err := s.attemptRepo.GetBySession(userID, in.Type, *attempt.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session attempts: %w", err)
		}
		outcome, override, demoted := trainer.EvaluateSession(sessionAttempts, attemptedLevel)
		sessionInfo = outcome
		if demoted {
			nextLevel = override
		}
	}

	s.invalidateSummary(userID)

	log.Printf("[ExerciseService] Попытка записана: user=#%d type=%s level=%d correct=%t next=%d",
		userID, in.Type, attemptedLevel, isCorrect, nextLevel)

	return &SubmitAnswerResult{
		IsCorrect: isCorrect,
		NextLevel: nextLevel,
		Session:   sessionInfo,
	}, nil
}

// RecordAttempt — простая незащищённая запись попытки для страницы свободной
// практики: клиент оценивает ответ сам, уровень не пересчитывается. Записанные
// так попытки видны последующим чтениям истории.
func (s *ExerciseService) RecordAttempt(userID uint, exType entity.ExerciseType, level int, isCorrect bool, target, userAnswer entity.Payload) error {
	if !exType.IsValid() {
		return fmt.Errorf("%w: unknown exercise type %q", apperrors.ErrValidation, exType)
	}
	if level < entity.MinLevel {
		level = entity.MinLevel
	}

	attempt := &entity.Attempt{
		UserID:     userID,
		Type:       exType,
		Level:      level,
		Target:     target,
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		Key:        "C",
		Tempo:      90,
		Playback:   entity.PlaybackMelodic,
	}

	if err := s.attemptRepo.Save(attempt); err != nil {
		log.Printf("[ExerciseService] Ошибка при записи попытки практики user=#%d type=%s: %v", userID, exType, err)
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	s.invalidateSummary(userID)
	return nil
}

// currentLevel возвращает уровень последней попытки пользователя по типу
// или 1, если попыток ещё не было
func (s *ExerciseService) currentLevel(userID uint, exType entity.ExerciseType) (int, error) {
	last, err := s.attemptRepo.GetLatest(userID, exType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entity.MinLevel, nil
		}
		return 0, err
	}
	return last.Level, nil
}

// invalidateSummary сбрасывает кеш сводки прогресса. Попытка уже сохранена,
// поэтому ошибка кеша не фатальна — только логируется.
func (s *ExerciseService) invalidateSummary(userID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(progressSummaryKey(userID)); err != nil {
		log.Printf("[ExerciseService] WARNING: Не удалось сбросить кеш сводки user=#%d: %v", userID, err)
	}
}

func normalizeSessionID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
