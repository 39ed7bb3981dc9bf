package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	apperrors "github.com/Abeselom-bb/BatiTone/internal/pkg/errors"
	"github.com/Abeselom-bb/BatiTone/internal/service/trainer"
)

// ============================================================================
// Вспомогательные функции
// ============================================================================

func newTestExerciseService(attemptRepo *MockAttemptRepository, cacheRepo *MockCacheRepository) *ExerciseService {
	return NewExerciseService(attemptRepo, cacheRepo, trainer.NewGenerator(nil))
}

// attemptsAt строит историю попыток с одинаковым уровнем
func attemptsAt(level int, correct ...bool) []entity.Attempt {
	out := make([]entity.Attempt, 0, len(correct))
	for _, c := range correct {
		out = append(out, entity.Attempt{Level: level, IsCorrect: c})
	}
	return out
}

// ============================================================================
// NewExercise
// ============================================================================

// TestNewExercise_AnonymousUsesRequestedLevel проверяет, что для анонимного
// запроса уровень берётся из параметра
func TestNewExercise_AnonymousUsesRequestedLevel(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	payload, err := svc.NewExercise(0, entity.TypeInterval, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, payload.Level)
	assert.Equal(t, entity.TypeInterval, payload.Type)
	// Журнал попыток не читается
	attemptRepo.AssertNotCalled(t, "GetLatest", mock.Anything, mock.Anything)
}

// TestNewExercise_AnonymousLevelFloor: запрошенный уровень ниже 1 поднимается до 1
func TestNewExercise_AnonymousLevelFloor(t *testing.T) {
	svc := newTestExerciseService(new(MockAttemptRepository), new(MockCacheRepository))

	payload, err := svc.NewExercise(0, entity.TypeNote, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, payload.Level)
}

// TestNewExercise_KnownUserIgnoresRequestedLevel: уровень аутентифицированного
// пользователя всегда читается из журнала
func TestNewExercise_KnownUserIgnoresRequestedLevel(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newTestExerciseService(attemptRepo, new(MockCacheRepository))

	attemptRepo.On("GetLatest", uint(42), entity.TypeChord).
		Return(&entity.Attempt{Level: 6}, nil)

	payload, err := svc.NewExercise(42, entity.TypeChord, 15)

	require.NoError(t, err)
	assert.Equal(t, 6, payload.Level)
	attemptRepo.AssertExpectations(t)
}

// TestNewExercise_KnownUserWithoutHistory: без попыток уровень равен 1
func TestNewExercise_KnownUserWithoutHistory(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newTestExerciseService(attemptRepo, new(MockCacheRepository))

	attemptRepo.On("GetLatest", uint(42), entity.TypeMelody).
		Return(nil, apperrors.ErrNotFound)

	payload, err := svc.NewExercise(42, entity.TypeMelody, 9)

	require.NoError(t, err)
	assert.Equal(t, 1, payload.Level)
}

// ============================================================================
// SubmitAnswer
// ============================================================================

// TestSubmitAnswer_CorrectAnswerRecorded: верный ответ записывается с уровнем
// из журнала, а не с присланным клиентом
func TestSubmitAnswer_CorrectAnswerRecorded(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	attemptRepo.On("GetLatest", uint(7), entity.TypeInterval).
		Return(&entity.Attempt{Level: 4}, nil)

	var saved *entity.Attempt
	attemptRepo.On("Save", mock.AnythingOfType("*entity.Attempt")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*entity.Attempt) }).
		Return(nil)

	attemptRepo.On("GetRecent", uint(7), entity.TypeInterval, HistoryWindow).
		Return(attemptsAt(4, true), nil)

	cacheRepo.On("Delete", progressSummaryKey(7)).Return(nil)

	result, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeInterval,
		Target:     entity.Payload{Answer: []string{"P5"}},
		UserAnswer: entity.Payload{Answer: []string{"p5"}},
	})

	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 4, result.NextLevel)

	require.NotNil(t, saved)
	assert.Equal(t, 4, saved.Level)
	assert.True(t, saved.IsCorrect)
	assert.Nil(t, saved.SessionID)
	// Значения по умолчанию для незаполненных полей
	assert.Equal(t, "C", saved.Key)
	assert.Equal(t, 90, saved.Tempo)
	assert.Equal(t, entity.PlaybackMelodic, saved.Playback)

	cacheRepo.AssertCalled(t, "Delete", progressSummaryKey(7))
}

// TestSubmitAnswer_UnknownType: неизвестный тип отклоняется до любых записей
func TestSubmitAnswer_UnknownType(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newTestExerciseService(attemptRepo, new(MockCacheRepository))

	_, err := svc.SubmitAnswer(7, SubmitAnswerInput{Type: "scales"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	attemptRepo.AssertNotCalled(t, "Save", mock.Anything)
}

// TestSubmitAnswer_StoreFailure: при отказе журнала ответ не сообщается как
// записанный и уровень не пересчитывается
func TestSubmitAnswer_StoreFailure(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newTestExerciseService(attemptRepo, new(MockCacheRepository))

	attemptRepo.On("GetLatest", uint(7), entity.TypeNote).
		Return(nil, apperrors.ErrNotFound)
	attemptRepo.On("Save", mock.Anything).Return(errors.New("connection refused"))

	_, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeNote,
		Target:     entity.Payload{Answer: []string{"Do"}},
		UserAnswer: entity.Payload{Answer: []string{"Do"}},
	})

	require.Error(t, err)
	attemptRepo.AssertNotCalled(t, "GetRecent", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitAnswer_PromotionAfterStreak: три верных подряд повышают уровень
func TestSubmitAnswer_PromotionAfterStreak(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	attemptRepo.On("GetLatest", uint(7), entity.TypeNote).
		Return(&entity.Attempt{Level: 2}, nil)
	attemptRepo.On("Save", mock.Anything).Return(nil)
	// Последние попытки от новых к старым: текущая плюс две верных
	attemptRepo.On("GetRecent", uint(7), entity.TypeNote, HistoryWindow).
		Return(attemptsAt(2, true, true, true), nil)
	cacheRepo.On("Delete", mock.Anything).Return(nil)

	result, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeNote,
		Target:     entity.Payload{Answer: []string{"Mi"}},
		UserAnswer: entity.Payload{Answer: []string{"Mi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.NextLevel)
}

// TestSubmitAnswer_SessionDemotionOverride: завершённая сессия с тремя
// промахами принудительно понижает уровень, что бы ни решила история
func TestSubmitAnswer_SessionDemotionOverride(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	sessionID := "sess-1"

	attemptRepo.On("GetLatest", uint(7), entity.TypeRhythm).
		Return(&entity.Attempt{Level: 5}, nil)
	attemptRepo.On("Save", mock.Anything).Return(nil)
	// История сама по себе уровень не трогает
	attemptRepo.On("GetRecent", uint(7), entity.TypeRhythm, HistoryWindow).
		Return(attemptsAt(5, false, true, true, false, true, true, false), nil)
	// Сессия завершена: 7 попыток, из них 3 неверных
	attemptRepo.On("GetBySession", uint(7), entity.TypeRhythm, sessionID).
		Return(attemptsAt(5, false, true, true, false, true, true, false), nil)
	cacheRepo.On("Delete", mock.Anything).Return(nil)

	result, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeRhythm,
		Target:     entity.Payload{Units: []int{4, 4, 4, 4}},
		UserAnswer: entity.Payload{Units: []int{4, 4, 4, 2}},
		SessionID:  &sessionID,
	})

	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 4, result.NextLevel)
	assert.Equal(t, 7, result.Session.Index)
	assert.Equal(t, trainer.SessionTotal, result.Session.Total)
}

// TestSubmitAnswer_EmptySessionIDTreatedAsNone: пустая строка идентификатора
// сессии равносильна его отсутствию
func TestSubmitAnswer_EmptySessionIDTreatedAsNone(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	empty := ""

	attemptRepo.On("GetLatest", uint(7), entity.TypeNote).
		Return(nil, apperrors.ErrNotFound)
	attemptRepo.On("Save", mock.Anything).Return(nil)
	attemptRepo.On("GetRecent", uint(7), entity.TypeNote, HistoryWindow).
		Return(attemptsAt(1, true), nil)
	cacheRepo.On("Delete", mock.Anything).Return(nil)

	result, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeNote,
		Target:     entity.Payload{Answer: []string{"Do"}},
		UserAnswer: entity.Payload{Answer: []string{"Do"}},
		SessionID:  &empty,
	})

	require.NoError(t, err)
	assert.Equal(t, trainer.DefaultSessionOutcome(), result.Session)
	attemptRepo.AssertNotCalled(t, "GetBySession", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitAnswer_CacheFailureIsNotFatal: ошибка сброса кеша не ломает ответ
func TestSubmitAnswer_CacheFailureIsNotFatal(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	attemptRepo.On("GetLatest", uint(7), entity.TypeNote).
		Return(nil, apperrors.ErrNotFound)
	attemptRepo.On("Save", mock.Anything).Return(nil)
	attemptRepo.On("GetRecent", uint(7), entity.TypeNote, HistoryWindow).
		Return(attemptsAt(1, true), nil)
	cacheRepo.On("Delete", mock.Anything).Return(errors.New("redis down"))

	result, err := svc.SubmitAnswer(7, SubmitAnswerInput{
		Type:       entity.TypeNote,
		Target:     entity.Payload{Answer: []string{"Do"}},
		UserAnswer: entity.Payload{Answer: []string{"Do"}},
	})

	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
}

// ============================================================================
// RecordAttempt
// ============================================================================

// TestRecordAttempt_SavesWithoutLeveling: свободная практика пишет попытку
// как есть и не читает историю
func TestRecordAttempt_SavesWithoutLeveling(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	cacheRepo := new(MockCacheRepository)
	svc := newTestExerciseService(attemptRepo, cacheRepo)

	var saved *entity.Attempt
	attemptRepo.On("Save", mock.AnythingOfType("*entity.Attempt")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*entity.Attempt) }).
		Return(nil)
	cacheRepo.On("Delete", mock.Anything).Return(nil)

	err := svc.RecordAttempt(9, entity.TypeMelody, 3, false,
		entity.Payload{Notes: []string{"C4", "D4", "E4"}},
		entity.Payload{Notes: []string{"C4", "D4", "F4"}})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 3, saved.Level)
	assert.False(t, saved.IsCorrect)

	attemptRepo.AssertNotCalled(t, "GetLatest", mock.Anything, mock.Anything)
	attemptRepo.AssertNotCalled(t, "GetRecent", mock.Anything, mock.Anything, mock.Anything)
}

// TestRecordAttempt_UnknownType отклоняется без записи
func TestRecordAttempt_UnknownType(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newTestExerciseService(attemptRepo, new(MockCacheRepository))

	err := svc.RecordAttempt(9, "harmony", 1, true, entity.Payload{}, entity.Payload{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	attemptRepo.AssertNotCalled(t, "Save", mock.Anything)
}

// ============================================================================
// StartSession
// ============================================================================

// TestStartSession_UniqueIDs: каждая сессия получает новый идентификатор
func TestStartSession_UniqueIDs(t *testing.T) {
	svc := newTestExerciseService(new(MockAttemptRepository), new(MockCacheRepository))

	first := svc.StartSession()
	second := svc.StartSession()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
