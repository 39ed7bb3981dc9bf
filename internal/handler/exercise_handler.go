package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	"github.com/Abeselom-bb/BatiTone/internal/service"
	"github.com/Abeselom-bb/BatiTone/internal/service/trainer"
)

// ExerciseHandler обрабатывает цикл упражнения: генерация, сессии, ответы
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

// NewExerciseHandler создает новый обработчик упражнений
func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// SubmitAnswerRequest представляет отправку ответа на упражнение
type SubmitAnswerRequest struct {
	Type       string         `json:"type" binding:"required"`
	Target     entity.Payload `json:"target"`
	UserAnswer entity.Payload `json:"user_answer"`
	Playback   string         `json:"playback" binding:"omitempty,oneof=melodic harmonic"`
	Key        string         `json:"key" binding:"omitempty,max=8"`
	Tempo      int            `json:"tempo" binding:"omitempty,min=1,max=400"`
	DurationMs int64          `json:"duration_ms" binding:"omitempty,min=0"`
	SessionID  *string        `json:"session_id"`
}

// RecordAttemptRequest представляет прямую запись попытки без вычисления уровня
type RecordAttemptRequest struct {
	Type       string         `json:"type" binding:"required"`
	Level      int            `json:"level" binding:"required,min=1"`
	IsCorrect  bool           `json:"is_correct"`
	Target     entity.Payload `json:"target"`
	UserAnswer entity.Payload `json:"user_answer"`
}

// userIDFromContext возвращает ID пользователя или 0 для анонимного запроса
func userIDFromContext(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		return v.(uint)
	}
	return 0
}

// NewExercise генерирует новое упражнение.
// GET /api/exercises/new?type=interval&level=3
// Для аутентифицированного пользователя level игнорируется: уровень
// выводится из его журнала попыток.
func (h *ExerciseHandler) NewExercise(c *gin.Context) {
	exType := entity.ExerciseType(c.Query("type"))
	if !exType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown exercise type", "error_type": "validation"})
		return
	}

	level := 1
	if raw := c.Query("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Level must be an integer", "error_type": "validation"})
			return
		}
		level = parsed
	}

	payload, err := h.exerciseService.NewExercise(userIDFromContext(c), exType, level)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate exercise"})
		return
	}

	c.JSON(http.StatusOK, payload)
}

// StartSession выдаёт идентификатор новой практической сессии.
// POST /api/exercises/session
func (h *ExerciseHandler) StartSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{
		"session_id": h.exerciseService.StartSession(),
		"total":      trainer.SessionTotal,
	})
}

// SubmitAnswer проверяет ответ и записывает попытку.
// POST /api/exercises/answer
func (h *ExerciseHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	result, err := h.exerciseService.SubmitAnswer(userID, service.SubmitAnswerInput{
		Type:       entity.ExerciseType(req.Type),
		Target:     req.Target,
		UserAnswer: req.UserAnswer,
		Playback:   req.Playback,
		Key:        req.Key,
		Tempo:      req.Tempo,
		DurationMs: req.DurationMs,
		SessionID:  req.SessionID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecordAttempt записывает попытку напрямую, без проверки ответа и без
// пересчёта уровня. Используется клиентом для упражнений в свободном режиме.
// POST /api/exercises/attempt
func (h *ExerciseHandler) RecordAttempt(c *gin.Context) {
	var req RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	exType := entity.ExerciseType(req.Type)
	if err := h.exerciseService.RecordAttempt(userID, exType, req.Level, req.IsCorrect, req.Target, req.UserAnswer); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true})
}
