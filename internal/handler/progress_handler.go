package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abeselom-bb/BatiTone/internal/service"
)

// ProgressHandler обрабатывает запросы прогресса и отчётов
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler создает новый обработчик прогресса
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// parseUserIDs разбирает query-параметр user_ids ("1,2,3") в список ID
func parseUserIDs(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("user_ids is required")
	}
	parts := strings.Split(raw, ",")
	if len(parts) > 200 {
		return nil, fmt.Errorf("too many user_ids (max 200)")
	}
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid user id %q", p)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// Summary возвращает сводку прогресса текущего пользователя.
// GET /api/progress/summary
func (h *ProgressHandler) Summary(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	summary, err := h.progressService.Summary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build progress summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Report возвращает сводный отчёт по списку учеников. Только для преподавателей.
// GET /api/progress/report?user_ids=1,2,3
func (h *ProgressHandler) Report(c *gin.Context) {
	ids, err := parseUserIDs(c.Query("user_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
		return
	}

	report, err := h.progressService.Report(ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Export выгружает отчёт по группе учеников в формате XLSX. Только для преподавателей.
// GET /api/progress/export?user_ids=1,2,3
func (h *ProgressHandler) Export(c *gin.Context) {
	ids, err := parseUserIDs(c.Query("user_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
		return
	}

	file, err := h.progressService.ExportXLSX(ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("progress-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		// Заголовки уже ушли клиенту, остаётся только залогировать
		log.Printf("[ProgressHandler] Ошибка записи XLSX в ответ: %v", err)
	}
}
