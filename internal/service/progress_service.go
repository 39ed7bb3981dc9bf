package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
	"github.com/Abeselom-bb/BatiTone/internal/domain/repository"
	apperrors "github.com/Abeselom-bb/BatiTone/internal/pkg/errors"
)

// summaryCacheTTL — время жизни кеша сводки; кеш дополнительно сбрасывается
// при каждой новой попытке
const summaryCacheTTL = time.Minute

// TypeProgress — накопленная статистика по одному типу упражнения
type TypeProgress struct {
	Total    int64 `json:"total"`
	Correct  int64 `json:"correct"`
	Accuracy int   `json:"accuracy"` // округлённый процент
}

// ProgressSummary — сводка прогресса одного пользователя
type ProgressSummary struct {
	Total    int64                                `json:"total"`
	Accuracy int                                  `json:"accuracy"`
	ByType   map[entity.ExerciseType]TypeProgress `json:"by_type"`
	Levels   map[entity.ExerciseType]int          `json:"levels"`
}

// ReportMember — участник отчёта преподавателя
type ReportMember struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ClassReport — агрегаты попыток по парам (пользователь, тип); интерфейс,
// который потребляет преподавательский дашборд
type ClassReport struct {
	Members []ReportMember                                `json:"members"`
	ByUser  map[uint]map[entity.ExerciseType]TypeProgress `json:"by_user"`
}

// ProgressService считает сводки и отчёты по журналу попыток
type ProgressService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
}

// NewProgressService создает новый сервис прогресса
func NewProgressService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *ProgressService {
	return &ProgressService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
	}
}

// Summary возвращает сводку прогресса пользователя: totals и точность по
// типам плюс текущий уровень каждого типа (уровень последней попытки или 1).
func (s *ProgressService) Summary(userID uint) (*ProgressSummary, error) {
	cacheKey := progressSummaryKey(userID)

	if s.cacheRepo != nil {
		var cached ProgressSummary
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[ProgressService] WARNING: Ошибка кеша при чтении сводки user=#%d: %v", userID, err)
		}
	}

	stats, err := s.attemptRepo.AggregateByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attempts: %w", err)
	}

	summary := &ProgressSummary{
		ByType: make(map[entity.ExerciseType]TypeProgress, len(stats)),
		Levels: make(map[entity.ExerciseType]int, len(entity.AllExerciseTypes())),
	}

	var correctTotal int64
	for _, st := range stats {
		summary.ByType[st.Type] = TypeProgress{
			Total:    st.Total,
			Correct:  st.Correct,
			Accuracy: roundPercent(st.Correct, st.Total),
		}
		summary.Total += st.Total
		correctTotal += st.Correct
	}
	summary.Accuracy = roundPercent(correctTotal, summary.Total)

	// Текущий уровень по каждому типу выводится из последней попытки
	for _, exType := range entity.AllExerciseTypes() {
		last, err := s.attemptRepo.GetLatest(userID, exType)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				summary.Levels[exType] = entity.MinLevel
				continue
			}
			return nil, fmt.Errorf("failed to read level for %s: %w", exType, err)
		}
		summary.Levels[exType] = last.Level
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, summary, summaryCacheTTL); err != nil {
			log.Printf("[ProgressService] WARNING: Не удалось закешировать сводку user=#%d: %v", userID, err)
		}
	}

	log.Printf("[ProgressService] Сводка готова: user=#%d total=%d accuracy=%d%%", userID, summary.Total, summary.Accuracy)
	return summary, nil
}

// Report возвращает агрегаты попыток по парам (пользователь, тип) для набора
// пользователей
func (s *ProgressService) Report(userIDs []uint) (*ClassReport, error) {
	users, err := s.userRepo.GetByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load report members: %w", err)
	}

	stats, err := s.attemptRepo.AggregateByUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attempts: %w", err)
	}

	report := &ClassReport{
		Members: make([]ReportMember, 0, len(users)),
		ByUser:  make(map[uint]map[entity.ExerciseType]TypeProgress),
	}
	for _, u := range users {
		report.Members = append(report.Members, ReportMember{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	for _, st := range stats {
		if report.ByUser[st.UserID] == nil {
			report.ByUser[st.UserID] = make(map[entity.ExerciseType]TypeProgress)
		}
		report.ByUser[st.UserID][st.Type] = TypeProgress{
			Total:    st.Total,
			Correct:  st.Correct,
			Accuracy: roundPercent(st.Correct, st.Total),
		}
	}

	return report, nil
}

// ExportXLSX формирует отчёт в виде книги Excel
func (s *ProgressService) ExportXLSX(userIDs []uint) (*excelize.File, error) {
	report, err := s.Report(userIDs)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"User ID", "Name", "Email", "Exercise", "Total", "Correct", "Accuracy %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, member := range report.Members {
		for _, exType := range entity.AllExerciseTypes() {
			tp, ok := report.ByUser[member.ID][exType]
			if !ok {
				continue
			}
			values := []interface{}{member.ID, member.Name, member.Email, string(exType), tp.Total, tp.Correct, tp.Accuracy}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	return f, nil
}

// roundPercent — округлённый процент correct/total; 0 при пустом журнале
func roundPercent(correct, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
