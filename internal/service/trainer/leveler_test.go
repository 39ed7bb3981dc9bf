package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// history собирает историю попыток из булевых флагов, от новых к старым
func history(correct ...bool) []entity.Attempt {
	out := make([]entity.Attempt, len(correct))
	for i, c := range correct {
		out[i] = entity.Attempt{IsCorrect: c}
	}
	return out
}

// ============================================================================
// Тесты для NextLevelFromHistory
// ============================================================================

// TestNextLevel_PromoteOnStreak — серия из 3 верных повышает уровень,
// даже если в истории всего 3 попытки.
func TestNextLevel_PromoteOnStreak(t *testing.T) {
	recent := history(true, true, true)
	assert.Equal(t, 4, NextLevelFromHistory(recent, 3, entity.TypeNote))
}

// TestNextLevel_PromoteOnLast5 — 4 верных из ровно 5 последних повышают,
// серия при этом не обязательна.
func TestNextLevel_PromoteOnLast5(t *testing.T) {
	// Новейшая неверна → серия 0, но 4 из 5 верны
	recent := history(false, true, true, true, true)
	assert.Equal(t, 3, NextLevelFromHistory(recent, 2, entity.TypeInterval))
}

// TestNextLevel_Last5RuleNeedsExactlyFive — правило "4 из 5" не применяется,
// пока доступно меньше 5 попыток.
func TestNextLevel_Last5RuleNeedsExactlyFive(t *testing.T) {
	recent := history(false, true, true, true)
	assert.Equal(t, 2, NextLevelFromHistory(recent, 2, entity.TypeNote))
}

// TestNextLevel_PromoteIgnoresTail — сценарий спецификации: новейшие 5 =
// [верно x4, неверно], серия 4 ≥ 3 → повышение независимо от попыток 6–10.
func TestNextLevel_PromoteIgnoresTail(t *testing.T) {
	recent := history(true, true, true, true, false, false, false, false, false, false)
	assert.Equal(t, 6, NextLevelFromHistory(recent, 5, entity.TypeMelody))
}

// TestNextLevel_DemoteOnLowAccuracy — ровно 10 попыток, 3 верных (acc=0.3<0.4),
// серии нет → понижение.
func TestNextLevel_DemoteOnLowAccuracy(t *testing.T) {
	recent := history(false, true, false, false, true, false, false, true, false, false)
	assert.Equal(t, 4, NextLevelFromHistory(recent, 5, entity.TypeNote))
}

// TestNextLevel_NoDemoteUnderTenAttempts — понижение требует ровно 10 попыток
func TestNextLevel_NoDemoteUnderTenAttempts(t *testing.T) {
	recent := history(false, false, false, false, false, false, false, false, false)
	assert.Equal(t, 5, NextLevelFromHistory(recent, 5, entity.TypeNote)) // 9 попыток — без изменений
}

// TestNextLevel_Unchanged — ни одно правило не сработало → уровень прежний
func TestNextLevel_Unchanged(t *testing.T) {
	recent := history(true, false, true, false, true, false, true, false, true, false) // acc = 0.5
	assert.Equal(t, 7, NextLevelFromHistory(recent, 7, entity.TypeChord))
}

// TestNextLevel_PromotionPrecedence — синтетическая история, где формально
// выполняются оба условия: серия из 3 и 10 записей. Повышение проверяется
// первым и должно победить.
func TestNextLevel_PromotionPrecedence(t *testing.T) {
	// 3 верных подряд, затем 7 неверных: acc10 = 0.3 < 0.4, но streak = 3
	recent := history(true, true, true, false, false, false, false, false, false, false)
	assert.Equal(t, 6, NextLevelFromHistory(recent, 5, entity.TypeNote))
}

// TestNextLevel_CapAtTypeMax — повышение ограничено максимумом типа
func TestNextLevel_CapAtTypeMax(t *testing.T) {
	recent := history(true, true, true)

	assert.Equal(t, 10, NextLevelFromHistory(recent, 10, entity.TypeNote))
	assert.Equal(t, 12, NextLevelFromHistory(recent, 12, entity.TypeInterval))
	assert.Equal(t, 20, NextLevelFromHistory(recent, 20, entity.TypeChord))
	assert.Equal(t, 8, NextLevelFromHistory(recent, 8, entity.TypeRhythm))
	// Неизвестный тип использует дефолтный максимум 10
	assert.Equal(t, 10, NextLevelFromHistory(recent, 10, entity.ExerciseType("solfa")))
}

// TestNextLevel_FloorAtOne — понижение никогда не опускает ниже 1
func TestNextLevel_FloorAtOne(t *testing.T) {
	recent := history(false, false, false, false, false, false, false, false, false, false)
	assert.Equal(t, 1, NextLevelFromHistory(recent, 1, entity.TypeNote))
}

// TestNextLevel_EmptyHistory — пустая история ничего не меняет
func TestNextLevel_EmptyHistory(t *testing.T) {
	assert.Equal(t, 3, NextLevelFromHistory(nil, 3, entity.TypeNote))
}

// TestNextLevel_BoundsInvariant — для любых последовательностей переходов
// уровень остаётся в [1, max(type)].
func TestNextLevel_BoundsInvariant(t *testing.T) {
	patterns := [][]entity.Attempt{
		history(true, true, true, true, true, true, true, true, true, true),
		history(false, false, false, false, false, false, false, false, false, false),
		history(true, false, true, true, true, false, false, true, false, false),
	}

	for _, exType := range entity.AllExerciseTypes() {
		level := 1
		for step := 0; step < 50; step++ {
			level = NextLevelFromHistory(patterns[step%len(patterns)], level, exType)
			assert.GreaterOrEqual(t, level, entity.MinLevel)
			assert.LessOrEqual(t, level, exType.MaxLevel())
		}
	}
}
