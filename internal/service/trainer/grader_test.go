package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// ============================================================================
// Тесты для Grade
// ============================================================================

// TestGrade_NoteCaseInsensitive — сравнение ступеней не зависит от регистра
// и крайних пробелов.
func TestGrade_NoteCaseInsensitive(t *testing.T) {
	target := entity.Payload{Answer: []string{"Do"}}

	assert.True(t, Grade(entity.TypeNote, target, entity.Payload{Answer: []string{"do"}}))
	assert.True(t, Grade(entity.TypeNote, target, entity.Payload{Answer: []string{" DO "}}))
	assert.False(t, Grade(entity.TypeNote, target, entity.Payload{Answer: []string{"Re"}}))
}

// TestGrade_IntervalByAnswerField — note/interval сравниваются по полю answer,
// поле notes игнорируется.
func TestGrade_IntervalByAnswerField(t *testing.T) {
	target := entity.Payload{Notes: []string{"C4", "E4"}, Answer: []string{"M3"}}
	user := entity.Payload{Notes: []string{"D4", "F4"}, Answer: []string{"m3"}}

	// Нормализация trim+lower приводит "M3" и "m3" к одному токену
	assert.True(t, Grade(entity.TypeInterval, target, user))
	assert.False(t, Grade(entity.TypeInterval, target, entity.Payload{Answer: []string{"P5"}}))
}

// TestGrade_ChordOrderSensitive — для chord/melody порядок нот важен
func TestGrade_ChordOrderSensitive(t *testing.T) {
	target := entity.Payload{Notes: []string{"C4", "E4", "G4"}}

	assert.True(t, Grade(entity.TypeChord, target, entity.Payload{Notes: []string{"c4", "e4", "g4"}}))
	assert.False(t, Grade(entity.TypeChord, target, entity.Payload{Notes: []string{"E4", "C4", "G4"}}),
		"перестановка голосов должна считаться ошибкой")
	assert.False(t, Grade(entity.TypeChord, target, entity.Payload{Notes: []string{"C4", "E4"}}),
		"частичное совпадение не засчитывается")
}

// TestGrade_RhythmExact — ритм сравнивается строго, без нормализации
func TestGrade_RhythmExact(t *testing.T) {
	target := entity.Payload{Units: []int{4, 4, 4, 4}}

	assert.True(t, Grade(entity.TypeRhythm, target, entity.Payload{Units: []int{4, 4, 4, 4}}))
	assert.False(t, Grade(entity.TypeRhythm, target, entity.Payload{Units: []int{4, 4, 4, 5}}))
	assert.False(t, Grade(entity.TypeRhythm, target, entity.Payload{Units: []int{4, 4, 4}}))
}

// TestGrade_MissingFieldsAsEmpty — отсутствующие поля считаются пустыми
// списками: пустой ответ против непустого эталона неверен, два пустых равны.
func TestGrade_MissingFieldsAsEmpty(t *testing.T) {
	assert.False(t, Grade(entity.TypeMelody, entity.Payload{Notes: []string{"C4"}}, entity.Payload{}))
	assert.True(t, Grade(entity.TypeMelody, entity.Payload{}, entity.Payload{}))
	assert.True(t, Grade(entity.TypeRhythm, entity.Payload{}, entity.Payload{}))
}

// TestGrade_UnknownTypeFalse — тип вне закрытого набора никогда не верен
func TestGrade_UnknownTypeFalse(t *testing.T) {
	p := entity.Payload{Answer: []string{"Do"}}
	assert.False(t, Grade(entity.ExerciseType("solfa"), p, p))
}

// TestGrade_Idempotent — чистая функция: повторные вызовы дают тот же результат
func TestGrade_Idempotent(t *testing.T) {
	target := entity.Payload{Answer: []string{"Sol"}}
	user := entity.Payload{Answer: []string{"sol"}}

	first := Grade(entity.TypeNote, target, user)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Grade(entity.TypeNote, target, user))
	}
}
