package entity

// ExerciseType — тип упражнения слухового тренажёра.
// Набор типов закрыт: новые типы добавляются расширением констант,
// без динамической регистрации.
type ExerciseType string

const (
	TypeNote     ExerciseType = "note"
	TypeInterval ExerciseType = "interval"
	TypeChord    ExerciseType = "chord"
	TypeRhythm   ExerciseType = "rhythm"
	TypeMelody   ExerciseType = "melody"
)

// MinLevel — глобальный нижний предел уровня для всех типов
const MinLevel = 1

// DefaultMaxLevel — верхний предел уровня для типов, не перечисленных в maxLevelByType
const DefaultMaxLevel = 10

// maxLevelByType — верхний предел уровня по типам упражнений
var maxLevelByType = map[ExerciseType]int{
	TypeNote:     10,
	TypeInterval: 12,
	TypeMelody:   15,
	TypeChord:    20,
	TypeRhythm:   8,
}

// AllExerciseTypes возвращает все известные типы в фиксированном порядке
func AllExerciseTypes() []ExerciseType {
	return []ExerciseType{TypeNote, TypeInterval, TypeMelody, TypeChord, TypeRhythm}
}

// IsValid проверяет, принадлежит ли тип закрытому набору
func (t ExerciseType) IsValid() bool {
	switch t {
	case TypeNote, TypeInterval, TypeChord, TypeRhythm, TypeMelody:
		return true
	}
	return false
}

// MaxLevel возвращает верхний предел уровня для типа
func (t ExerciseType) MaxLevel() int {
	if max, ok := maxLevelByType[t]; ok {
		return max
	}
	return DefaultMaxLevel
}

// ClampLevel приводит уровень в допустимый диапазон [MinLevel, MaxLevel]
func (t ExerciseType) ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if max := t.MaxLevel(); level > max {
		return max
	}
	return level
}
