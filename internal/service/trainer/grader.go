package trainer

import (
	"strings"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// Grade детерминированно проверяет ответ пользователя против эталона.
// Функция тотальна: отсутствующие поля трактуются как пустые списки, тип вне
// закрытого набора даёт false. Частичных совпадений нет — требуется полное
// поэлементное равенство.
func Grade(exType entity.ExerciseType, target, userAnswer entity.Payload) bool {
	switch exType {
	case entity.TypeRhythm:
		// Ритм сравнивается строго: порядок и точные целые значения
		return equalUnits(target.Units, userAnswer.Units)
	case entity.TypeChord, entity.TypeMelody:
		return equalNormalized(target.Notes, userAnswer.Notes)
	case entity.TypeNote, entity.TypeInterval:
		return equalNormalized(target.Answer, userAnswer.Answer)
	}
	return false
}

// equalNormalized сравнивает последовательности токенов без учёта регистра и
// крайних пробелов, с сохранением порядка и длины
func equalNormalized(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if normalizeToken(a[i]) != normalizeToken(b[i]) {
			return false
		}
	}
	return true
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func equalUnits(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
