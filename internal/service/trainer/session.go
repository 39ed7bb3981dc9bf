package trainer

import (
	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// Параметры практической сессии
const (
	// SessionTotal — фиксированная длина сессии в вопросах
	SessionTotal = 7

	// DemoteWrongCount — порог неверных ответов за сессию, ceil(0.4 * SessionTotal)
	DemoteWrongCount = (2*SessionTotal + 4) / 5
)

// SessionOutcome — состояние сессии после текущей попытки
type SessionOutcome struct {
	// Index — сколько попыток сессии уже сделано, включая текущую
	Index int `json:"index"`

	// Total — фиксированная длина сессии
	Total int `json:"total"`

	// WillDemoteNext — информационный флаг для клиента: остался один вопрос,
	// и неверный ответ на него достигнет порога понижения
	WillDemoteNext bool `json:"will_demote_next"`
}

// DefaultSessionOutcome — результат для попытки вне сессии
func DefaultSessionOutcome() SessionOutcome {
	return SessionOutcome{Index: 1, Total: SessionTotal, WillDemoteNext: false}
}

// EvaluateSession вычисляет состояние сессии и, при достижении порога,
// принудительный уровень на следующий вопрос.
//
// Жёсткое переопределение: как только в сессии index >= SessionTotal и
// wrong >= DemoteWrongCount, следующий уровень принудительно равен
// max(1, attemptedLevel-1) независимо от того, что решила история последних
// десяти попыток. Проверка пересчитывается на каждой попытке, поэтому лишние
// попытки под тем же идентификатором после завершения сессии повторно
// срабатывают на понижение.
func EvaluateSession(sessionAttempts []entity.Attempt, attemptedLevel int) (SessionOutcome, int, bool) {
	n := len(sessionAttempts)
	wrong := 0
	for _, a := range sessionAttempts {
		if !a.IsCorrect {
			wrong++
		}
	}

	outcome := SessionOutcome{
		Index: n,
		Total: SessionTotal,
		// Следующий промах привёл бы к понижению
		WillDemoteNext: (SessionTotal-n == 1) && (wrong+1 >= DemoteWrongCount),
	}

	if n >= SessionTotal && wrong >= DemoteWrongCount {
		override := attemptedLevel - 1
		if override < entity.MinLevel {
			override = entity.MinLevel
		}
		return outcome, override, true
	}

	return outcome, 0, false
}
