package trainer

import (
	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// Параметры переходов между уровнями
const (
	// PromoteStreak — серия подряд верных ответов, достаточная для повышения
	PromoteStreak = 3

	// Last5Window и PromoteLast5Correct — правило "4 из 5": повышение при 4+
	// верных среди последних 5, применяется только когда доступны ровно 5
	Last5Window         = 5
	PromoteLast5Correct = 4

	// DemoteWindow и DemoteAccuracy — понижение при точности ниже 40% на окне
	// из ровно 10 последних попыток
	DemoteWindow   = 10
	DemoteAccuracy = 0.4
)

// NextLevelFromHistory вычисляет уровень для следующего упражнения по
// хронологии последних попыток (от новых к старым, включая только что
// оценённую, не более 10 штук).
//
// Повышение проверяется раньше понижения; одновременно оба правила сработать
// не могут — серия или почти безошибочная пятёрка несовместимы с точностью
// ниже 40% на десяти. Менее трёх попыток в истории никогда не понижают, но
// могут повысить при серии из трёх.
func NextLevelFromHistory(recent []entity.Attempt, prevLevel int, exType entity.ExerciseType) int {
	maxLevel := exType.MaxLevel()

	last5 := recent
	if len(last5) > Last5Window {
		last5 = recent[:Last5Window]
	}
	last5Correct := 0
	for _, a := range last5 {
		if a.IsCorrect {
			last5Correct++
		}
	}

	acc10 := 0.0
	if len(recent) > 0 {
		correct := 0
		for _, a := range recent {
			if a.IsCorrect {
				correct++
			}
		}
		acc10 = float64(correct) / float64(len(recent))
	}

	// Серия подряд верных, начиная с самой свежей попытки
	streak := 0
	for _, a := range recent {
		if !a.IsCorrect {
			break
		}
		streak++
	}

	next := prevLevel
	if streak >= PromoteStreak || (len(last5) == Last5Window && last5Correct >= PromoteLast5Correct) {
		next = prevLevel + 1
		if next > maxLevel {
			next = maxLevel
		}
	} else if len(recent) == DemoteWindow && acc10 < DemoteAccuracy {
		next = prevLevel - 1
		if next < entity.MinLevel {
			next = entity.MinLevel
		}
	}
	return next
}
