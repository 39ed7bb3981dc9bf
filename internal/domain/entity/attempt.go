package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Playback-режимы воспроизведения упражнения
const (
	PlaybackMelodic  = "melodic"
	PlaybackHarmonic = "harmonic"
)

// Payload — содержимое одного упражнения: эталон или ответ пользователя.
// Форма зависит от типа упражнения:
//
//	note/interval — поле Answer (названия ступеней/интервалов)
//	chord/melody  — поле Notes (питчи, например "C4")
//	rhythm        — поле Units (длительности в шестнадцатых, 16 на такт)
//
// Хранится в JSONB; отсутствующие поля трактуются как пустые списки.
type Payload struct {
	Notes  []string `json:"notes,omitempty"`
	Answer []string `json:"answer,omitempty"`
	Units  []int    `json:"units,omitempty"`
}

// Scan реализует интерфейс sql.Scanner для Payload
// Используется GORM для чтения JSONB данных из базы
func (p *Payload) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*p = Payload{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*p = Payload{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Value реализует интерфейс driver.Valuer для Payload
// Используется GORM для записи Payload в JSONB в базе
func (p Payload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// IsEmpty возвращает true, если полезная нагрузка не содержит ни одного поля
func (p Payload) IsEmpty() bool {
	return len(p.Notes) == 0 && len(p.Answer) == 0 && len(p.Units) == 0
}

// Attempt — одна попытка ответа на упражнение. Запись создаётся ровно один
// раз при отправке ответа и после этого не изменяется; уровень пользователя
// всегда вычисляется заново из журнала попыток, а не хранится отдельно.
type Attempt struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UserID     uint         `gorm:"not null;index:idx_attempts_user_type_created" json:"user_id"`
	Type       ExerciseType `gorm:"size:16;not null;index:idx_attempts_user_type_created" json:"type"`
	Level      int          `gorm:"not null;default:1" json:"level"`
	SessionID  *string      `gorm:"size:64;index:idx_attempts_user_type_session" json:"session_id,omitempty"`
	Target     Payload      `gorm:"type:jsonb;not null" json:"target"`
	UserAnswer Payload      `gorm:"type:jsonb;not null" json:"user_answer"`
	IsCorrect  bool         `gorm:"not null;default:false" json:"is_correct"`
	DurationMs int64        `gorm:"not null;default:0" json:"duration_ms"`
	Key        string       `gorm:"size:8;not null;default:'C'" json:"key"`
	Tempo      int          `gorm:"not null;default:90" json:"tempo"`
	Playback   string       `gorm:"size:16;not null;default:'melodic'" json:"playback"`
	CreatedAt  time.Time    `gorm:"index:idx_attempts_user_type_created,sort:desc" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}
