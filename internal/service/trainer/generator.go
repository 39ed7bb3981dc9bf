package trainer

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Abeselom-bb/BatiTone/internal/domain/entity"
)

// Source — источник случайности генератора. Выделен в интерфейс, чтобы тесты
// могли подставить детерминированную последовательность.
type Source interface {
	Intn(n int) int
}

// Solfege — фиксированный 7-ступенный словарь до-мажора
var Solfege = []string{"Do", "Re", "Mi", "Fa", "Sol", "La", "Ti"}

// pitchByDegree — фиксированное отображение ступень → питч (одна октава, C major)
var pitchByDegree = map[string]string{
	"Do": "C4", "Re": "D4", "Mi": "E4", "Fa": "F4",
	"Sol": "G4", "La": "A4", "Ti": "B4",
}

// degreeByPitch — обратное отображение питч → ступень
var degreeByPitch = func() map[string]string {
	inv := make(map[string]string, len(pitchByDegree))
	for deg, pitch := range pitchByDegree {
		inv[pitch] = deg
	}
	return inv
}()

// diatonicPitches — питчи словаря в порядке ступеней (C4..B4)
var diatonicPitches = func() []string {
	out := make([]string, len(Solfege))
	for i, deg := range Solfege {
		out[i] = pitchByDegree[deg]
	}
	return out
}()

// pitchClasses — 12-тоновая равномерная темперация, порядок классов высоты
var pitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// intervalSemitones — полутоновое расстояние каждого качества интервала
var intervalSemitones = map[string]int{
	"m2": 1, "M2": 2, "m3": 3, "M3": 4, "P4": 5, "TT": 6,
	"P5": 7, "m6": 8, "M6": 9, "m7": 10, "M7": 11, "P8": 12,
}

// intervalSetByLevel — растущие наборы качеств интервалов по уровням.
// Каждый следующий набор включает предыдущий; уровни выше 5 используют набор
// пятого уровня.
var intervalSetByLevel = [][]string{
	{"m2", "M2"},
	{"m2", "M2", "m3", "M3"},
	{"m2", "M2", "m3", "M3", "P4", "P5"},
	{"m2", "M2", "m3", "M3", "P4", "P5", "m6", "M6"},
	{"m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"},
}

// chordSetByLevel — наборы качеств аккордов по уровням (трезвучия → септаккорды
// → альтерированные доминанты)
var chordSetByLevel = [][]string{
	{"maj", "min"},
	{"maj", "min", "dim", "aug"},
	{"maj7", "7", "min7"},
	{"maj7", "7", "min7", "m7b5"},
	{"maj7", "7b9", "7#9", "7#5", "7b5"},
}

// chordStacks — стеки полутоновых смещений от основного тона для каждого качества
var chordStacks = map[string][]int{
	"maj": {0, 4, 7}, "min": {0, 3, 7}, "dim": {0, 3, 6}, "aug": {0, 4, 8},
	"7": {0, 4, 7, 10}, "maj7": {0, 4, 7, 11}, "min7": {0, 3, 7, 10}, "m7b5": {0, 3, 6, 10},
	"7b9": {0, 4, 7, 10, 13}, "7#9": {0, 4, 7, 10, 15}, "7#5": {0, 4, 8, 10}, "7b5": {0, 4, 6, 10},
}

// rhythmPatternByLevel — однотактовые паттерны в шестнадцатых долях (4/4, 16 долей
// на такт). Нулевая длительность на четвёртом уровне — явный маркер паузы.
var rhythmPatternByLevel = [][]int{
	{4, 4, 4, 4},          // L1: четверти
	{2, 2, 2, 2, 2, 2, 2, 2}, // L2: восьмые
	{4, 2, 2, 4, 4},       // L3: синкопа
	{4, 0, 2, 2, 4, 4},    // L4: с паузой
	{3, 3, 2, 2, 4},       // L5: квантованный триольный рисунок
}

// melodyLenByLevel — длина мелодии по уровням
var melodyLenByLevel = []int{3, 4, 5, 6, 7}

// Exercise — сгенерированный эталон одного упражнения плюс метаданные
// воспроизведения для клиента
type Exercise struct {
	Target   entity.Payload
	Tempo    int
	Playback string
}

// Generator порождает содержимое упражнений, параметризованное уровнем.
// Не имеет состояния, кроме источника случайности.
type Generator struct {
	rnd Source
}

// NewGenerator создаёт генератор. При rnd == nil используется несидированный
// math/rand
func NewGenerator(rnd Source) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Generate порождает эталон для типа и уровня. Никогда не завершается ошибкой:
// нераспознанный тип откатывается на генератор одиночной ноты
func (g *Generator) Generate(exType entity.ExerciseType, level int) Exercise {
	if level < entity.MinLevel {
		level = entity.MinLevel
	}

	switch exType {
	case entity.TypeInterval:
		return g.interval(level)
	case entity.TypeChord:
		return g.chord(level)
	case entity.TypeRhythm:
		return g.rhythm(level)
	case entity.TypeMelody:
		return g.melody(level)
	default:
		return g.note(level)
	}
}

// note — одна из 7 ступеней равновероятно; эталон — имя ступени
func (g *Generator) note(level int) Exercise {
	deg := Solfege[g.rnd.Intn(len(Solfege))]
	return Exercise{
		Target: entity.Payload{
			Notes:  []string{pitchByDegree[deg]},
			Answer: []string{deg},
		},
		Playback: entity.PlaybackMelodic,
	}
}

// interval — корень из словаря плюс качество из набора уровня; второй питч
// вычисляется добавлением полутонов к корню
func (g *Generator) interval(level int) Exercise {
	set := intervalSetByLevel[levelIndex(level)]
	root := diatonicPitches[g.rnd.Intn(len(diatonicPitches))]
	name := set[g.rnd.Intn(len(set))]

	n1 := toMidi(root)
	n2 := n1 + intervalSemitones[name]

	return Exercise{
		Target: entity.Payload{
			Notes:  []string{fromMidi(n1), fromMidi(n2)},
			Answer: []string{name},
		},
		Playback: entity.PlaybackMelodic,
	}
}

// chord — корень из словаря плюс качество из набора уровня; голоса — корень и
// каждое смещение из стека качества
func (g *Generator) chord(level int) Exercise {
	root := diatonicPitches[g.rnd.Intn(len(diatonicPitches))]
	set := chordSetByLevel[levelIndex(level)]
	quality := set[g.rnd.Intn(len(set))]

	r := toMidi(root)
	stack := chordStacks[quality]
	notes := make([]string, len(stack))
	for i, offset := range stack {
		notes[i] = fromMidi(r + offset)
	}

	return Exercise{
		Target: entity.Payload{
			Notes:  notes,
			Answer: []string{quality},
		},
		Playback: entity.PlaybackHarmonic,
	}
}

// rhythm — фиксированный паттерн уровня; темп растёт с уровнем
func (g *Generator) rhythm(level int) Exercise {
	pattern := rhythmPatternByLevel[levelIndex(level)]
	units := make([]int, len(pattern))
	copy(units, pattern)

	return Exercise{
		Target:   entity.Payload{Units: units},
		Tempo:    90 + level*10,
		Playback: entity.PlaybackMelodic,
	}
}

// melody — последовательность независимых равновероятных нот словаря.
// Поступенность НЕ гарантируется
func (g *Generator) melody(level int) Exercise {
	length := melodyLenByLevel[levelIndex(level)]
	notes := make([]string, length)
	degrees := make([]string, length)
	for i := 0; i < length; i++ {
		pitch := diatonicPitches[g.rnd.Intn(len(diatonicPitches))]
		notes[i] = pitch
		degrees[i] = degreeByPitch[pitch]
	}

	return Exercise{
		Target: entity.Payload{
			Notes:  notes,
			Answer: degrees,
		},
		Playback: entity.PlaybackMelodic,
	}
}

// levelIndex — индекс таблицы содержимого: уровни выше пятого используют
// пятую строку
func levelIndex(level int) int {
	idx := level - 1
	if idx > 4 {
		idx = 4
	}
	return idx
}

// toMidi переводит питч вида "C#4" в MIDI-номер: индекс класса высоты +
// 12*(октава+1)
func toMidi(pitch string) int {
	name := pitch[:len(pitch)-1]
	octave := int(pitch[len(pitch)-1] - '0')
	for i, cls := range pitchClasses {
		if cls == name {
			return i + 12*(octave+1)
		}
	}
	return 12 * (octave + 1)
}

// fromMidi — обратное преобразование MIDI-номера в питч
func fromMidi(m int) string {
	return fmt.Sprintf("%s%d", pitchClasses[m%12], m/12-1)
}

// DegreeForPitch возвращает ступень для питча словаря ("C4" → "Do")
func DegreeForPitch(pitch string) (string, bool) {
	deg, ok := degreeByPitch[strings.TrimSpace(pitch)]
	return deg, ok
}
