package service

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
)

// Пороги уверенности сопоставления записей
const (
	ScoreExactCode  = 100.0
	ScoreAutoAttach = 80.0 // >= привязываем без участия инструктора
	ScoreClaim      = 60.0 // >= бронирование считается занятым этой записью
	scoreLowHint    = 40.0
)

// CalculateMatchScore оценивает от 0 до 100, насколько запись относится к бронированию.
// Календарный день сравнивается в часовом поясе loc (пояс занятия), nil - пояс начала брони.
//
//	код встречи в имени файла      100, сразу
//	|created - start| <= 5/15/30/60 мин   +50/40/30/20, иначе тот же день +10
//	полное имя студента в имени файла     +30, иначе доля найденных частей * 20
//	доля найденных частей кода встречи    * 20
func CalculateMatchScore(rec model.RecordingCandidate, res *model.Reservation, loc *time.Location) float64 {
	fileName := strings.ToLower(rec.DisplayName)
	code := res.JoinCode()

	if code != "" && strings.Contains(fileName, code) {
		return ScoreExactCode
	}

	if loc == nil {
		loc = res.StartTime.Location()
	}

	var score float64
	if recorded, ok := recordedAt(rec, loc); ok {
		score += temporalScore(recorded, res.StartTime, loc)
	}
	score += nameScore(fileName, res.StudentName)

	if code != "" {
		segments := strings.Split(code, "-")
		score += fraction(fileName, segments) * 20
	}

	return math.Min(score, 100)
}

// recordedAt время записи: createdTime из хранилища, а без него отметка из имени
// файла Meet, записанная в местном времени инструктора
func recordedAt(rec model.RecordingCandidate, loc *time.Location) (time.Time, bool) {
	if !rec.CreatedTime.IsZero() {
		return rec.CreatedTime, true
	}

	name := NormalizeRecordingName(rec.DisplayName)
	if name.Date == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", name.Date+" "+name.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func temporalScore(created, start time.Time, loc *time.Location) float64 {
	diff := created.Sub(start)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= 5*time.Minute:
		return 50
	case diff <= 15*time.Minute:
		return 40
	case diff <= 30*time.Minute:
		return 30
	case diff <= 60*time.Minute:
		return 20
	case sameDay(created.In(loc), start.In(loc)):
		return 10
	}
	return 0
}

// nameScore: пустое имя ничего не добавляет
func nameScore(fileName, studentName string) float64 {
	name := strings.ToLower(strings.TrimSpace(studentName))
	if name == "" {
		return 0
	}
	if strings.Contains(fileName, name) {
		return 30
	}
	return fraction(fileName, strings.Fields(name)) * 20
}

func fraction(haystack string, parts []string) float64 {
	if len(parts) == 0 {
		return 0
	}
	found := 0
	for _, p := range parts {
		if p != "" && strings.Contains(haystack, p) {
			found++
		}
	}
	return float64(found) / float64(len(parts))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EvaluateConfidence полоса уверенности по баллу
func EvaluateConfidence(score float64) model.MatchConfidence {
	switch {
	case score >= ScoreAutoAttach:
		return model.ConfidenceHigh
	case score >= ScoreClaim:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func matchReason(res *model.Reservation, score float64) string {
	switch {
	case res == nil:
		return "no candidate reservation"
	case score >= ScoreAutoAttach:
		return fmt.Sprintf("high probability match (%s, %s)", res.StudentName, res.StartTime.Format("2006-01-02 15:04"))
	case score >= ScoreClaim:
		return fmt.Sprintf("possible match (%s, %s)", res.StudentName, res.StartTime.Format("2006-01-02 15:04"))
	case score >= scoreLowHint:
		return "low probability match (similar time)"
	default:
		return "uncertain match (manual check required)"
	}
}

// reservationPool арена кандидатов: бронирования по индексу, отметки занятости по id
// и часовые пояса занятий по offering id
type reservationPool struct {
	items   []*model.Reservation
	claimed map[int64]bool
	zones   map[int64]*time.Location
}

func newReservationPool(reservations []*model.Reservation, zones map[int64]*time.Location) *reservationPool {
	return &reservationPool{
		items:   reservations,
		claimed: make(map[int64]bool, len(reservations)),
		zones:   zones,
	}
}

func (p *reservationPool) score(rec model.RecordingCandidate, res *model.Reservation) float64 {
	return CalculateMatchScore(rec, res, p.zones[res.OfferingID])
}

func (p *reservationPool) claim(id int64) {
	p.claimed[id] = true
}

// best лучший свободный кандидат. Выигрывает строго больший балл,
// при равенстве остаётся первый по порядку.
func (p *reservationPool) best(rec model.RecordingCandidate) (*model.Reservation, float64) {
	var (
		best     *model.Reservation
		maxScore float64
	)
	for _, res := range p.items {
		if p.claimed[res.ID] {
			continue
		}
		if score := p.score(rec, res); score > maxScore {
			best, maxScore = res, score
		}
	}
	return best, maxScore
}

// bestAny лучший балл по всем бронированиям, включая занятые
func (p *reservationPool) bestAny(rec model.RecordingCandidate) float64 {
	var maxScore float64
	for _, res := range p.items {
		maxScore = math.Max(maxScore, p.score(rec, res))
	}
	return maxScore
}

func newMatchResult(rec model.RecordingCandidate, res *model.Reservation, score float64) model.MatchResult {
	return model.MatchResult{
		Recording:   rec,
		Reservation: res,
		Score:       score,
		Reason:      matchReason(res, score),
		Confidence:  EvaluateConfidence(score),
	}
}

// MatchAllRecordings жадно распределяет записи по бронированиям.
// Записи обрабатываются по убыванию лучшего достижимого балла (стабильно),
// результат с баллом >= ScoreClaim занимает бронирование. Возврата нет.
// Результаты идут в порядке обработки. zones часовые пояса занятий по offering id,
// для отсутствующих берётся пояс начала брони.
func MatchAllRecordings(recordings []model.RecordingCandidate, reservations []*model.Reservation, zones map[int64]*time.Location) []model.MatchResult {
	pool := newReservationPool(reservations, zones)

	type ranked struct {
		rec  model.RecordingCandidate
		best float64
	}
	order := make([]ranked, len(recordings))
	for i, rec := range recordings {
		order[i] = ranked{rec: rec, best: pool.bestAny(rec)}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].best > order[j].best
	})

	results := make([]model.MatchResult, 0, len(recordings))
	for _, item := range order {
		res, score := pool.best(item.rec)
		if res != nil && score >= ScoreClaim {
			pool.claim(res.ID)
		}
		results = append(results, newMatchResult(item.rec, res, score))
	}

	return results
}

var recordingStampPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2})`)
var videoExtPattern = regexp.MustCompile(`(?i)\.(mp4|webm|mov)$`)

// RecordingName разобранное имя файла записи
type RecordingName struct {
	BaseName string
	Date     string // YYYY-MM-DD, пусто если в имени нет отметки времени
	Time     string // HH:MM
}

// NormalizeRecordingName разбирает имена вида "Meet Recording - 2024-12-31 14:30.mp4"
func NormalizeRecordingName(fileName string) RecordingName {
	if m := recordingStampPattern.FindStringSubmatch(fileName); m != nil {
		return RecordingName{
			BaseName: strings.TrimSpace(strings.Replace(fileName, m[0], "", 1)),
			Date:     m[1],
			Time:     m[2],
		}
	}
	return RecordingName{BaseName: videoExtPattern.ReplaceAllString(fileName, "")}
}

// ExpectedRecordingName имя файла, которое Meet даёт записи бронирования
// (время в поясе инструктора)
func ExpectedRecordingName(res *model.Reservation, loc *time.Location) string {
	return "Meet Recording - " + res.StartTime.In(loc).Format("2006-01-02 15:04")
}
