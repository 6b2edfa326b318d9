package model

import "time"

// RecordingCandidate видеофайл записи из хранилища инструктора
type RecordingCandidate struct {
	FileRef      string    `json:"file_ref"`
	CreatedTime  time.Time `json:"created_time"`
	DisplayName  string    `json:"display_name"`
	ParentFolder string    `json:"parent_folder"`
}

type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"   // привязываем автоматически
	ConfidenceMedium MatchConfidence = "medium" // нужно подтверждение инструктора
	ConfidenceLow    MatchConfidence = "low"    // ручная проверка
)

// MatchResult результат сопоставления записи с бронированием
type MatchResult struct {
	Recording   RecordingCandidate `json:"recording"`
	Reservation *Reservation       `json:"reservation"` // nil - подходящего бронирования нет
	Score       float64            `json:"score"`
	Reason      string             `json:"reason"`
	Confidence  MatchConfidence    `json:"confidence"`
}
