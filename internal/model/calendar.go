package model

import "time"

// CalendarEvent событие, которое создаётся во внешнем календаре при записи
type CalendarEvent struct {
	RequestID   string // идемпотентный ключ запроса на создание видеовстречи
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
	Attendees   []string // email участников
}

// CalendarEventRef ссылка на созданное событие
type CalendarEventRef struct {
	ID       string `json:"id"`
	JoinLink string `json:"join_link"`
	HTMLLink string `json:"html_link"`
}
