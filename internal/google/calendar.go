package google

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 30
)

// CalendarClient события с видеовстречей и free/busy через Calendar API v3
type CalendarClient struct {
	svc    *calendar.Service
	logger *zap.Logger
}

func NewCalendarClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*CalendarClient, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &CalendarClient{svc: svc, logger: logger}, nil
}

// BusyIntervals занятые интервалы календаря в [from, to)
func (c *CalendarClient) BusyIntervals(ctx context.Context, calendarID string, from, to time.Time) ([]model.Interval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}

	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("query free/busy: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("free/busy for %s: %s", calendarID, cal.Errors[0].Reason)
	}

	busy := make([]model.Interval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("parse busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("parse busy end %q: %w", period.End, err)
		}
		interval, err := model.NewInterval(start, end)
		if err != nil {
			c.logger.Warn("Skipping malformed busy period",
				zap.String("calendar_id", calendarID),
				zap.String("start", period.Start),
				zap.String("end", period.End),
			)
			continue
		}
		busy = append(busy, interval)
	}

	return busy, nil
}

// CreateEvent создаёт событие с Google Meet и напоминаниями, приглашения уходят участникам
func (c *CalendarClient) CreateEvent(ctx context.Context, calendarID string, ev model.CalendarEvent) (*model.CalendarEventRef, error) {
	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		if email == "" {
			continue
		}
		attendees = append(attendees, &calendar.EventAttendee{Email: email, ResponseStatus: "accepted"})
	}

	event := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.Timezone},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.Timezone},
		Attendees:   attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             ev.RequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	c.logger.Debug("Calendar event created",
		zap.String("calendar_id", calendarID),
		zap.String("event_id", created.Id),
	)

	return &model.CalendarEventRef{
		ID:       created.Id,
		JoinLink: joinLink(created),
		HTMLLink: created.HtmlLink,
	}, nil
}

// DeleteEvent удаляет событие; уже удалённое событие не ошибка
func (c *CalendarClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.svc.Events.Delete(calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

func joinLink(ev *calendar.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			return ep.Uri
		}
	}
	return ""
}
