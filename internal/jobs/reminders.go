package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/services"
	"naco/internal/utils"

	"github.com/robfig/cron/v3"
)

const (
	reminderLead   = 60 * time.Minute
	reminderWindow = 5 * time.Minute
)

// Reminders notifies both parties of confirmed bookings starting within the hour.
type Reminders struct {
	Bookings services.BookingStore
	Notifier services.NotificationSink
	Location *time.Location
	Now      func() time.Time
	Timeout  time.Duration
}

// Run checks bookings scheduled in [now+60m, now+65m) and returns how many
// bookings were reminded.
func (r Reminders) Run(ctx context.Context) (int, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	bookings, err := r.Bookings.ListBookingsByStatus(listCtx, domain.StatusConfirmed)
	if err != nil {
		return 0, err
	}

	lower := now.Add(reminderLead)
	upper := lower.Add(reminderWindow)
	sent := 0
	for _, b := range bookings {
		at, err := utils.ParseSchedule(b.ScheduledDate, b.ScheduledTime, loc)
		if err != nil {
			utils.LogCtx(ctx, "reminder", "skip", fmt.Sprintf("booking_id=%s bad schedule: %v", b.ID, err))
			continue
		}
		if at.Before(lower) || !at.Before(upper) {
			continue
		}
		when := utils.FormatSchedule(b.ScheduledDate, b.ScheduledTime)
		data := map[string]any{"bookingId": b.ID, "reference": b.Reference, "status": b.Status.String()}
		r.Notifier.Enqueue(ctx, b.ClientID, models.NotifBookingReminder, "Upcoming booking",
			fmt.Sprintf("Your %s booking starts at %s (%s).", b.Service, when, b.Reference), data)
		r.Notifier.Enqueue(ctx, b.ArtisanID, models.NotifBookingReminder, "Upcoming job",
			fmt.Sprintf("You have a %s job at %s, %s (%s).", b.Service, when, b.Location, b.Reference), data)
		sent++
	}
	return sent, nil
}

// Schedule registers the reminder run on c using spec, e.g. "*/5 * * * *".
func (r Reminders) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		n, err := r.Run(context.Background())
		if err != nil {
			log.Printf("[REMINDER] action=run err=%v", err)
			return
		}
		if n > 0 {
			log.Printf("[REMINDER] action=run sent=%d", n)
		}
	})
}
