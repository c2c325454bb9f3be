package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-planner/internal/planner"
)

// PlanSource lists plans due a reminder and records delivery.
type PlanSource interface {
	DueReminders(ctx context.Context, day time.Time) ([]planner.Record, error)
	MarkNotified(ctx context.Context, id int64) error
}

// reminderHour is the local hour of day meal reminders go out. Scans
// earlier in the day are skipped so a plan is never delivered at midnight.
const reminderHour = 9

// Reminder scans for planned meals due today and delivers the morning
// reminder. The notified flag is flipped before sending, so a plan gets at
// most one reminder even if two scans overlap or a schedule call was
// duplicated.
type Reminder struct {
	plans  PlanSource
	sender Sender
	log    *zap.Logger
	now    func() time.Time
}

// NewReminder creates a Reminder. A nil logger is replaced with a no-op
// one.
func NewReminder(plans PlanSource, sender Sender, log *zap.Logger) *Reminder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reminder{plans: plans, sender: sender, log: log, now: time.Now}
}

// RunOnce delivers reminders for every plan dated day that has not been
// notified yet.
func (r *Reminder) RunOnce(ctx context.Context, day time.Time) error {
	due, err := r.plans.DueReminders(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, rec := range due {
		if err := r.plans.MarkNotified(ctx, rec.ID); err != nil {
			r.log.Warn("failed to mark plan notified, skipping reminder",
				zap.Int64("plan_id", rec.ID), zap.Error(err))
			continue
		}
		body := fmt.Sprintf("Time to prepare your recipe: %s (%d portion%s)",
			rec.RecipeTitle, rec.Portions, plural(rec.Portions))
		if err := r.sender.Send("Meal reminder", body); err != nil {
			r.log.Warn("failed to deliver reminder",
				zap.Int64("plan_id", rec.ID), zap.Error(err))
		}
	}
	return nil
}

// Run loops on the given interval until ctx is cancelled, scanning only
// once the local time has reached the delivery hour. A plan created after
// midnight therefore still waits for the 09:00 scan of its day.
func (r *Reminder) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick runs one scan if today's delivery hour has been reached.
func (r *Reminder) tick(ctx context.Context) {
	now := r.now()
	if now.Hour() < reminderHour {
		return
	}
	if err := r.RunOnce(ctx, now); err != nil {
		r.log.Warn("reminder scan failed", zap.Error(err))
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
