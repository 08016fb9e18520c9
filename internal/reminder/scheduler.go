// Package reminder sends the nightly unclaimed-task digest and due-tomorrow
// reminders by email and web push.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/model"
	"github.com/dukerupert/familist/internal/push"
	"github.com/dukerupert/familist/internal/store"
)

const (
	checkInterval = time.Minute
	logRetention  = 30 * 24 * time.Hour
)

// Scheduler checks once a minute whether the daily reminder hour has come.
type Scheduler struct {
	mu       sync.RWMutex
	families *store.FamilyStore
	users    *store.UserStore
	tasks    *store.TaskStore
	sent     *store.NotificationLogStore
	subs     *store.PushStore
	mailer   email.Sender
	pusher   *push.Service
	hour     int
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// Stores groups the stores the scheduler reads and writes.
type Stores struct {
	Families      *store.FamilyStore
	Users         *store.UserStore
	Tasks         *store.TaskStore
	Notifications *store.NotificationLogStore
	Push          *store.PushStore
}

// NewScheduler creates a scheduler that fires at hour:00 in loc. pusher may
// be nil when web push is not configured.
func NewScheduler(st Stores, mailer email.Sender, pusher *push.Service, hour int, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		families: st.Families,
		users:    st.Users,
		tasks:    st.Tasks,
		sent:     st.Notifications,
		subs:     st.Push,
		mailer:   mailer,
		pusher:   pusher,
		hour:     hour,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("reminders scheduled", "hour", s.hour, "location", s.loc.String())

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)
	if now.Hour() != s.hour {
		return
	}
	// every tick within the hour calls Run; the notification log keeps it
	// to one delivery per day
	if _, err := s.Run(ctx, now); err != nil {
		s.logger.Error("run reminders", "error", err)
	}
}

// Result counts the reminders delivered by one Run.
type Result struct {
	Digests     int
	DueTomorrow int
}

// Run sends whatever reminders for now's calendar day have not been sent yet.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (Result, error) {
	now = now.In(s.loc)
	day := now.Format(time.DateOnly)

	var res Result
	var errs []error

	n, err := s.sendDigests(ctx, day)
	res.Digests = n
	if err != nil {
		errs = append(errs, err)
	}

	n, err = s.sendDueTomorrow(ctx, now, day)
	res.DueTomorrow = n
	if err != nil {
		errs = append(errs, err)
	}

	if err := s.sent.Cleanup(now.Add(-logRetention)); err != nil {
		errs = append(errs, err)
	}

	if res.Digests > 0 || res.DueTomorrow > 0 {
		s.logger.Info("reminders sent", "day", day, "digests", res.Digests, "due_tomorrow", res.DueTomorrow)
	}
	return res, errors.Join(errs...)
}

func (s *Scheduler) sendDigests(ctx context.Context, day string) (int, error) {
	familyIDs, err := s.families.ListIDsWithUnclaimedTasks()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, fid := range familyIDs {
		first, err := s.sent.Claim(fid, model.NotifUnclaimedDigest, "family", day)
		if err != nil {
			return sent, err
		}
		if !first {
			continue
		}
		if err := s.sendDigest(ctx, fid); err != nil {
			s.logger.Error("send unclaimed digest", "family_id", fid, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) sendDigest(ctx context.Context, familyID int64) error {
	family, err := s.families.GetByID(familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return nil
	}

	tasks, err := s.tasks.ListByStatus(familyID, model.TaskStatusUnclaimed)
	if err != nil {
		return err
	}
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}

	members, err := s.users.ListByFamily(familyID)
	if err != nil {
		return err
	}
	var to []string
	for _, m := range members {
		if m.Email != "" {
			to = append(to, m.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	subject, body := email.UnclaimedDigest(family.Name, titles)
	if err := s.mailer.Send(ctx, email.Message{To: to, Subject: subject, Text: body}); err != nil {
		return fmt.Errorf("email digest: %w", err)
	}

	if s.pusher.Configured() {
		subs, err := s.subs.ListByFamily(familyID)
		if err != nil {
			return err
		}
		s.pushAll(ctx, subs, push.Payload{
			Title: subject,
			Body:  fmt.Sprintf("%d tasks are waiting for a volunteer", len(titles)),
			URL:   "/",
			Tag:   "unclaimed-digest",
		})
	}
	return nil
}

func (s *Scheduler) sendDueTomorrow(ctx context.Context, now time.Time, day string) (int, error) {
	// due dates are wall-clock dates stored as UTC, so tomorrow in s.loc
	// maps onto the UTC day with the same date
	y, m, d := now.Date()
	start := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	tasks, err := s.tasks.ListInProgressDueBetween(start, end)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range tasks {
		if t.VolunteerID == nil || t.DueDate == nil {
			continue
		}
		first, err := s.sent.Claim(t.FamilyID, model.NotifDueTomorrow, strconv.FormatInt(t.ID, 10), day)
		if err != nil {
			return sent, err
		}
		if !first {
			continue
		}
		if err := s.remindVolunteer(ctx, t); err != nil {
			s.logger.Error("send due tomorrow reminder", "task_id", t.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) remindVolunteer(ctx context.Context, t model.Task) error {
	volunteer, err := s.users.GetByID(*t.VolunteerID)
	if err != nil {
		return err
	}
	if volunteer == nil || volunteer.Email == "" {
		return nil
	}

	subject, body := email.DueTomorrow(t.Title, t.DueDate.UTC())
	if err := s.mailer.Send(ctx, email.Message{To: []string{volunteer.Email}, Subject: subject, Text: body}); err != nil {
		return fmt.Errorf("email volunteer: %w", err)
	}

	if s.pusher.Configured() {
		subs, err := s.subs.ListByUser(volunteer.ID)
		if err != nil {
			return err
		}
		s.pushAll(ctx, subs, push.Payload{
			Title: "Task due tomorrow",
			Body:  t.Title,
			URL:   "/",
			Tag:   fmt.Sprintf("task-due-%d", t.ID),
		})
	}
	return nil
}

// pushAll delivers payload to every subscription, dropping expired ones.
func (s *Scheduler) pushAll(ctx context.Context, subs []model.PushSubscription, payload push.Payload) {
	for i := range subs {
		err := s.pusher.Send(ctx, &subs[i], payload)
		switch {
		case errors.Is(err, push.ErrExpired):
			if derr := s.subs.DeleteByEndpoint(subs[i].Endpoint); derr != nil {
				s.logger.Warn("delete expired subscription", "error", derr)
			}
		case err != nil:
			s.logger.Warn("send push", "user_id", subs[i].UserID, "error", err)
		}
	}
}
