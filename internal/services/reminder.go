package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/homeboard/backend/domain"
	"github.com/homeboard/backend/pkg/dates"
	"github.com/homeboard/backend/repository"
	"github.com/homeboard/backend/usecase"
)

// DeadlineGuard deduplicates reminders so a task alerts at most once per day.
type DeadlineGuard interface {
	FirstToday(ctx context.Context, taskID string, day time.Time) (bool, error)
}

// ReminderConfig controls the daily scan.
type ReminderConfig struct {
	Time     string // HH:MM, local to the process
	LeadDays int
	Timeout  time.Duration
}

// ReminderService runs a daily cron job that scans open tasks approaching
// their due date and dispatches deadline_reminder notifications. The
// recipient is the assignee, falling back to the creator for unassigned
// tasks. Dispatch stays best-effort: a failed write is logged and the scan
// moves on.
type ReminderService struct {
	tasks    repository.TaskRepository
	notifier usecase.Notifier
	guard    DeadlineGuard
	clock    dates.Clock
	cron     *cron.Cron
	cfg      ReminderConfig
	logger   *zap.Logger
}

func NewReminderService(
	tasks repository.TaskRepository,
	notifier usecase.Notifier,
	guard DeadlineGuard,
	clock dates.Clock,
	cfg ReminderConfig,
	logger *zap.Logger,
) (*ReminderService, error) {
	if cfg.LeadDays <= 0 {
		cfg.LeadDays = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if clock == nil {
		clock = dates.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rs := &ReminderService{
		tasks:    tasks,
		notifier: notifier,
		guard:    guard,
		clock:    clock,
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		logger:   logger,
	}

	spec, err := buildDailySpec(cfg.Time)
	if err != nil {
		return nil, err
	}
	if _, err := rs.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := rs.Run(ctx); err != nil {
			rs.logger.Error("reminder scan failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return rs, nil
}

// Start launches the cron scheduler.
func (rs *ReminderService) Start() {
	rs.cron.Start()
	rs.logger.Info("reminder service started", zap.String("time", rs.cfg.Time), zap.Int("lead_days", rs.cfg.LeadDays))
}

// Stop gracefully stops the scheduler.
func (rs *ReminderService) Stop(ctx context.Context) {
	stopCtx := rs.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rs.logger.Info("reminder service stopped")
}

// reminderPageSize bounds one List call of the scan. The scan pages until a
// short page, so the repositories' row limit never starves tasks beyond the
// first page.
const reminderPageSize = 100

// Run performs one scan synchronously. Exposed so deployments without the
// cron schedule (and tests) can trigger it directly.
func (rs *ReminderService) Run(ctx context.Context) error {
	today := rs.clock.Today()
	cutoff := today.AddDate(0, 0, rs.cfg.LeadDays)

	var scanned, sent int
	for _, status := range []domain.TaskStatus{domain.StatusPending, domain.StatusInProgress} {
		for offset := 0; ; offset += reminderPageSize {
			tasks, err := rs.tasks.List(ctx, repository.TaskFilter{
				Status:    status,
				DueBefore: &cutoff,
				Limit:     reminderPageSize,
				Offset:    offset,
			})
			if err != nil {
				return err
			}

			for i := range tasks {
				scanned++
				if rs.remind(ctx, &tasks[i], today) {
					sent++
				}
			}

			if len(tasks) < reminderPageSize {
				break
			}
		}
	}

	rs.logger.Info("reminder scan complete", zap.Int("scanned", scanned), zap.Int("sent", sent))
	return nil
}

func (rs *ReminderService) remind(ctx context.Context, task *domain.TaskInstance, today time.Time) bool {
	recipient := task.AssignedTo
	if recipient == "" {
		recipient = task.CreatedBy
	}
	if recipient == "" {
		return false
	}

	if rs.guard != nil {
		first, err := rs.guard.FirstToday(ctx, task.ID, today)
		if err != nil {
			rs.logger.Warn("reminder dedup check failed", zap.String("task_id", task.ID), zap.Error(err))
			return false
		}
		if !first {
			return false
		}
	}

	if err := rs.notifier.Dispatch(ctx, domain.NotifyDeadlineReminder, recipient, task.ID, task.Title); err != nil {
		rs.logger.Error("deadline reminder dispatch failed",
			zap.String("task_id", task.ID),
			zap.String("recipient", recipient),
			zap.Error(err))
		return false
	}
	return true
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
