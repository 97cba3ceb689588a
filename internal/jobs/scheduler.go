package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Scheduler registers recurring tasks and runs the asynq scheduler loop.
type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	digestCron     string
	log            *slog.Logger
}

// NewScheduler constructs a Scheduler. digestCron is a standard cron
// expression for the daily digest broadcast.
func NewScheduler(redisOpt asynq.RedisConnOpt, digestCron string, log *slog.Logger) Scheduler {
	if log == nil {
		log = slog.Default()
	}

	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		digestCron:     digestCron,
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	task, err := NewDigestBroadcastTask("scheduled")
	if err != nil {
		return err
	}

	entryID, err := s.asynqScheduler.Register(s.digestCron, task)
	if err != nil {
		return err
	}

	s.log.Info("scheduler: registered digest broadcast",
		slog.String("cron", s.digestCron),
		slog.String("entry_id", entryID),
	)

	if _, err := s.asynqScheduler.Register("@every 1h", NewSessionsCleanupTask()); err != nil {
		return err
	}

	return nil
}

func (s *scheduler) Run() {
	s.log.Info("scheduler: starting")

	go func() {
		if err := s.asynqScheduler.Run(); err != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", slog.Any("error", err))
		}
	}()
}

func (s *scheduler) Shutdown() {
	s.log.Info("scheduler: shutting down")
	s.asynqScheduler.Shutdown()
}
