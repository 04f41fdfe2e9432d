package worker

import (
	"context"
	"fmt"
	"time"
)

// Run крутит цикл claim-execute до отмены контекста. Паника в пайплайне
// алертится оператору и роняет процесс: недоделанная джоба остаётся
// claimed и подбирается механизмом восстановления очереди.
func (s *Service) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if alertErr := s.Alerter.SendAlert(alertCtx, fmt.Sprintf("❗ worker %s panic: %v", s.Cfg.WorkerID, r)); alertErr != nil {
				s.Log.Error("failed to send panic alert", "error", alertErr)
			}
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()

	s.Log.Info("worker started",
		"worker_id", s.Cfg.WorkerID,
		"env", s.Cfg.Env,
		"poll_interval", s.Cfg.PollInterval,
	)

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("worker stopped", "worker_id", s.Cfg.WorkerID)
			return ctx.Err()
		default:
		}

		job, err := s.JobRepo.ClaimNext(ctx, s.Cfg.WorkerID, s.Cfg.Env)
		if err != nil {
			s.Log.Error("failed to claim job",
				"error", err,
				"worker_id", s.Cfg.WorkerID,
			)
			s.idle(ctx)
			continue
		}
		if job == nil {
			s.idle(ctx)
			continue
		}

		s.Log.Info("job claimed",
			"job_id", job.ID,
			"session_id", job.SessionID,
			"worker_id", s.Cfg.WorkerID,
			"attempts", job.Attempts,
		)
		s.runJob(ctx, job)
	}
}

func (s *Service) idle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.Cfg.PollInterval):
	}
}
