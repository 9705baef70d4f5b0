package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is a named unit of periodic work
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler запускает периодические задачи по своим интервалам
type Scheduler struct {
	jobs   []Job
	logger *logrus.Logger
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// AddJob registers a periodic job, must be called before Start
func (s *Scheduler) AddJob(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start запускает горутину на каждую задачу и блокируется до отмены контекста
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		go s.runJob(ctx, job)
	}
	<-ctx.Done()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"job":      job.Name,
		"interval": job.Interval.String(),
	}).Info("Периодическая задача запущена")

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("job", job.Name).Info("Периодическая задача остановлена")
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				s.logger.WithField("job", job.Name).WithError(err).Error("Ошибка периодической задачи")
			}
		}
	}
}
