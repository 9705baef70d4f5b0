package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/parking-system/internal/service"
)

// JobPublisher ставит фоновые задачи в очередь по расписанию.
// Сами задачи выполняет подписчик очереди, воркер только публикует их.
type JobPublisher struct {
	queue  service.TaskPublisher
	logger *logrus.Logger
}

func NewJobPublisher(queue service.TaskPublisher, logger *logrus.Logger) *JobPublisher {
	return &JobPublisher{
		queue:  queue,
		logger: logger,
	}
}

// PublishReminders ставит задачу рассылки напоминаний неактивным пользователям
func (w *JobPublisher) PublishReminders(ctx context.Context) error {
	task := &service.Task{
		ID:         fmt.Sprintf("send_reminders_%s", uuid.NewString()),
		Type:       service.TaskTypeSendReminders,
		ExecuteAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := w.queue.Publish(ctx, task); err != nil {
		return fmt.Errorf("ошибка при постановке задачи напоминаний: %w", err)
	}

	w.logger.WithField("task_id", task.ID).Info("Задача рассылки напоминаний поставлена в очередь")
	return nil
}

// PublishMonthlyReport ставит задачу отправки отчёта администратору
func (w *JobPublisher) PublishMonthlyReport(ctx context.Context) error {
	task := &service.Task{
		ID:         fmt.Sprintf("monthly_report_%s", uuid.NewString()),
		Type:       service.TaskTypeMonthlyReport,
		ExecuteAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := w.queue.Publish(ctx, task); err != nil {
		return fmt.Errorf("ошибка при постановке задачи отчёта: %w", err)
	}

	w.logger.WithField("task_id", task.ID).Info("Задача месячного отчёта поставлена в очередь")
	return nil
}
