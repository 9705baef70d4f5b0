package queue

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	repository "github.com/ds124wfegd/parking-system/internal/database/postgres"
	"github.com/ds124wfegd/parking-system/internal/entity"
	"github.com/ds124wfegd/parking-system/pkg/notifier"
)

// TaskHandler обрабатывает задачи из очереди
type TaskHandler struct {
	userRepo        repository.UserRepository
	reservationRepo repository.ReservationRepository
	analyticsRepo   repository.AnalyticsRepository
	notifier        notifier.Notifier
	inactiveAfter   time.Duration
	exportDir       string
}

// NewTaskHandler создает новый обработчик задач
func NewTaskHandler(
	userRepo repository.UserRepository,
	reservationRepo repository.ReservationRepository,
	analyticsRepo repository.AnalyticsRepository,
	n notifier.Notifier,
	inactiveAfter time.Duration,
	exportDir string,
) *TaskHandler {
	return &TaskHandler{
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		analyticsRepo:   analyticsRepo,
		notifier:        n,
		inactiveAfter:   inactiveAfter,
		exportDir:       exportDir,
	}
}

// HandleTask обрабатывает задачу
func (h *TaskHandler) HandleTask(task *Task) error {
	log.Printf("Обработка задачи %s типа %s (попытка %d/%d)",
		task.ID, task.Type, task.Attempts, task.MaxRetries)

	switch task.Type {
	case TaskTypeSendReminders:
		return h.handleSendReminders(task)
	case TaskTypeMonthlyReport:
		return h.handleMonthlyReport(task)
	case TaskTypeExportHistory:
		return h.handleExportHistory(task)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

// handleSendReminders рассылает напоминания пользователям,
// которые давно не парковались
func (h *TaskHandler) handleSendReminders(task *Task) error {
	ctx := context.Background()

	cutoff := time.Now().Add(-h.inactiveAfter)
	users, err := h.userRepo.GetInactive(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("не удалось получить неактивных пользователей: %v", err)
	}

	sentCount := 0
	for _, user := range users {
		body := fmt.Sprintf(
			"Hello %s,\n\n"+
				"We noticed you haven't parked with us recently. "+
				"Check out our parking lots and reserve a spot today!\n",
			user.Username,
		)
		if err := h.notifier.Send(user.Email, "We miss you at our parking lots!", body); err != nil {
			log.Printf("Не удалось отправить напоминание пользователю %d: %v", user.ID, err)
			continue
		}
		sentCount++
	}

	log.Printf("Отправлено %d/%d напоминаний", sentCount, len(users))
	return nil
}

// handleMonthlyReport собирает сводку активности и отправляет её администратору
func (h *TaskHandler) handleMonthlyReport(task *Task) error {
	ctx := context.Background()

	report, err := h.analyticsRepo.SystemReport(ctx)
	if err != nil {
		return fmt.Errorf("не удалось собрать отчёт: %v", err)
	}

	admin, err := h.userRepo.GetFirstAdmin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось найти администратора для отчёта: %v", err)
	}

	subject := fmt.Sprintf("Monthly Activity Report - %s", report.GeneratedAt.Format("January 2006"))
	if err := h.notifier.Send(admin.Email, subject, report.String()); err != nil {
		return fmt.Errorf("не удалось отправить отчёт: %v", err)
	}

	log.Printf("Месячный отчёт отправлен администратору %d", admin.ID)
	return nil
}

// handleExportHistory выгружает историю бронирований пользователя в CSV файл
func (h *TaskHandler) handleExportHistory(task *Task) error {
	ctx := context.Background()

	userID := task.GetInt64("user_id")
	if userID == 0 {
		return fmt.Errorf("invalid user_id in task data")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("не удалось получить пользователя %d: %v", userID, err)
	}

	records, err := h.reservationRepo.GetHistoryByUser(ctx, userID, "")
	if err != nil {
		return fmt.Errorf("не удалось получить историю бронирований: %v", err)
	}

	if err := os.MkdirAll(h.exportDir, 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог экспорта: %v", err)
	}

	filename := fmt.Sprintf("parking_history_%d_%d.csv", userID, time.Now().Unix())
	path := filepath.Join(h.exportDir, filename)

	if err := writeHistoryCSV(path, records); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your parking history export is ready: %s\n"+
			"Total records: %d\n",
		user.Username, filename, len(records),
	)
	if err := h.notifier.Send(user.Email, "Your parking history export is ready", body); err != nil {
		return fmt.Errorf("не удалось отправить уведомление об экспорте: %v", err)
	}

	log.Printf("История пользователя %d выгружена в %s (%d записей)", userID, path, len(records))
	return nil
}

func writeHistoryCSV(path string, records []*entity.ReservationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать файл экспорта: %v", err)
	}
	defer file.Close()

	return writeHistoryRows(file, records)
}

func writeHistoryRows(w io.Writer, records []*entity.ReservationRecord) error {
	writer := csv.NewWriter(w)

	header := []string{"Reservation ID", "Lot Name", "Spot Number", "Date", "Duration", "Cost", "Status"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("не удалось записать заголовок CSV: %v", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.LotName,
			strconv.Itoa(rec.SpotNumber),
			rec.ReservedAt.Format("2006-01-02 15:04"),
			rec.DurationString(),
			rec.CostString(),
			string(rec.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("не удалось записать строку CSV: %v", err)
		}
	}

	// Flush до проверки ошибки, иначе сбой записи хвоста буфера теряется
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("не удалось дописать CSV: %v", err)
	}
	return nil
}
