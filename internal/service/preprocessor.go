package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/grigta/predmaint/internal/models"
)

// Раскладки дат уведомлений, day-first варианты первыми
var notifDateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-1-2",
}

// Раскладки времени создания записи
var createdTimeLayouts = []string{
	"15:04:05",
	"15:04",
}

// Preprocess нормализует сырые записи: разбор дат, стабильная сортировка
// по дате уведомления и вычисление производных признаков.
// Любая неразбираемая дата или время отклоняет всю выборку целиком.
func Preprocess(raw []models.RawRecord) ([]models.MaintenanceRecord, error) {
	records := make([]models.MaintenanceRecord, 0, len(raw))

	for _, r := range raw {
		notifDate, err := parseNotifDate(r.NotifDate)
		if err != nil {
			return nil, &models.DataError{Field: "notification_date", Value: r.NotifDate, Err: err}
		}

		clock, err := parseCreatedTime(r.CreatedTime)
		if err != nil {
			return nil, &models.DataError{Field: "created_time", Value: r.CreatedTime, Err: err}
		}

		// Хранилище держит только время суток; полная метка времени
		// собирается из уже разобранной даты уведомления
		createdAt := time.Date(
			notifDate.Year(), notifDate.Month(), notifDate.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC,
		)

		records = append(records, models.MaintenanceRecord{
			EquipmentID:  r.EquipmentID,
			NotifDate:    notifDate,
			CreatedAt:    createdAt,
			Description:  r.Description,
			WorkCenter:   r.WorkCenter,
			SystemStatus: r.SystemStatus,
			Category:     r.Category,
			Branch:       r.Branch,
			Month:        int(notifDate.Month()),
			Hour:         createdAt.Hour(),
			Minute:       createdAt.Minute(),
			Second:       createdAt.Second(),
		})
	}

	// Стабильная сортировка: равные даты сохраняют исходный порядок
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NotifDate.Before(records[j].NotifDate)
	})

	return records, nil
}

func parseNotifDate(value string) (time.Time, error) {
	for _, layout := range notifDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}

func parseCreatedTime(value string) (time.Time, error) {
	for _, layout := range createdTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format")
}
