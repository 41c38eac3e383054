package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/pkg/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Заголовки колонок исходного листа
const (
	colEquipmentID  = "Functional Loc."
	colNotifDate    = "Notif.date"
	colCreatedTime  = "Created at"
	colDescription  = "Description"
	colWorkCenter   = "Main WorkCtr"
	colSystemStatus = "System status"
)

// DatasetStore приемник импортированного набора записей
type DatasetStore interface {
	ReplaceDataset(ctx context.Context, datasetID string, records []models.RawRecord) error
}

// DatasetImporter читает рабочую книгу с журналом обслуживания,
// классифицирует строки и загружает набор в хранилище; попутно пишет
// классифицированную книгу с отдельным листом на каждую категорию
type DatasetImporter struct {
	repo   DatasetStore
	logger *logger.Logger
}

// NewDatasetImporter создает импортер наборов данных
func NewDatasetImporter(repo DatasetStore, log *logger.Logger) *DatasetImporter {
	return &DatasetImporter{
		repo:   repo,
		logger: log,
	}
}

// ImportWorkbook выполняет полный цикл импорта. Строки без идентификатора
// оборудования, даты или времени создания пропускаются и подсчитываются:
// импорт — фильтр перед границей препроцессора, а не она сама.
func (i *DatasetImporter) ImportWorkbook(ctx context.Context, workbookPath, sourceSheet, classifiedPath string) (*models.ImportSummary, error) {
	start := time.Now()
	defer func() {
		importDuration.Observe(time.Since(start).Seconds())
	}()

	// Дефекты входа (нет файла, нет листа, нет колонок) оборачиваются
	// в DataError: для вызывающей стороны это ошибка запроса, не сервиса
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, &models.DataError{Field: "workbook_path", Value: workbookPath, Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows(sourceSheet)
	if err != nil {
		return nil, &models.DataError{Field: "source_sheet", Value: sourceSheet, Err: err}
	}
	if len(rows) < 2 {
		return nil, &models.DataError{Field: "source_sheet", Value: sourceSheet, Err: fmt.Errorf("sheet has no data rows")}
	}

	columns := make(map[string]int)
	for idx, name := range rows[0] {
		columns[strings.TrimSpace(name)] = idx
	}
	for _, required := range []string{colEquipmentID, colNotifDate, colCreatedTime} {
		if _, ok := columns[required]; !ok {
			return nil, &models.DataError{Field: "column", Value: required, Err: fmt.Errorf("sheet %q is missing this required column", sourceSheet)}
		}
	}

	summary := &models.ImportSummary{
		DatasetID:  uuid.NewString(),
		ByCategory: make(map[string]int),
	}

	var records []models.RawRecord
	for _, row := range rows[1:] {
		summary.TotalRows++

		equipmentID := cell(row, columns, colEquipmentID)
		notifDate := cell(row, columns, colNotifDate)
		createdTime := cell(row, columns, colCreatedTime)
		if equipmentID == "" || notifDate == "" || createdTime == "" {
			summary.Skipped++
			continue
		}

		description := cell(row, columns, colDescription)
		workCenter := cell(row, columns, colWorkCenter)

		category := ClassifyCategory(description)
		recordsClassified.WithLabelValues(category).Inc()
		summary.ByCategory[category]++

		records = append(records, models.RawRecord{
			EquipmentID:  equipmentID,
			NotifDate:    normalizeNotifDate(notifDate),
			CreatedTime:  createdTime,
			Description:  description,
			WorkCenter:   workCenter,
			SystemStatus: cell(row, columns, colSystemStatus),
			Category:     category,
			Branch:       ClassifyBranch(workCenter),
		})
	}

	if len(records) == 0 {
		return nil, &models.DataError{Field: "source_sheet", Value: sourceSheet, Err: fmt.Errorf("no importable rows")}
	}
	summary.Imported = len(records)

	if classifiedPath != "" {
		if err := writeClassifiedWorkbook(classifiedPath, records); err != nil {
			return nil, err
		}
		summary.ClassifiedTo = classifiedPath
	}

	if err := i.repo.ReplaceDataset(ctx, summary.DatasetID, records); err != nil {
		return nil, err
	}

	summary.CompletedAt = time.Now().UTC()

	i.logger.WithFields(map[string]interface{}{
		"dataset_id": summary.DatasetID,
		"imported":   summary.Imported,
		"skipped":    summary.Skipped,
	}).Info("Dataset imported")

	return summary, nil
}

// writeClassifiedWorkbook пишет книгу с отдельным листом на категорию
func writeClassifiedWorkbook(path string, records []models.RawRecord) error {
	byCategory := make(map[string][]models.RawRecord)
	for _, rec := range records {
		byCategory[rec.Category] = append(byCategory[rec.Category], rec)
	}

	out := excelize.NewFile()
	defer out.Close()

	header := []interface{}{
		colEquipmentID, colNotifDate, colCreatedTime,
		colDescription, colWorkCenter, colSystemStatus, "Category", "Branch",
	}

	first := true
	for _, category := range models.Categories() {
		group, ok := byCategory[category]
		if !ok {
			continue
		}

		sheet := sanitizeSheetName(category)
		if first {
			// excelize создает книгу с листом по умолчанию
			if err := out.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename default sheet: %w", err)
			}
			first = false
		} else {
			if _, err := out.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
			}
		}

		if err := out.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header on sheet %q: %w", sheet, err)
		}

		for rowIdx, rec := range group {
			row := []interface{}{
				rec.EquipmentID, rec.NotifDate, rec.CreatedTime,
				rec.Description, rec.WorkCenter, rec.SystemStatus,
				rec.Category, rec.Branch,
			}
			cellName := fmt.Sprintf("A%d", rowIdx+2)
			if err := out.SetSheetRow(sheet, cellName, &row); err != nil {
				return fmt.Errorf("failed to write row on sheet %q: %w", sheet, err)
			}
		}
	}

	if err := out.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save classified workbook: %w", err)
	}

	return nil
}

// sanitizeSheetName заменяет недопустимые для имени листа символы
func sanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// normalizeNotifDate приводит сырые даты вида 20230115 к day-first тексту;
// остальные значения передаются препроцессору как есть
func normalizeNotifDate(value string) string {
	if len(value) != 8 {
		return value
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return value
		}
	}

	parsed, err := time.Parse("20060102", value)
	if err != nil {
		return value
	}

	return parsed.Format("02-01-2006")
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
