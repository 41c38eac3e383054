package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Категории обслуживания (фиксированный словарь меток)
const (
	CategorySpecialized  = "Specialized Maintenance"
	CategoryRepair       = "Repair"
	CategoryReplace      = "Replace"
	CategoryPreventive   = "Preventive Maintenance"
	CategoryGeneral      = "General Maintenance"
	CategoryInspection   = "Testing and Inspection"
	CategoryInstallation = "Installation and Setup"

	// CategoryOther возвращается когда ни одно ключевое слово не совпало
	CategoryOther = "Other Classification"
)

// RawRecord строка набора данных в хранимом виде: дата и время ещё текстовые,
// метки классификации уже присвоены при импорте
type RawRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DatasetID    string             `bson:"dataset_id" json:"-"`
	EquipmentID  string             `bson:"equipment_id" json:"equipment_id"`
	NotifDate    string             `bson:"notification_date" json:"notification_date"`
	CreatedTime  string             `bson:"created_time" json:"created_time"`
	Description  string             `bson:"description" json:"description"`
	WorkCenter   string             `bson:"work_center" json:"work_center"`
	SystemStatus string             `bson:"system_status" json:"system_status"`
	Category     string             `bson:"category" json:"category"`
	Branch       string             `bson:"branch,omitempty" json:"branch,omitempty"`
}

// MaintenanceRecord каноническая запись после препроцессинга
type MaintenanceRecord struct {
	EquipmentID  string    `json:"equipment_id"`
	NotifDate    time.Time `json:"notification_date"`
	CreatedAt    time.Time `json:"created_at"`
	Description  string    `json:"description"`
	WorkCenter   string    `json:"work_center"`
	SystemStatus string    `json:"system_status"`
	Category     string    `json:"category"`
	Branch       string    `json:"branch,omitempty"`

	// Производные признаки
	Month  int `json:"month"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Источники предсказанной даты
const (
	SourceModel            = "model"
	SourceIntervalFallback = "interval_fallback"
)

// MaintenanceEvent пара (дата, категория) для хронологии оборудования
type MaintenanceEvent struct {
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
}

// PredictionResult результат предсказания следующего обслуживания
type PredictionResult struct {
	EquipmentID      string             `json:"equipment_id"`
	Category         string             `json:"category,omitempty"`
	PredictedDate    time.Time          `json:"predicted_date"`
	Source           string             `json:"source"`
	MeanIntervalDays float64            `json:"mean_interval_days"`
	History          []MaintenanceEvent `json:"history"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// Статусы здоровья оборудования
const (
	StatusImmediate = "Immediate service required"
	StatusExcellent = "Excellent"
	StatusGood      = "Good"
	StatusService   = "Service required"
)

// HealthScore оценка здоровья оборудования 0-100 с текстовым статусом
type HealthScore struct {
	EquipmentID      string  `json:"equipment_id"`
	Score            float64 `json:"score"`
	Status           string  `json:"status"`
	MeanIntervalDays float64 `json:"mean_interval_days"`
}

// DatasetSnapshot идентичность текущего среза данных: идентификатор
// набора плюс число записей в выбранной области. Две одинаковые пары
// гарантируют один и тот же набор записей.
type DatasetSnapshot struct {
	DatasetID string
	Records   int64
}

// ImportSummary итог импорта набора данных
type ImportSummary struct {
	DatasetID    string         `json:"dataset_id"`
	TotalRows    int            `json:"total_rows"`
	Imported     int            `json:"imported"`
	Skipped      int            `json:"skipped"`
	ByCategory   map[string]int `json:"by_category"`
	ClassifiedTo string         `json:"classified_to,omitempty"`
	CompletedAt  time.Time      `json:"completed_at"`
}

// Categories возвращает фиксированный словарь категорий в порядке оценки
func Categories() []string {
	return []string{
		CategorySpecialized,
		CategoryRepair,
		CategoryReplace,
		CategoryPreventive,
		CategoryGeneral,
		CategoryInspection,
		CategoryInstallation,
		CategoryOther,
	}
}
