package models

import "fmt"

// NotFoundError оборудование отсутствует в выбранной области данных
type NotFoundError struct {
	EquipmentID string
	Category    string
}

func (e *NotFoundError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("no data found for the specified equipment ID '%s' in category '%s'", e.EquipmentID, e.Category)
	}
	return fmt.Sprintf("no data found for the specified equipment ID '%s'", e.EquipmentID)
}

// DataError неразбираемое поле даты или времени, фатально для всей выборки
type DataError struct {
	Field string
	Value string
	Err   error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s value '%s': %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s value '%s'", e.Field, e.Value)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
