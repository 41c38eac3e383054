package service

import (
	"strings"

	"github.com/grigta/predmaint/internal/models"
)

// keywordRule пара (метка, набор ключевых слов)
type keywordRule struct {
	Label    string
	Keywords []string
}

// Порядок правил фиксирован и значим: при совпадении ключевых слов
// нескольких категорий побеждает первая по списку, не "лучшая".
var categoryRules = []keywordRule{
	{models.CategorySpecialized, []string{
		"steam trap", "thermography", "centrifuge", "silica gel", "fan motor",
		"lubrication system", "heat exchanger", "distillation column",
		"pump overhaul", "valve maintenance", "compressor inspection",
	}},
	{models.CategoryRepair, []string{
		"leak", "faulty", "repair", "rectify", "rectified", "rectification",
		"corroded", "weld repair", "valve repair", "pipeline repair",
		"pump repair", "equipment failure", "remove", "seepage",
	}},
	{models.CategoryReplace, []string{
		"to be replaced", "replacement", "blinding", "damaged", "deblinding",
		"sleeving", "replace", "siding", "worn-out", "obsolete equipment",
	}},
	{models.CategoryPreventive, []string{
		"preventive", "maintenance", "calibration", "inspection", "pm", "bmr",
		"lubrication schedule", "equipment check-up", "corrosion prevention",
		"pm of", "pm job ", "pm plan", "maintenence job", "maint job", "cleaning",
	}},
	{models.CategoryGeneral, []string{
		"clean", "cleaning", "top up", "maintenance", "clearing", "testing",
		"painting", "lubrication", "equipment adjustment", "filter replacement",
		"routine check-up", "maint", "maint of",
	}},
	{models.CategoryInspection, []string{
		"checking", "check", "checked", "testing", "inspection", "thermography",
		"monitoring", "monitor", "calibration", "pressure test",
		"non-destructive testing", "integrity assessment",
	}},
	{models.CategoryInstallation, []string{
		"connection", "disconnect", "setup", "installation", "commissioning",
		"decommissioning", "equipment installation", "new system setup",
		"facility setup", "piping installation",
	}},
}

// branchRules правила определения дисциплины по рабочему центру
var branchRules = []keywordRule{
	{"electrical", []string{"elec"}},
	{"mechanical", []string{"mech"}},
	{"qc", []string{"qc"}},
	{"civil", []string{"civil"}},
	{"telecom", []string{"tele"}},
	{"f&s", []string{"fire", "safety", "f&s"}},
	{"inspection", []string{"insp"}},
	{"instrumentation", []string{"inst"}},
}

// ClassifyCategory присваивает категорию обслуживания по описанию работы.
// Совпадение подстрочное и регистронезависимое; пустое описание ничему
// не соответствует и даёт CategoryOther.
func ClassifyCategory(description string) string {
	desc := strings.ToLower(description)

	for _, rule := range categoryRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(desc, keyword) {
				return rule.Label
			}
		}
	}

	return models.CategoryOther
}

// ClassifyBranch определяет дисциплину по коду рабочего центра.
// Возвращает пустую строку когда ничего не совпало: отсутствие ветки
// допустимый результат, не ошибка.
func ClassifyBranch(workCenter string) string {
	wc := strings.ToLower(workCenter)

	for _, rule := range branchRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(wc, keyword) {
				return rule.Label
			}
		}
	}

	return ""
}
