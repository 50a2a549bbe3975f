package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportExporter выгружает отчёты в CSV и XLSX.
// Поля с минутами рендерятся как H:MM; кавычки/запятые/переводы строк
// экранируются по правилам CSV (encoding/csv).
type ReportExporter struct {
	History *LearningHistoryService
}

func NewReportExporter(history *LearningHistoryService) *ReportExporter {
	return &ReportExporter{History: history}
}

// FormatMinutes переводит минуты в строку вида H:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryCSV выгружает сводку за интервал: строка заголовка плюс одна строка данных.
func (e *ReportExporter) SummaryCSV(userID uint, start, end time.Time) ([]byte, error) {
	summary, err := e.History.Summary(userID, start, end)
	if err != nil {
		return nil, err
	}

	rows := [][]string{
		{"total_access_count", "total_spent_time", "avg_session_minutes", "most_active_hour", "materials_completed", "active_days"},
		{
			strconv.Itoa(summary.TotalAccessCount),
			FormatMinutes(summary.TotalSpentMinutes),
			fmt.Sprintf("%.1f", summary.AvgSessionMinutes),
			strconv.Itoa(summary.MostActiveHour),
			strconv.Itoa(summary.MaterialsCompleted),
			strconv.Itoa(summary.DistinctActiveDays),
		},
	}
	return writeCSV(rows)
}

// DailyCSV выгружает временной ряд по дням.
func (e *ReportExporter) DailyCSV(userID uint, start, end time.Time) ([]byte, error) {
	daily, err := e.History.Daily(userID, start, end)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"date", "spent_time", "access_count", "materials_completed"}}
	for _, day := range daily {
		rows = append(rows, []string{
			day.Date,
			FormatMinutes(day.SpentMinutes),
			strconv.Itoa(day.AccessCount),
			strconv.Itoa(day.MaterialsCompleted),
		})
	}
	return writeCSV(rows)
}

// PatternsCSV выгружает разбивку по материалам.
func (e *ReportExporter) PatternsCSV(userID uint, start, end time.Time) ([]byte, error) {
	patterns, err := e.History.Patterns(userID, start, end)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"material_id", "material_title", "access_count", "spent_time"}}
	for _, m := range patterns.Materials {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(m.MaterialID), 10),
			m.MaterialTitle,
			strconv.Itoa(m.AccessCount),
			FormatMinutes(m.SpentMinutes),
		})
	}
	return writeCSV(rows)
}

// ReportXLSX собирает полный отчёт в книгу XLSX с листами
// Summary, Daily и Materials. Используется админской выгрузкой.
func (e *ReportExporter) ReportXLSX(userID uint, start, end time.Time) ([]byte, error) {
	report, err := e.History.Report(userID, start, end)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"total_access_count", "total_spent_time", "avg_session_minutes", "most_active_hour", "materials_completed", "active_days"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{
		report.Summary.TotalAccessCount,
		FormatMinutes(report.Summary.TotalSpentMinutes),
		report.Summary.AvgSessionMinutes,
		report.Summary.MostActiveHour,
		report.Summary.MaterialsCompleted,
		report.Summary.DistinctActiveDays,
	})

	daily := "Daily"
	f.NewSheet(daily)
	f.SetSheetRow(daily, "A1", &[]interface{}{"date", "spent_time", "access_count", "materials_completed"})
	for i, day := range report.Daily {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(daily, cell, &[]interface{}{day.Date, FormatMinutes(day.SpentMinutes), day.AccessCount, day.MaterialsCompleted})
	}

	materials := "Materials"
	f.NewSheet(materials)
	f.SetSheetRow(materials, "A1", &[]interface{}{"material_id", "material_title", "access_count", "spent_time"})
	for i, m := range report.Patterns.Materials {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(materials, cell, &[]interface{}{m.MaterialID, m.MaterialTitle, m.AccessCount, FormatMinutes(m.SpentMinutes)})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
