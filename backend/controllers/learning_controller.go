package controllers

import (
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/services"
	"lms/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LearningController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	History  *services.LearningHistoryService
	Exporter *services.ReportExporter
}

func NewLearningController(db *gorm.DB, cfg *config.Config) *LearningController {
	history := services.NewLearningHistoryService(db)
	return &LearningController{
		DB:       db,
		Cfg:      cfg,
		History:  history,
		Exporter: services.NewReportExporter(history),
	}
}

// parsePeriod читает startDate/endDate (YYYY-MM-DD) из запроса.
// По умолчанию — последний месяц. Конечная дата включает весь день.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()

	if s := c.Query("startDate"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return start, end, fiber.NewError(fiber.StatusBadRequest, "Invalid startDate format. Use YYYY-MM-DD")
		}
		start = parsed
	}
	if s := c.Query("endDate"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return start, end, fiber.NewError(fiber.StatusBadRequest, "Invalid endDate format. Use YYYY-MM-DD")
		}
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return start, end, nil
}

func (lc *LearningController) period(c *fiber.Ctx) (uint, time.Time, time.Time, error) {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return 0, time.Time{}, time.Time{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	start, end, err := parsePeriod(c)
	if err != nil {
		return 0, start, end, err
	}
	return userID, start, end, nil
}

func (lc *LearningController) GetSummary(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	summary, err := lc.History.Summary(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to build learning summary")
	}

	return utils.Success(c, fiber.StatusOK, summary)
}

// GetAccessHistory возвращает сырые события доступа за период вместе с
// временным рядом по дням.
func (lc *LearningController) GetAccessHistory(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	var accesses []models.MaterialAccess
	if err := lc.DB.Where("user_id = ? AND accessed_at BETWEEN ? AND ?", userID, start, end).
		Order("accessed_at DESC").
		Find(&accesses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch access history")
	}

	daily, err := lc.History.Daily(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to build daily stats")
	}

	result := make([]fiber.Map, 0, len(accesses))
	for _, a := range accesses {
		result = append(result, fiber.Map{
			"materialId":   a.MaterialID,
			"accessType":   a.AccessType,
			"spentMinutes": a.SpentMinutes,
			"accessedAt":   a.AccessedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"accesses": result,
		"daily":    daily,
	})
}

func (lc *LearningController) GetPatterns(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	patterns, err := lc.History.Patterns(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to build access patterns")
	}

	return utils.Success(c, fiber.StatusOK, patterns)
}

func (lc *LearningController) GetStreaks(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	streaks, err := lc.History.Streaks(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to build streak stats")
	}

	return utils.Success(c, fiber.StatusOK, streaks)
}

func (lc *LearningController) GetReport(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	report, err := lc.History.Report(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to build learning report")
	}

	return utils.Success(c, fiber.StatusOK, report)
}

// ExportCSV выгружает отчёт указанного типа (summary, daily, patterns)
// как text/csv с заголовком attachment.
func (lc *LearningController) ExportCSV(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	reportType := c.Query("type", "daily")

	var body []byte
	switch reportType {
	case "summary":
		body, err = lc.Exporter.SummaryCSV(userID, start, end)
	case "daily":
		body, err = lc.Exporter.DailyCSV(userID, start, end)
	case "patterns":
		body, err = lc.Exporter.PatternsCSV(userID, start, end)
	default:
		return utils.BadRequest(c, "type must be summary, daily or patterns")
	}
	if err != nil {
		return utils.InternalServerError(c, "Failed to export report")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="learning-`+reportType+`.csv"`)
	return c.Send(body)
}

// ExportXLSX выгружает полный отчёт книгой XLSX.
func (lc *LearningController) ExportXLSX(c *fiber.Ctx) error {
	userID, start, end, err := lc.period(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return utils.Error(c, fe.Code, fe)
	}

	body, err := lc.Exporter.ReportXLSX(userID, start, end)
	if err != nil {
		return utils.InternalServerError(c, "Failed to export report")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="learning-report.xlsx"`)
	return c.Send(body)
}
