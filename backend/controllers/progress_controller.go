package controllers

import (
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/services"
	"lms/backend/utils"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
	History  *services.ProgressHistoryService
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{
		DB:       db,
		Cfg:      cfg,
		Progress: services.NewProgressService(db, cfg),
		History:  services.NewProgressHistoryService(db),
	}
}

func historyEntry(h models.ProgressHistory) fiber.Map {
	return fiber.Map{
		"id":           h.ID,
		"progressId":   h.ProgressID,
		"progressRate": h.ProgressRate,
		"spentMinutes": h.SpentMinutes,
		"changedBy":    h.ChangedBy,
		"notes":        h.Notes,
		"createdAt":    h.CreatedAt,
	}
}

// UpdateManualProgress принимает ручное обновление прогресса по материалу.
// Ставка — только целое число в [0, 100]; дробные и выходящие за диапазон
// значения отклоняются здесь, до сервисного слоя.
func (pc *ProgressController) UpdateManualProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	var material models.Material
	if err := pc.DB.First(&material, materialID).Error; err != nil {
		return utils.NotFound(c, "Material not found")
	}

	type ProgressInput struct {
		ProgressRate *float64 `json:"progressRate"`
		SpentMinutes *int     `json:"spentMinutes"`
		Notes        string   `json:"notes"`
	}

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.ProgressRate == nil {
		return utils.BadRequest(c, "progressRate is required")
	}
	rate := *input.ProgressRate
	if rate != math.Trunc(rate) {
		return utils.BadRequest(c, "progressRate must be an integer")
	}
	if rate < 0 || rate > 100 {
		return utils.BadRequest(c, "progressRate must be between 0 and 100")
	}
	if input.SpentMinutes != nil && *input.SpentMinutes < 0 {
		return utils.BadRequest(c, "spentMinutes must be non-negative")
	}

	progress, err := pc.Progress.UpdateManualProgress(userID, uint(materialID), services.ManualProgressUpdate{
		Rate:         int(rate),
		SpentMinutes: input.SpentMinutes,
		Notes:        input.Notes,
	})
	if err != nil {
		return utils.InternalServerError(c, "Failed to update progress")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"progressId":   progress.ID,
		"progressRate": progress.ProgressRate,
		"spentMinutes": progress.SpentMinutes,
		"isCompleted":  progress.IsCompleted,
		"lastAccessed": progress.LastAccessed,
	})
}

// GetProgressHistory возвращает журнал изменений для агрегата прогресса,
// новые записи первыми. Пустой журнал — пустой массив, не 404.
func (pc *ProgressController) GetProgressHistory(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, pc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid progress ID")
	}

	entries, err := pc.History.GetHistoryByProgressID(uint(progressID))
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch progress history")
	}

	result := make([]fiber.Map, 0, len(entries))
	for _, h := range entries {
		result = append(result, historyEntry(h))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetLatestProgressHistory возвращает последнюю запись журнала или null.
func (pc *ProgressController) GetLatestProgressHistory(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, pc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progressID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid progress ID")
	}

	entry, err := pc.History.GetLatestHistory(uint(progressID))
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch progress history")
	}
	if entry == nil {
		return utils.Success(c, fiber.StatusOK, nil)
	}

	return utils.Success(c, fiber.StatusOK, historyEntry(*entry))
}

// GetUserHistory возвращает все изменения, сделанные текущим пользователем, —
// аудиторский срез по всем материалам.
func (pc *ProgressController) GetUserHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	entries, err := pc.History.GetHistoryByUserID(userID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch progress history")
	}

	result := make([]fiber.Map, 0, len(entries))
	for _, h := range entries {
		result = append(result, historyEntry(h))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetMaterialHistory возвращает журнал текущего пользователя по материалу;
// к каждой записи прикреплена идентичность агрегата-владельца.
func (pc *ProgressController) GetMaterialHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid material ID")
	}

	entries, err := pc.History.GetHistoryByMaterialID(uint(materialID), userID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch progress history")
	}

	result := make([]fiber.Map, 0, len(entries))
	for _, h := range entries {
		entry := historyEntry(h)
		entry["progress"] = fiber.Map{
			"id":         h.Progress.ID,
			"userId":     h.Progress.UserID,
			"materialId": h.Progress.MaterialID,
		}
		result = append(result, entry)
	}

	return utils.Success(c, fiber.StatusOK, result)
}
