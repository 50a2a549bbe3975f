package controllers

import (
	"errors"
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/services"
	"lms/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MaterialsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewMaterialsController(db *gorm.DB, cfg *config.Config) *MaterialsController {
	return &MaterialsController{
		DB:       db,
		Cfg:      cfg,
		Progress: services.NewProgressService(db, cfg),
	}
}

func (mc *MaterialsController) findMaterial(c *fiber.Ctx) (*models.Material, error) {
	materialID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid material ID")
	}

	var material models.Material
	if err := mc.DB.First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Material not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return &material, nil
}

// GetMaterial возвращает материал вместе с текущим прогрессом пользователя
// и регистрирует событие просмотра.
func (mc *MaterialsController) GetMaterial(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	material, err := mc.findMaterial(c)
	if err != nil {
		var fe *fiber.Error
		errors.As(err, &fe)
		return utils.Error(c, fe.Code, fe)
	}

	progress, err := mc.Progress.LogMaterialAccess(userID, material, "view", 0)
	if err != nil {
		return utils.InternalServerError(c, "Failed to record material access")
	}

	return c.JSON(fiber.Map{
		"material": material,
		"progress": progress,
	})
}

// LogAccess регистрирует явное событие доступа: просмотр с затраченным
// временем, скачивание или завершение.
func (mc *MaterialsController) LogAccess(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	material, err := mc.findMaterial(c)
	if err != nil {
		var fe *fiber.Error
		errors.As(err, &fe)
		return utils.Error(c, fe.Code, fe)
	}

	type AccessInput struct {
		AccessType   string `json:"access_type"`
		SpentMinutes int    `json:"spent_minutes"`
	}

	var input AccessInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	switch input.AccessType {
	case "view", "download", "complete":
	default:
		return utils.BadRequest(c, "access_type must be view, download or complete")
	}
	if input.SpentMinutes < 0 {
		return utils.BadRequest(c, "spent_minutes must be non-negative")
	}

	progress, err := mc.Progress.LogMaterialAccess(userID, material, input.AccessType, input.SpentMinutes)
	if err != nil {
		return utils.InternalServerError(c, "Failed to record material access")
	}

	return utils.Success(c, fiber.StatusOK, progress)
}

// DownloadMaterial отдаёт файл материала и регистрирует скачивание.
func (mc *MaterialsController) DownloadMaterial(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	material, err := mc.findMaterial(c)
	if err != nil {
		var fe *fiber.Error
		errors.As(err, &fe)
		return utils.Error(c, fe.Code, fe)
	}

	if material.MaterialType != "file" || material.FilePath == "" {
		return utils.BadRequest(c, "Material has no downloadable file")
	}

	if _, err := mc.Progress.LogMaterialAccess(userID, material, "download", 0); err != nil {
		return utils.InternalServerError(c, "Failed to record material access")
	}

	return c.Download(material.FilePath, material.Title)
}

// AddMaterial прикрепляет материал к уроку (только для админов).
func (mc *MaterialsController) AddMaterial(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := mc.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var material models.Material
	if err := c.BodyParser(&material); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	switch material.MaterialType {
	case "file", "url", "video":
	default:
		return utils.BadRequest(c, "material_type must be file, url or video")
	}
	if material.Title == "" {
		return utils.BadRequest(c, "title is required")
	}

	material.LessonID = lesson.ID
	material.AuthorID = userID

	if err := mc.DB.Create(&material).Error; err != nil {
		return utils.InternalServerError(c, "Could not create material")
	}

	return c.JSON(fiber.Map{
		"message":  "Material added",
		"material": material,
	})
}

// DeleteMaterial удаляет материал вместе с прогрессом и журналом всех
// пользователей по нему (только для админов).
func (mc *MaterialsController) DeleteMaterial(c *fiber.Ctx) error {
	material, err := mc.findMaterial(c)
	if err != nil {
		var fe *fiber.Error
		errors.As(err, &fe)
		return utils.Error(c, fe.Code, fe)
	}

	var progresses []models.MaterialProgress
	mc.DB.Where("material_id = ?", material.ID).Find(&progresses)

	var deletedHistory int64
	for _, p := range progresses {
		n, err := mc.Progress.DeleteProgress(p.ID)
		if err != nil {
			return utils.InternalServerError(c, "Failed to delete progress")
		}
		deletedHistory += n
	}

	if err := mc.DB.Unscoped().Delete(material).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete material")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"deleted_history_entries": deletedHistory,
	})
}
