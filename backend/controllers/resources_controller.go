package controllers

import (
	"errors"
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResourcesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewResourcesController(db *gorm.DB, cfg *config.Config) *ResourcesController {
	return &ResourcesController{DB: db, Cfg: cfg}
}

// SearchResources ищет по библиотеке ресурсов с фильтром по категории.
func (rc *ResourcesController) SearchResources(c *fiber.Ctx) error {
	search := c.Query("search")
	category := c.Query("category")

	query := rc.DB.Model(&models.Resource{})

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var resources []models.Resource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return utils.InternalServerError(c, "Failed to search learning materials")
	}

	return utils.Success(c, fiber.StatusOK, resources)
}

// UploadResource принимает файл формой multipart и сохраняет его под
// случайным именем, чтобы исключить коллизии и подстановку путей.
func (rc *ResourcesController) UploadResource(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "file is required")
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	stored := uuid.NewString() + filepath.Ext(file.Filename)
	path := filepath.Join(rc.Cfg.UploadDir, stored)

	if err := c.SaveFile(file, path); err != nil {
		return utils.InternalServerError(c, "Could not save file")
	}

	resource := models.Resource{
		Title:       title,
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		FilePath:    path,
		UploadedBy:  userID,
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not create resource")
	}

	return c.JSON(fiber.Map{
		"message":  "Resource uploaded",
		"resource": resource,
	})
}

// DownloadResource отдаёт файл ресурса и увеличивает счётчик скачиваний.
func (rc *ResourcesController) DownloadResource(c *fiber.Ctx) error {
	resourceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	var resource models.Resource
	if err := rc.DB.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Resource not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	rc.DB.Model(&resource).UpdateColumn("download_count", gorm.Expr("download_count + 1"))

	if resource.FilePath == "" {
		return c.Redirect(resource.FileURL)
	}
	return c.Download(resource.FilePath, resource.Title)
}

// DeleteResource удаляет ресурс из библиотеки (только для админов).
func (rc *ResourcesController) DeleteResource(c *fiber.Ctx) error {
	resourceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}

	result := rc.DB.Delete(&models.Resource{}, resourceID)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete resource")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Resource not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
