package controllers

import (
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

// GetPlatformAnalytics возвращает аналитику по всей платформе.
func (ac *AdminController) GetPlatformAnalytics(c *fiber.Ctx) error {
	// Основные метрики платформы
	var metrics struct {
		TotalUsers          int64   `json:"total_users"`
		ActiveUsers         int64   `json:"active_users"`
		NewUsers            int64   `json:"new_users"`
		TotalCourses        int64   `json:"total_courses"`
		TotalMaterials      int64   `json:"total_materials"`
		AvgMaterialProgress float64 `json:"avg_material_progress"`
	}

	ac.DB.Model(&models.User{}).Count(&metrics.TotalUsers)
	ac.DB.Model(&models.LoginHistory{}).
		Where("login_time > ?", time.Now().AddDate(0, 0, -30)).
		Distinct("user_id").
		Count(&metrics.ActiveUsers)
	ac.DB.Model(&models.User{}).Where("created_at > ?",
		time.Now().AddDate(0, 0, -7)).Count(&metrics.NewUsers)
	ac.DB.Model(&models.Course{}).Count(&metrics.TotalCourses)
	ac.DB.Model(&models.Material{}).Count(&metrics.TotalMaterials)
	ac.DB.Model(&models.MaterialProgress{}).
		Select("COALESCE(AVG(progress_rate), 0)").Scan(&metrics.AvgMaterialProgress)

	// Самые посещаемые материалы
	var popularMaterials []map[string]interface{}
	ac.DB.Raw(`
		SELECT
			m.id,
			m.title,
			COUNT(ma.id) as accesses,
			COALESCE(SUM(ma.spent_minutes), 0) as spent_minutes
		FROM materials m
		LEFT JOIN material_accesses ma ON ma.material_id = m.id
		GROUP BY m.id, m.title
		ORDER BY accesses DESC
		LIMIT 5
	`).Scan(&popularMaterials)

	// Последние ежедневные снимки планировщика
	var snapshots []models.PlatformAnalytics
	ac.DB.Order("date DESC").Limit(30).Find(&snapshots)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"metrics":           metrics,
		"popular_materials": popularMaterials,
		"daily_snapshots":   snapshots,
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

// GetUsers возвращает список пользователей с их прогрессом.
func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := ac.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch users")
	}

	result := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		var progress models.UserProgress
		ac.DB.Where("user_id = ?", user.ID).First(&progress)

		result = append(result, fiber.Map{
			"id":                  user.ID,
			"username":            user.Username,
			"email":               user.Email,
			"role":                user.Role,
			"group":               user.Group,
			"university":          user.University,
			"streak_days":         progress.StreakDays,
			"materials_completed": progress.MaterialsCompleted,
			"created_at":          user.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// SetUserRole назначает пользователю роль user или admin.
func (ac *AdminController) SetUserRole(c *fiber.Ctx) error {
	type RoleInput struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}

	var input RoleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Role != "user" && input.Role != "admin" {
		return utils.BadRequest(c, "role must be user or admin")
	}

	var user models.User
	if err := ac.DB.First(&user, input.UserID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.Role = input.Role
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":   user.ID,
		"role": user.Role,
	})
}
