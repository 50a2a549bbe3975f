package routes

import (
	"lms/backend/config"
	"lms/backend/controllers"
	"lms/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Materials routes
	materialsController := controllers.NewMaterialsController(db, cfg)
	progressController := controllers.NewProgressController(db, cfg)
	qaController := controllers.NewQAController(db, cfg)
	materials := app.Group("/api/materials", authMiddleware)
	materials.Get("/:id", materialsController.GetMaterial)
	materials.Get("/:id/download", materialsController.DownloadMaterial)
	materials.Post("/:id/access", materialsController.LogAccess)
	materials.Put("/:id/progress", progressController.UpdateManualProgress)
	materials.Get("/:id/history", progressController.GetMaterialHistory)
	materials.Get("/:id/questions", qaController.GetQuestions)
	materials.Post("/:id/questions", qaController.AskQuestion)

	// Progress history routes
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/:id/history", progressController.GetProgressHistory)
	progress.Get("/:id/history/latest", progressController.GetLatestProgressHistory)
	app.Get("/api/user/history", authMiddleware, progressController.GetUserHistory)

	// Learning history routes
	learningController := controllers.NewLearningController(db, cfg)
	learning := app.Group("/api/learning", authMiddleware)
	learning.Get("/summary", learningController.GetSummary)
	learning.Get("/access-history", learningController.GetAccessHistory)
	learning.Get("/patterns", learningController.GetPatterns)
	learning.Get("/streaks", learningController.GetStreaks)
	learning.Get("/report", learningController.GetReport)
	learning.Get("/export/csv", learningController.ExportCSV)
	learning.Get("/export/xlsx", learningController.ExportXLSX)

	// Q&A routes
	questions := app.Group("/api/questions", authMiddleware)
	questions.Post("/:id/answers", qaController.AnswerQuestion)
	questions.Put("/:id/resolve", qaController.ResolveQuestion)

	// Resource library routes
	resourcesController := controllers.NewResourcesController(db, cfg)
	resources := app.Group("/api/resources", authMiddleware)
	resources.Get("/", resourcesController.SearchResources)
	resources.Post("/", resourcesController.UploadResource)
	resources.Get("/:id/download", resourcesController.DownloadResource)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/analytics", adminController.GetPlatformAnalytics)
	admin.Get("/users", adminController.GetUsers)
	admin.Put("/users/role", adminController.SetUserRole)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Post("/courses/:id/lessons", coursesController.AddLesson)
	admin.Put("/courses/:id/lessons/:lessonId", coursesController.UpdateLesson)
	admin.Post("/lessons/:id/materials", materialsController.AddMaterial)
	admin.Delete("/materials/:id", materialsController.DeleteMaterial)
	admin.Delete("/resources/:id", resourcesController.DeleteResource)
}
