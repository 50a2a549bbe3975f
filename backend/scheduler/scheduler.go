package scheduler

import (
	"log"
	"time"

	"lms/backend/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Scheduler запускает фоновые задачи платформы.
// Пока единственная задача — ежедневный снимок метрик в platform_analytics.
type Scheduler struct {
	scheduler *gocron.Scheduler
	db        *gorm.DB
	logger    *log.Logger
}

func New(db *gorm.DB, logger *log.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		db:        db,
		logger:    logger,
	}
}

// Start регистрирует задачи и запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("00:05").Do(s.snapshotPlatformAnalytics)
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// snapshotPlatformAnalytics записывает один снимок метрик за прошедшие сутки.
// Повторный запуск за ту же дату перезаписывает снимок, а не дублирует его.
func (s *Scheduler) snapshotPlatformAnalytics() {
	date := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	snapshot := models.PlatformAnalytics{Date: date}

	var totalUsers, activeUsers, courses, materials int64
	s.db.Model(&models.User{}).Count(&totalUsers)
	s.db.Model(&models.LoginHistory{}).
		Where("login_time > ?", time.Now().AddDate(0, 0, -30)).
		Distinct("user_id").
		Count(&activeUsers)
	s.db.Model(&models.Course{}).Count(&courses)
	s.db.Model(&models.Material{}).Count(&materials)

	snapshot.TotalUsers = int(totalUsers)
	snapshot.ActiveUsers = int(activeUsers)
	snapshot.CoursesCreated = int(courses)
	snapshot.MaterialsCreated = int(materials)

	s.db.Model(&models.MaterialProgress{}).
		Select("COALESCE(AVG(progress_rate), 0)").
		Scan(&snapshot.AvgMaterialProgress)

	var spent int64
	s.db.Model(&models.MaterialAccess{}).
		Select("COALESCE(SUM(spent_minutes), 0)").
		Scan(&spent)
	snapshot.TotalSpentMinutes = int(spent)

	var existing models.PlatformAnalytics
	if err := s.db.Where("date = ?", date).First(&existing).Error; err == nil {
		snapshot.ID = existing.ID
	}

	if err := s.db.Save(&snapshot).Error; err != nil {
		s.logger.Printf("analytics snapshot failed: %v", err)
		return
	}
	s.logger.Printf("analytics snapshot written for %s", date)
}
