package models

import "gorm.io/gorm"

// PlatformAnalytics — ежедневный снимок метрик платформы,
// записывается планировщиком раз в сутки.
type PlatformAnalytics struct {
	gorm.Model
	TotalUsers         int
	ActiveUsers        int
	CoursesCreated     int
	MaterialsCreated   int
	AvgMaterialProgress float64
	TotalSpentMinutes  int
	Date               string // YYYY-MM-DD
}
