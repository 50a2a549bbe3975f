package models

import (
	"time"

	"gorm.io/gorm"
)

type Material struct {
	gorm.Model
	LessonID        uint `gorm:"index"`
	Title           string
	Description     string
	MaterialType    string // file, url, video
	URL             string
	FilePath        string
	DurationMinutes int // for videos, 0 otherwise
	AuthorID        uint
}

// MaterialProgress — текущее состояние прохождения материала пользователем.
// Одна строка на пару (user, material), обновляется при каждом событии.
type MaterialProgress struct {
	gorm.Model
	UserID             uint `gorm:"index:idx_user_material,unique"`
	MaterialID         uint `gorm:"index:idx_user_material,unique"`
	ProgressRate       float64
	ManualProgressRate float64
	SpentMinutes       int
	IsCompleted        bool `gorm:"default:false"`
	LastAccessed       time.Time
}

// ProgressHistory — неизменяемый журнал изменений прогресса.
// Строки никогда не обновляются и не переиспользуются: каждое изменение
// ставки прогресса добавляет ровно одну новую запись.
type ProgressHistory struct {
	gorm.Model
	ProgressID   uint `gorm:"index;not null"`
	ProgressRate float64
	SpentMinutes int
	ChangedBy    uint `gorm:"index"`
	Notes        string

	Progress MaterialProgress `gorm:"foreignKey:ProgressID"`
}

type MaterialAccess struct {
	gorm.Model
	UserID       uint `gorm:"index"`
	MaterialID   uint `gorm:"index"`
	AccessType   string // view, download, complete
	SpentMinutes int
	AccessedAt   time.Time `gorm:"index"`
}
