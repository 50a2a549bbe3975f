package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string
	ShortDesc   string
	Description string
	Difficulty  string // beginner, intermediate, advanced
	Topic       string
	AuthorID    uint
	LogoURL     string
	IsPublished bool `gorm:"default:false"`
	Lessons     []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID      uint `gorm:"index"`
	Title         string
	Description   string
	Content       string
	SequenceOrder int
	Materials     []Material
}
