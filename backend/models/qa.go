package models

import "gorm.io/gorm"

type Question struct {
	gorm.Model
	MaterialID uint `gorm:"index"`
	UserID     uint
	UserName   string
	Title      string
	Text       string
	IsResolved bool `gorm:"default:false"`
	Answers    []Answer
}

type Answer struct {
	gorm.Model
	QuestionID uint `gorm:"index"`
	UserID     uint
	UserName   string
	Text       string
	IsAccepted bool `gorm:"default:false"`
}
