package models

import "gorm.io/gorm"

type Resource struct {
	gorm.Model
	Title         string
	Description   string
	Category      string
	FileURL       string
	FilePath      string
	UploadedBy    uint
	DownloadCount int `gorm:"default:0"`
}
