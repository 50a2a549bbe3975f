package services

import (
	"errors"
	"fmt"
	"lms/backend/models"

	"gorm.io/gorm"
)

// ProgressHistoryService управляет журналом изменений прогресса.
// Чистый слой доступа к данным: валидация и побочные эффекты — забота вызывающего
// (см. ProgressService). Отсутствие записей — пустой результат, не ошибка.
type ProgressHistoryService struct {
	DB *gorm.DB
}

func NewProgressHistoryService(db *gorm.DB) *ProgressHistoryService {
	return &ProgressHistoryService{DB: db}
}

// CreateHistory добавляет одну неизменяемую запись в журнал.
// progressRate и spentMinutes считаются уже провалидированными выше по стеку.
func (s *ProgressHistoryService) CreateHistory(progressID uint, progressRate float64, spentMinutes int, changedBy uint, notes string) (*models.ProgressHistory, error) {
	entry := models.ProgressHistory{
		ProgressID:   progressID,
		ProgressRate: progressRate,
		SpentMinutes: spentMinutes,
		ChangedBy:    changedBy,
		Notes:        notes,
	}

	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create progress history: %w", err)
	}

	return &entry, nil
}

// GetHistoryByProgressID возвращает все записи журнала для агрегата прогресса,
// новые первыми.
func (s *ProgressHistoryService) GetHistoryByProgressID(progressID uint) ([]models.ProgressHistory, error) {
	var entries []models.ProgressHistory
	err := s.DB.Where("progress_id = ?", progressID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress history: %w", err)
	}
	return entries, nil
}

// GetHistoryByUserID возвращает все изменения, сделанные пользователем,
// по всем материалам — аудит "что менял этот пользователь".
func (s *ProgressHistoryService) GetHistoryByUserID(userID uint) ([]models.ProgressHistory, error) {
	var entries []models.ProgressHistory
	err := s.DB.Where("changed_by = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress history: %w", err)
	}
	return entries, nil
}

// GetLatestHistory возвращает последнюю запись или (nil, nil), если журнал пуст.
func (s *ProgressHistoryService) GetLatestHistory(progressID uint) (*models.ProgressHistory, error) {
	var entry models.ProgressHistory
	err := s.DB.Where("progress_id = ?", progressID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch progress history: %w", err)
	}
	return &entry, nil
}

// DeleteHistoryByProgressID удаляет все записи журнала для агрегата прогресса
// и возвращает количество удалённых строк. Используется только при каскадном
// удалении самого агрегата, не как пользовательская операция.
func (s *ProgressHistoryService) DeleteHistoryByProgressID(progressID uint) (int64, error) {
	result := s.DB.Unscoped().
		Where("progress_id = ?", progressID).
		Delete(&models.ProgressHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete progress history: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetHistoryByMaterialID возвращает записи журнала для пары (материал, пользователь),
// через join с агрегатом прогресса. К каждой записи прикреплён сам агрегат,
// чтобы потребитель видел id/userId/materialId владельца.
func (s *ProgressHistoryService) GetHistoryByMaterialID(materialID, userID uint) ([]models.ProgressHistory, error) {
	var entries []models.ProgressHistory
	err := s.DB.
		Joins("JOIN material_progresses ON material_progresses.id = progress_histories.progress_id").
		Where("material_progresses.material_id = ? AND material_progresses.user_id = ?", materialID, userID).
		Order("progress_histories.created_at DESC, progress_histories.id DESC").
		Preload("Progress").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress history: %w", err)
	}
	return entries, nil
}
