package services

import (
	"errors"
	"fmt"
	"lms/backend/config"
	"lms/backend/models"
	"time"

	"gorm.io/gorm"
)

// ManualProgressUpdate — запрос ручного обновления прогресса.
// Rate уже провалидирован HTTP-слоем: целое число в [0, 100].
type ManualProgressUpdate struct {
	Rate         int
	SpentMinutes *int // nil — оставить текущее значение
	Notes        string
}

// ProgressService — единственный владелец записи в MaterialProgress и
// ProgressHistory. Оба изменения ручного обновления выполняются в одной
// транзакции: либо видны оба, либо ни одно.
type ProgressService struct {
	DB      *gorm.DB
	Cfg     *config.Config
	History *ProgressHistoryService
}

func NewProgressService(db *gorm.DB, cfg *config.Config) *ProgressService {
	return &ProgressService{DB: db, Cfg: cfg, History: NewProgressHistoryService(db)}
}

// GetProgress возвращает текущий агрегат прогресса для пары (user, material)
// или (nil, nil), если пользователь ещё не открывал материал.
func (s *ProgressService) GetProgress(userID, materialID uint) (*models.MaterialProgress, error) {
	var progress models.MaterialProgress
	err := s.DB.Where("user_id = ? AND material_id = ?", userID, materialID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch progress: %w", err)
	}
	return &progress, nil
}

// syncMaterialsCompleted пересчитывает счётчик завершённых материалов
// в профиле пользователя. Вызывается при смене флага IsCompleted.
func syncMaterialsCompleted(tx *gorm.DB, userID uint) error {
	var completed int64
	err := tx.Model(&models.MaterialProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&completed).Error
	if err != nil {
		return err
	}

	var userProgress models.UserProgress
	if err := tx.Where("user_id = ?", userID).First(&userProgress).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		userProgress = models.UserProgress{UserID: userID}
	}
	userProgress.MaterialsCompleted = int(completed)
	return tx.Save(&userProgress).Error
}

// UpdateManualProgress записывает ручное изменение прогресса: обновляет текущий
// агрегат и добавляет запись в журнал. SpentMinutes перезаписывается абсолютным
// значением, не дельтой. Ставка 100 помечает материал завершённым.
//
// Повторная отправка той же ставки по умолчанию тоже попадает в журнал (полный
// аудит); поведение переключается конфигом RecordUnchangedProgress.
func (s *ProgressService) UpdateManualProgress(userID, materialID uint, update ManualProgressUpdate) (*models.MaterialProgress, error) {
	var progress models.MaterialProgress

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND material_id = ?", userID, materialID).First(&progress).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			progress = models.MaterialProgress{
				UserID:     userID,
				MaterialID: materialID,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		rate := float64(update.Rate)
		minutes := progress.SpentMinutes
		if update.SpentMinutes != nil {
			minutes = *update.SpentMinutes
		}

		unchanged := progress.ManualProgressRate == rate && progress.SpentMinutes == minutes
		wasCompleted := progress.IsCompleted

		progress.ProgressRate = rate
		progress.ManualProgressRate = rate
		progress.SpentMinutes = minutes
		progress.IsCompleted = update.Rate == 100
		progress.LastAccessed = time.Now()

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		if progress.IsCompleted != wasCompleted {
			if err := syncMaterialsCompleted(tx, userID); err != nil {
				return err
			}
		}

		if unchanged && !s.Cfg.RecordUnchangedProgress {
			return nil
		}

		history := NewProgressHistoryService(tx)
		_, err = history.CreateHistory(progress.ID, rate, minutes, userID, update.Notes)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update manual progress: %w", err)
	}

	return &progress, nil
}

// LogMaterialAccess записывает событие доступа к материалу (view/download/complete)
// и автоматически подтягивает текущий прогресс: минуты накапливаются, ставка для
// видео выводится из просмотренного времени. Ручная ставка никогда не понижается
// автоматикой.
func (s *ProgressService) LogMaterialAccess(userID uint, material *models.Material, accessType string, spentMinutes int) (*models.MaterialProgress, error) {
	var progress models.MaterialProgress

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		access := models.MaterialAccess{
			UserID:       userID,
			MaterialID:   material.ID,
			AccessType:   accessType,
			SpentMinutes: spentMinutes,
			AccessedAt:   time.Now(),
		}
		if err := tx.Create(&access).Error; err != nil {
			return err
		}

		err := tx.Where("user_id = ? AND material_id = ?", userID, material.ID).First(&progress).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			progress = models.MaterialProgress{
				UserID:     userID,
				MaterialID: material.ID,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		progress.SpentMinutes += spentMinutes
		wasCompleted := progress.IsCompleted

		rate := progress.ProgressRate
		if material.MaterialType == "video" && material.DurationMinutes > 0 {
			watched := float64(progress.SpentMinutes) / float64(material.DurationMinutes) * 100
			if watched > 100 {
				watched = 100
			}
			if watched > rate {
				rate = watched
			}
		}
		if accessType == "complete" {
			rate = 100
		}
		if progress.ManualProgressRate > rate {
			rate = progress.ManualProgressRate
		}

		progress.ProgressRate = rate
		progress.IsCompleted = rate >= 100
		progress.LastAccessed = time.Now()

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		if progress.IsCompleted != wasCompleted {
			if err := syncMaterialsCompleted(tx, userID); err != nil {
				return err
			}
		}

		history := NewProgressHistoryService(tx)
		_, err = history.CreateHistory(progress.ID, rate, progress.SpentMinutes, userID, "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log material access: %w", err)
	}

	return &progress, nil
}

// DeleteProgress удаляет агрегат прогресса вместе со всем его журналом
// (каскадная зачистка). Возвращает число удалённых записей журнала.
func (s *ProgressService) DeleteProgress(progressID uint) (int64, error) {
	var deleted int64

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var progress models.MaterialProgress
		if err := tx.First(&progress, progressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		history := NewProgressHistoryService(tx)
		n, err := history.DeleteHistoryByProgressID(progressID)
		if err != nil {
			return err
		}
		deleted = n

		if err := tx.Unscoped().Delete(&models.MaterialProgress{}, progressID).Error; err != nil {
			return err
		}
		return syncMaterialsCompleted(tx, progress.UserID)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete progress: %w", err)
	}

	return deleted, nil
}
