package services

import (
	"fmt"
	"lms/backend/models"
	"sort"
	"time"

	"gorm.io/gorm"
)

// LearningHistoryService собирает отчёты по журналу доступов и прогрессу.
// Агрегация выполняется в Go по выбранным строкам: объёмы данных малы, а
// поведение не зависит от диалекта SQL. Границей дня считается локальная
// дата, не UTC. Пустые интервалы дают нулевые отчёты, не ошибки.
type LearningHistoryService struct {
	DB *gorm.DB
}

func NewLearningHistoryService(db *gorm.DB) *LearningHistoryService {
	return &LearningHistoryService{DB: db}
}

func (s *LearningHistoryService) fetchAccesses(userID uint, start, end time.Time) ([]models.MaterialAccess, error) {
	var accesses []models.MaterialAccess
	err := s.DB.Where("user_id = ? AND accessed_at BETWEEN ? AND ?", userID, start, end).
		Order("accessed_at ASC").
		Find(&accesses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access history: %w", err)
	}
	return accesses, nil
}

func localDay(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// Summary возвращает сводку активности за интервал.
// MostActiveHour == -1, если активности не было.
func (s *LearningHistoryService) Summary(userID uint, start, end time.Time) (models.LearningSummary, error) {
	summary := models.LearningSummary{MostActiveHour: -1}

	accesses, err := s.fetchAccesses(userID, start, end)
	if err != nil {
		return summary, err
	}

	var hours [24]int
	days := make(map[string]bool)

	for _, a := range accesses {
		summary.TotalAccessCount++
		summary.TotalSpentMinutes += a.SpentMinutes
		hours[a.AccessedAt.Local().Hour()]++
		days[localDay(a.AccessedAt)] = true
		if a.AccessType == "complete" {
			summary.MaterialsCompleted++
		}
	}

	if summary.TotalAccessCount > 0 {
		summary.AvgSessionMinutes = float64(summary.TotalSpentMinutes) / float64(summary.TotalAccessCount)
		best := 0
		for h, n := range hours {
			if n > hours[best] {
				best = h
			}
		}
		summary.MostActiveHour = best
	}
	summary.DistinctActiveDays = len(days)

	return summary, nil
}

// Daily возвращает временной ряд по дням, отсортированный по дате.
// Дни без активности опускаются: нулевое заполнение — обязанность потребителя.
func (s *LearningHistoryService) Daily(userID uint, start, end time.Time) ([]models.DailyStat, error) {
	accesses, err := s.fetchAccesses(userID, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*models.DailyStat)
	for _, a := range accesses {
		day := localDay(a.AccessedAt)
		stat, ok := byDay[day]
		if !ok {
			stat = &models.DailyStat{Date: day}
			byDay[day] = stat
		}
		stat.AccessCount++
		stat.SpentMinutes += a.SpentMinutes
		if a.AccessType == "complete" {
			stat.MaterialsCompleted++
		}
	}

	stats := make([]models.DailyStat, 0, len(byDay))
	for _, stat := range byDay {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })

	return stats, nil
}

// Patterns возвращает почасовую и недельную гистограммы доступов и разбивку
// по материалам. Корзины разреженные: часы и дни недели без активности
// не включаются.
func (s *LearningHistoryService) Patterns(userID uint, start, end time.Time) (models.AccessPatterns, error) {
	patterns := models.AccessPatterns{}

	accesses, err := s.fetchAccesses(userID, start, end)
	if err != nil {
		return patterns, err
	}

	var hours [24]int
	var weekdays [7]int
	type matAgg struct {
		count   int
		minutes int
	}
	byMaterial := make(map[uint]*matAgg)

	for _, a := range accesses {
		local := a.AccessedAt.Local()
		hours[local.Hour()]++
		weekdays[int(local.Weekday())]++

		agg, ok := byMaterial[a.MaterialID]
		if !ok {
			agg = &matAgg{}
			byMaterial[a.MaterialID] = agg
		}
		agg.count++
		agg.minutes += a.SpentMinutes
	}

	for h, n := range hours {
		if n > 0 {
			patterns.Hourly = append(patterns.Hourly, models.HourlyBucket{Hour: h, Count: n})
		}
	}
	for d, n := range weekdays {
		if n > 0 {
			patterns.Weekly = append(patterns.Weekly, models.WeekdayBucket{
				Weekday: time.Weekday(d).String(),
				Count:   n,
			})
		}
	}

	ids := make([]uint, 0, len(byMaterial))
	for id := range byMaterial {
		ids = append(ids, id)
	}
	titles := make(map[uint]string)
	if len(ids) > 0 {
		var materials []models.Material
		if err := s.DB.Where("id IN ?", ids).Find(&materials).Error; err != nil {
			return patterns, fmt.Errorf("failed to fetch materials: %w", err)
		}
		for _, m := range materials {
			titles[m.ID] = m.Title
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		agg := byMaterial[id]
		patterns.Materials = append(patterns.Materials, models.MaterialBreakdown{
			MaterialID:    id,
			MaterialTitle: titles[id],
			AccessCount:   agg.count,
			SpentMinutes:  agg.minutes,
		})
	}

	return patterns, nil
}

// Streaks вычисляет серии занятий: текущая серия, самая длинная серия,
// число активных дней и средние минуты на активный день. Серия — максимальный
// ряд подряд идущих календарных дней с ненулевым временем занятий. Текущая
// серия обнуляется, если последний активный день был раньше вчерашнего.
func (s *LearningHistoryService) Streaks(userID uint, start, end time.Time) (models.StreakStats, error) {
	stats := models.StreakStats{}

	daily, err := s.Daily(userID, start, end)
	if err != nil {
		return stats, err
	}

	totalMinutes := 0
	var prev time.Time
	run := 0
	var lastActive time.Time

	for _, day := range daily {
		if day.SpentMinutes <= 0 {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", day.Date, time.Local)
		if err != nil {
			return stats, fmt.Errorf("failed to parse day: %w", err)
		}

		if !prev.IsZero() && prev.AddDate(0, 0, 1).Equal(t) {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}

		stats.TotalActiveDays++
		totalMinutes += day.SpentMinutes
		prev = t
		lastActive = t
	}

	if stats.TotalActiveDays > 0 {
		stats.AvgMinutesPerActive = float64(totalMinutes) / float64(stats.TotalActiveDays)

		today, _ := time.ParseInLocation("2006-01-02", localDay(time.Now()), time.Local)
		if !lastActive.Before(today.AddDate(0, 0, -1)) {
			stats.CurrentStreak = run
		}
	}

	return stats, nil
}

// Report собирает все отчёты за интервал в один ответ.
func (s *LearningHistoryService) Report(userID uint, start, end time.Time) (models.LearningReport, error) {
	var report models.LearningReport
	var err error

	if report.Summary, err = s.Summary(userID, start, end); err != nil {
		return report, err
	}
	if report.Daily, err = s.Daily(userID, start, end); err != nil {
		return report, err
	}
	if report.Patterns, err = s.Patterns(userID, start, end); err != nil {
		return report, err
	}
	if report.Streaks, err = s.Streaks(userID, start, end); err != nil {
		return report, err
	}

	return report, nil
}
