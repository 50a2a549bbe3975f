package models

// Формы отчётов по истории обучения. Не таблицы — собираются сервисом.

type LearningSummary struct {
	TotalAccessCount     int     `json:"total_access_count"`
	TotalSpentMinutes    int     `json:"total_spent_minutes"`
	AvgSessionMinutes    float64 `json:"avg_session_minutes"`
	MostActiveHour       int     `json:"most_active_hour"` // -1 если активности не было
	MaterialsCompleted   int     `json:"materials_completed"`
	DistinctActiveDays   int     `json:"distinct_active_days"`
}

// DailyStat — одна точка временного ряда. Дни без активности не включаются:
// нулевое заполнение — обязанность потребителя.
type DailyStat struct {
	Date               string `json:"date"` // YYYY-MM-DD, локальная дата
	SpentMinutes       int    `json:"spent_minutes"`
	AccessCount        int    `json:"access_count"`
	MaterialsCompleted int    `json:"materials_completed"`
}

type HourlyBucket struct {
	Hour  int `json:"hour"` // 0-23
	Count int `json:"count"`
}

type WeekdayBucket struct {
	Weekday string `json:"weekday"` // Monday..Sunday
	Count   int    `json:"count"`
}

type MaterialBreakdown struct {
	MaterialID    uint   `json:"material_id"`
	MaterialTitle string `json:"material_title"`
	AccessCount   int    `json:"access_count"`
	SpentMinutes  int    `json:"spent_minutes"`
}

type AccessPatterns struct {
	Hourly    []HourlyBucket      `json:"hourly"`
	Weekly    []WeekdayBucket     `json:"weekly"`
	Materials []MaterialBreakdown `json:"materials"`
}

type StreakStats struct {
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	TotalActiveDays     int     `json:"total_active_days"`
	AvgMinutesPerActive float64 `json:"avg_minutes_per_active_day"`
}

type LearningReport struct {
	Summary  LearningSummary `json:"summary"`
	Daily    []DailyStat     `json:"daily"`
	Patterns AccessPatterns  `json:"patterns"`
	Streaks  StreakStats     `json:"streaks"`
}
