package model

import "time"

// ExamRecord 一次完整考试的历史记录，只追加不修改。
type ExamRecord struct {
	UUIDBase
	UserID         uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Topic          string     `gorm:"size:255;not null" json:"topic"`
	Difficulty     Difficulty `gorm:"size:20" json:"difficulty"`
	Mode           ExamMode   `gorm:"size:20" json:"mode"`
	Score          int        `gorm:"not null" json:"score"`
	TotalQuestions int        `gorm:"not null" json:"totalQuestions"`
	Percentage     int        `gorm:"not null" json:"percentage"`
	TimeSpent      int        `gorm:"not null" json:"timeSpent"` // 秒
	AutoSubmitted  bool       `gorm:"default:false" json:"autoSubmitted"`
	CompletedAt    time.Time  `json:"completedAt"`
}

func (ExamRecord) TableName() string {
	return "exam_records"
}

// HistoryStats 历史成绩汇总
type HistoryStats struct {
	ExamCount         int64 `json:"examCount"`
	AveragePercentage int   `json:"averagePercentage"`
	BestPercentage    int   `json:"bestPercentage"`
}
