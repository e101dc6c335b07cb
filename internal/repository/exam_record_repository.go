package repository

import (
	"exam_trainer_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRecordRepository struct {
	DB *gorm.DB
}

func NewExamRecordRepository(db *gorm.DB) *ExamRecordRepository {
	return &ExamRecordRepository{DB: db}
}

// Create 历史记录只追加，不提供更新和删除
func (r *ExamRecordRepository) Create(record *model.ExamRecord) error {
	return r.DB.Create(record).Error
}

func (r *ExamRecordRepository) FindByID(userID uint, id string) (*model.ExamRecord, error) {
	var record model.ExamRecord
	err := r.DB.Where("user_id = ? AND id = ?", userID, id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUser 按完成时间倒序分页
func (r *ExamRecordRepository) ListByUser(userID uint, page, limit int) ([]model.ExamRecord, int64, error) {
	var total int64
	query := r.DB.Model(&model.ExamRecord{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.ExamRecord
	offset := (page - 1) * limit
	err := query.Order("completed_at desc").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

func (r *ExamRecordRepository) Stats(userID uint) (*model.HistoryStats, error) {
	var stats model.HistoryStats

	if err := r.DB.Model(&model.ExamRecord{}).Where("user_id = ?", userID).Count(&stats.ExamCount).Error; err != nil {
		return nil, err
	}

	if stats.ExamCount == 0 {
		return &stats, nil
	}

	row := r.DB.Model(&model.ExamRecord{}).
		Select("ROUND(AVG(percentage)) as avg_pct, MAX(percentage) as max_pct").
		Where("user_id = ?", userID).
		Row()

	var avgPct, maxPct float64
	if err := row.Scan(&avgPct, &maxPct); err != nil {
		return nil, err
	}

	stats.AveragePercentage = int(avgPct)
	stats.BestPercentage = int(maxPct)
	return &stats, nil
}
