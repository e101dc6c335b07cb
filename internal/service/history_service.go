package service

import (
	"bytes"
	"context"
	"encoding/json"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/repository"
	"exam_trainer_backend/internal/util"
	"fmt"

	"gorm.io/gorm"
)

// HistoryService 历史成绩的查询、汇总与导出
type HistoryService struct {
	RecordRepo *repository.ExamRecordRepository
	Storage    *StorageService
}

func NewHistoryService(recordRepo *repository.ExamRecordRepository, storage *StorageService) *HistoryService {
	return &HistoryService{RecordRepo: recordRepo, Storage: storage}
}

func (s *HistoryService) List(userID uint, page, limit int) ([]model.ExamRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.RecordRepo.ListByUser(userID, page, limit)
}

func (s *HistoryService) Stats(userID uint) (*model.HistoryStats, error) {
	return s.RecordRepo.Stats(userID)
}

// examReport 导出文件的内容结构
type examReport struct {
	Record      *model.ExamRecord `json:"record"`
	GeneratedBy string            `json:"generatedBy"`
}

// Export 把一条历史记录渲染成JSON报告并上传到存储
func (s *HistoryService) Export(ctx context.Context, userID uint, recordID string) (string, error) {
	record, err := s.RecordRepo.FindByID(userID, recordID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", util.ErrRecordNotFound
		}
		return "", err
	}

	report := examReport{
		Record:      record,
		GeneratedBy: "exam-trainer",
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("reports/exam_%s.json", record.ID)
	return s.Storage.Provider.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), "application/json")
}
