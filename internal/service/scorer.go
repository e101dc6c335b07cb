package service

import (
	"exam_trainer_backend/internal/model"
	"math"
	"strings"
	"time"
)

// isCorrect 选择题比对选项，编程题采用已附加的判题结论；
// 没有提交过代码的编程题一律判错。
func isCorrect(q *model.Question, a *model.Answer) bool {
	if a == nil {
		return false
	}
	switch q.Kind {
	case model.KindChoice:
		return a.SelectedOptionID != "" && a.SelectedOptionID == q.CorrectOptionID
	case model.KindCode:
		return strings.TrimSpace(a.Code) != "" && a.Judged && a.IsCorrect
	}
	return false
}

// ScoreExam 统计正确数与四舍五入后的百分比
func ScoreExam(questions []model.Question, answers map[string]*model.Answer) (score int, percentage int) {
	for i := range questions {
		if isCorrect(&questions[i], answers[questions[i].ID]) {
			score++
		}
	}
	if len(questions) > 0 {
		percentage = int(math.Round(float64(score) / float64(len(questions)) * 100))
	}
	return score, percentage
}

// BuildExamRecord 每场完成的考试生成一条历史记录
func BuildExamRecord(s *ExamSession, score, percentage int, autoSubmitted bool) *model.ExamRecord {
	return &model.ExamRecord{
		UserID:         s.UserID,
		Topic:          s.Topic,
		Difficulty:     s.Difficulty,
		Mode:           s.Mode,
		Score:          score,
		TotalQuestions: len(s.Questions),
		Percentage:     percentage,
		TimeSpent:      s.ElapsedTime,
		AutoSubmitted:  autoSubmitted,
		CompletedAt:    time.Now(),
	}
}
