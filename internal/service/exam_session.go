package service

import (
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/util"
	"strings"
	"time"
)

// CodeAnswerThreshold 代码短于该长度视为未作答，
// 防止编辑器里的占位内容被算作答案。
const CodeAnswerThreshold = 10

// ExamSession 一场进行中考试的全部内存状态。
// 本身不加锁，由 SessionService 统一持锁访问。
type ExamSession struct {
	UserID     uint
	Topic      string
	Difficulty model.Difficulty
	Mode       model.ExamMode

	// TimeLimit 秒，0 表示不限时
	TimeLimit int

	Questions    []model.Question
	Answers      map[string]*model.Answer
	ElapsedTime  int
	CurrentIndex int
	StartedAt    time.Time
	Finished     bool

	// 超时自动交卷只触发一次
	autoSubmitted bool
}

func NewExamSession(userID uint, topic string, difficulty model.Difficulty, mode model.ExamMode, timeLimit int, questions []model.Question) *ExamSession {
	return &ExamSession{
		UserID:     userID,
		Topic:      topic,
		Difficulty: difficulty,
		Mode:       mode,
		TimeLimit:  timeLimit,
		Questions:  questions,
		Answers:    make(map[string]*model.Answer),
		StartedAt:  time.Now(),
	}
}

// RestoreSession 从快照还原，题目集、账本、用时、题号完全一致
func RestoreSession(userID uint, snap *model.SessionSnapshot) *ExamSession {
	answers := make(map[string]*model.Answer, len(snap.Answers))
	for qid, a := range snap.Answers {
		copied := *a
		answers[qid] = &copied
	}
	return &ExamSession{
		UserID:       userID,
		Topic:        snap.Topic,
		Difficulty:   snap.Difficulty,
		Mode:         snap.Mode,
		TimeLimit:    snap.TimeLimit,
		Questions:    snap.Questions,
		Answers:      answers,
		ElapsedTime:  snap.ElapsedTime,
		CurrentIndex: snap.CurrentIndex,
		StartedAt:    time.Now(),
	}
}

func (s *ExamSession) FindQuestion(questionID string) *model.Question {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return &s.Questions[i]
		}
	}
	return nil
}

// answerFor 惰性创建，保证账本里每道题至多一条记录
func (s *ExamSession) answerFor(questionID string) *model.Answer {
	if a, ok := s.Answers[questionID]; ok {
		return a
	}
	a := &model.Answer{QuestionID: questionID}
	s.Answers[questionID] = a
	return a
}

// RecordChoice 记录选项并清空该答案的编程相关字段。
// 选项ID不与题目选项集交叉校验，过期的选项留给评分阶段判错。
func (s *ExamSession) RecordChoice(questionID, optionID string) error {
	if s.FindQuestion(questionID) == nil {
		return util.ErrQuestionNotFound
	}
	a := s.answerFor(questionID)
	a.SelectedOptionID = optionID
	a.Code = ""
	a.Judged = false
	a.IsCorrect = false
	a.Feedback = ""
	a.Output = ""
	return nil
}

// RecordCode 更新代码文本，已有的判题结果保留到新结果到达为止
func (s *ExamSession) RecordCode(questionID, code string) error {
	if s.FindQuestion(questionID) == nil {
		return util.ErrQuestionNotFound
	}
	a := s.answerFor(questionID)
	a.Code = code
	return nil
}

// AttachJudgment 写入外部判题结果
func (s *ExamSession) AttachJudgment(questionID string, result *JudgeResult) error {
	if s.FindQuestion(questionID) == nil {
		return util.ErrQuestionNotFound
	}
	a := s.answerFor(questionID)
	a.Judged = true
	a.IsCorrect = result.Passed
	a.Feedback = result.Feedback
	a.Output = result.Output
	return nil
}

// SetTestInput 记录生成的测试用例文本
func (s *ExamSession) SetTestInput(questionID, text string) error {
	if s.FindQuestion(questionID) == nil {
		return util.ErrQuestionNotFound
	}
	s.answerFor(questionID).TestInput = text
	return nil
}

// IsAnswered 选了选项，或代码去掉首尾空白后超过阈值
func (s *ExamSession) IsAnswered(questionID string) bool {
	a, ok := s.Answers[questionID]
	if !ok {
		return false
	}
	if a.SelectedOptionID != "" {
		return true
	}
	return len(strings.TrimSpace(a.Code)) >= CodeAnswerThreshold
}

func (s *ExamSession) AnsweredCount() int {
	count := 0
	for _, q := range s.Questions {
		if s.IsAnswered(q.ID) {
			count++
		}
	}
	return count
}

// Tick 推进一秒。返回 true 表示本次推进触发了超时自动交卷，
// 限时到达后重复 Tick 不会再次触发。
func (s *ExamSession) Tick() bool {
	if s.Finished {
		return false
	}
	s.ElapsedTime++
	if s.TimeLimit > 0 && s.ElapsedTime >= s.TimeLimit && !s.autoSubmitted {
		s.autoSubmitted = true
		return true
	}
	return false
}

// Remaining 限时模式下的剩余秒数，到0为止不再减少；不限时返回0
func (s *ExamSession) Remaining() int {
	if s.TimeLimit <= 0 {
		return 0
	}
	rem := s.TimeLimit - s.ElapsedTime
	if rem < 0 {
		return 0
	}
	return rem
}

// Goto 切换当前题号
func (s *ExamSession) Goto(index int) error {
	if index < 0 || index >= len(s.Questions) {
		return util.ErrQuestionNotFound
	}
	s.CurrentIndex = index
	return nil
}

// Snapshot 生成可持久化的会话快照，账本做深拷贝
func (s *ExamSession) Snapshot() *model.SessionSnapshot {
	answers := make(map[string]*model.Answer, len(s.Answers))
	for qid, a := range s.Answers {
		copied := *a
		answers[qid] = &copied
	}
	return &model.SessionSnapshot{
		Topic:        s.Topic,
		Difficulty:   s.Difficulty,
		Mode:         s.Mode,
		TimeLimit:    s.TimeLimit,
		Questions:    s.Questions,
		Answers:      answers,
		ElapsedTime:  s.ElapsedTime,
		CurrentIndex: s.CurrentIndex,
		SavedAt:      time.Now(),
	}
}
