package service

import (
	"context"
	"exam_trainer_backend/internal/config"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/util"
	"exam_trainer_backend/pkg/logger"
	"exam_trainer_backend/pkg/monitoring"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SessionPhase 会话所处阶段。未在注册表中即为未开始（Setup）。
type SessionPhase string

const (
	PhaseExam    SessionPhase = "exam"
	PhaseResults SessionPhase = "results"
)

// activeExam 注册表条目：进行中持有会话，交卷后追加成绩
type activeExam struct {
	session *ExamSession
	result  *ExamResult
}

// SnapshotStore 快照槽位的持久化接口，生产实现为 repository.SnapshotRepository
type SnapshotStore interface {
	Save(ctx context.Context, userID uint, snapshot *model.SessionSnapshot) error
	Load(ctx context.Context, userID uint) (*model.SessionSnapshot, error)
	Exists(ctx context.Context, userID uint) (bool, error)
	Delete(ctx context.Context, userID uint) error
}

// ExamRecordStore 历史记录的追加接口，生产实现为 repository.ExamRecordRepository
type ExamRecordStore interface {
	Create(record *model.ExamRecord) error
}

// SessionService 每个用户同一时刻至多一场考试。
// 注册表由读写锁保护，后台秒级Tick与HTTP请求共用。
type SessionService struct {
	mu    sync.RWMutex
	exams map[uint]*activeExam

	Questions    *QuestionService
	Judge        *JudgeService
	SnapshotRepo SnapshotStore
	RecordRepo   ExamRecordStore
	Cfg          *config.Config
}

func NewSessionService(questions *QuestionService, judge *JudgeService, snapshotRepo SnapshotStore, recordRepo ExamRecordStore, cfg *config.Config) *SessionService {
	return &SessionService{
		exams:        make(map[uint]*activeExam),
		Questions:    questions,
		Judge:        judge,
		SnapshotRepo: snapshotRepo,
		RecordRepo:   recordRepo,
		Cfg:          cfg,
	}
}

type StartExamReq struct {
	Topic            string           `json:"topic" binding:"required"`
	Difficulty       model.Difficulty `json:"difficulty"`
	QuestionCount    int              `json:"questionCount"`
	Mode             model.ExamMode   `json:"mode"`
	TimeLimitMinutes int              `json:"timeLimitMinutes"` // 0 表示不限时
}

// QuestionView 下发给考生的题目视图，不携带正确选项和参考答案
type QuestionView struct {
	ID          string             `json:"id"`
	Kind        model.QuestionKind `json:"kind"`
	Prompt      string             `json:"prompt"`
	Difficulty  model.Difficulty   `json:"difficulty"`
	Options     []model.Option     `json:"options,omitempty"`
	Language    string             `json:"language,omitempty"`
	StarterCode string             `json:"starterCode,omitempty"`
	Hints       []string           `json:"hints,omitempty"`
}

type ExamView struct {
	Phase         SessionPhase             `json:"phase"`
	Topic         string                   `json:"topic"`
	Difficulty    model.Difficulty         `json:"difficulty"`
	Mode          model.ExamMode           `json:"mode"`
	TimeLimit     int                      `json:"timeLimit"`
	ElapsedTime   int                      `json:"elapsedTime"`
	Remaining     int                      `json:"remaining"`
	CurrentIndex  int                      `json:"currentIndex"`
	AnsweredCount int                      `json:"answeredCount"`
	Total         int                      `json:"total"`
	Questions     []QuestionView           `json:"questions"`
	Answers       map[string]*model.Answer `json:"answers"`
	Result        *ExamResult              `json:"result,omitempty"`
}

type QuestionResult struct {
	QuestionID        string             `json:"questionId"`
	Kind              model.QuestionKind `json:"kind"`
	Prompt            string             `json:"prompt"`
	Correct           bool               `json:"correct"`
	CorrectOptionID   string             `json:"correctOptionId,omitempty"`
	SelectedOptionID  string             `json:"selectedOptionId,omitempty"`
	ReferenceSolution string             `json:"referenceSolution,omitempty"`
	Feedback          string             `json:"feedback,omitempty"`
	Output            string             `json:"output,omitempty"`
}

type ExamResult struct {
	RecordID       string           `json:"recordId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	TimeSpent      int              `json:"timeSpent"`
	AutoSubmitted  bool             `json:"autoSubmitted"`
	Questions      []QuestionResult `json:"questions"`
}

// StartExam 生成题目并进入考试。生成失败直接返回错误，
// 不保留任何半成品状态。
func (s *SessionService) StartExam(ctx context.Context, userID uint, req StartExamReq) (*ExamView, error) {
	s.mu.RLock()
	entry, exists := s.exams[userID]
	s.mu.RUnlock()
	if exists && entry.result == nil {
		return nil, util.ErrSessionInProgress
	}

	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}
	if req.Mode == "" {
		req.Mode = model.ModeMixed
	}
	if req.QuestionCount <= 0 || req.QuestionCount > s.Cfg.Exam.MaxQuestions {
		req.QuestionCount = s.Cfg.Exam.MaxQuestions
	}

	questions, err := s.Questions.GenerateQuestions(req.Topic, req.Difficulty, req.QuestionCount, req.Mode)
	if err != nil {
		return nil, err
	}

	session := NewExamSession(userID, req.Topic, req.Difficulty, req.Mode, req.TimeLimitMinutes*60, questions)

	s.mu.Lock()
	// 生成期间用户可能通过"恢复"进入了另一场考试
	if entry, exists := s.exams[userID]; exists && entry.result == nil {
		s.mu.Unlock()
		return nil, util.ErrSessionInProgress
	}
	s.exams[userID] = &activeExam{session: session}
	view := s.viewLocked(s.exams[userID])
	s.mu.Unlock()

	monitoring.ExamStarted.Inc()
	logger.Log.Info("exam session started",
		zap.Uint("userId", userID),
		zap.String("topic", req.Topic),
		zap.Int("questions", len(questions)))

	return view, nil
}

// Current 返回当前会话视图；没有会话时返回 ErrNoActiveSession
func (s *SessionService) Current(userID uint) (*ExamView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.exams[userID]
	if !exists {
		return nil, util.ErrNoActiveSession
	}
	return s.viewLocked(entry), nil
}

func (s *SessionService) RecordChoice(userID uint, questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeLocked(userID)
	if err != nil {
		return err
	}
	return session.RecordChoice(questionID, optionID)
}

func (s *SessionService) RecordCode(userID uint, questionID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeLocked(userID)
	if err != nil {
		return err
	}
	return session.RecordCode(questionID, code)
}

func (s *SessionService) GotoQuestion(userID uint, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeLocked(userID)
	if err != nil {
		return err
	}
	return session.Goto(index)
}

// JudgeQuestion 先落盘代码，再在锁外调用外部判题。
// 判题期间交卷的话，迟到的结果只返回给调用方，不再写回账本。
func (s *SessionService) JudgeQuestion(userID uint, questionID, code string) (*JudgeResult, error) {
	s.mu.Lock()
	session, err := s.activeLocked(userID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	question := session.FindQuestion(questionID)
	if question == nil {
		s.mu.Unlock()
		return nil, util.ErrQuestionNotFound
	}
	if question.Kind != model.KindCode {
		s.mu.Unlock()
		return nil, util.ErrNotCodeQuestion
	}
	if err := session.RecordCode(questionID, code); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	questionCopy := *question
	s.mu.Unlock()

	result := s.Judge.JudgeCode(&questionCopy, code)

	s.mu.Lock()
	if entry, exists := s.exams[userID]; exists && entry.result == nil {
		_ = entry.session.AttachJudgment(questionID, result)
	}
	s.mu.Unlock()

	return result, nil
}

// GenerateTestCases 为指定编程题生成测试用例描述并记入账本
func (s *SessionService) GenerateTestCases(userID uint, questionID string) ([]string, error) {
	s.mu.Lock()
	session, err := s.activeLocked(userID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	question := session.FindQuestion(questionID)
	if question == nil {
		s.mu.Unlock()
		return nil, util.ErrQuestionNotFound
	}
	if question.Kind != model.KindCode {
		s.mu.Unlock()
		return nil, util.ErrNotCodeQuestion
	}
	questionCopy := *question
	s.mu.Unlock()

	cases := s.Judge.GenerateTestCases(&questionCopy)
	joined := strings.Join(cases, "\n")

	s.mu.Lock()
	if entry, exists := s.exams[userID]; exists && entry.result == nil {
		_ = entry.session.SetTestInput(questionID, joined)
	}
	s.mu.Unlock()

	return cases, nil
}

// Submit 主动交卷：评分、写历史、清快照，进入成绩页
func (s *SessionService) Submit(ctx context.Context, userID uint) (*ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.exams[userID]
	if !exists {
		return nil, util.ErrNoActiveSession
	}
	if entry.result != nil {
		return nil, util.ErrSessionFinished
	}
	s.finalizeLocked(ctx, entry, "submit")
	return entry.result, nil
}

// SaveAndExit 持久化快照并丢弃内存会话，回到未开始状态
func (s *SessionService) SaveAndExit(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.exams[userID]
	if !exists || entry.result != nil {
		return util.ErrNoActiveSession
	}
	if err := s.SnapshotRepo.Save(ctx, userID, entry.session.Snapshot()); err != nil {
		return err
	}
	delete(s.exams, userID)
	logger.Log.Info("exam session saved", zap.Uint("userId", userID))
	return nil
}

// Resume 从快照恢复。槽位为空返回 ErrNoSnapshot；
// 快照损坏中止恢复，不改变任何状态。恢复成功后清空槽位。
func (s *SessionService) Resume(ctx context.Context, userID uint) (*ExamView, error) {
	s.mu.RLock()
	entry, exists := s.exams[userID]
	s.mu.RUnlock()
	if exists && entry.result == nil {
		return nil, util.ErrSessionInProgress
	}

	snap, err := s.SnapshotRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, util.ErrNoSnapshot
	}

	session := RestoreSession(userID, snap)

	s.mu.Lock()
	if entry, exists := s.exams[userID]; exists && entry.result == nil {
		s.mu.Unlock()
		return nil, util.ErrSessionInProgress
	}
	s.exams[userID] = &activeExam{session: session}
	view := s.viewLocked(s.exams[userID])
	s.mu.Unlock()

	if err := s.SnapshotRepo.Delete(ctx, userID); err != nil {
		logger.Log.Warn("failed to clear snapshot after resume",
			zap.Uint("userId", userID), zap.Error(err))
	}

	logger.Log.Info("exam session resumed", zap.Uint("userId", userID))
	return view, nil
}

// ResumeAvailable 快照槽位是否存在
func (s *SessionService) ResumeAvailable(ctx context.Context, userID uint) (bool, error) {
	return s.SnapshotRepo.Exists(ctx, userID)
}

// Restart 成绩页回到未开始状态
func (s *SessionService) Restart(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.exams[userID]
	if !exists {
		return util.ErrNoActiveSession
	}
	if entry.result == nil {
		return util.ErrSessionInProgress
	}
	delete(s.exams, userID)
	return nil
}

// TickAll 后台每秒调用一次，推进所有进行中的会话，
// 限时到达的会话在此自动交卷。
func (s *SessionService) TickAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.exams {
		if entry.result != nil {
			continue
		}
		if entry.session.Tick() {
			s.finalizeLocked(ctx, entry, "timeout")
		}
	}
}

// activeLocked 调用方必须持有写锁
func (s *SessionService) activeLocked(userID uint) (*ExamSession, error) {
	entry, exists := s.exams[userID]
	if !exists {
		return nil, util.ErrNoActiveSession
	}
	if entry.result != nil {
		return nil, util.ErrSessionFinished
	}
	return entry.session, nil
}

// finalizeLocked 评分、追加历史记录、清空快照槽位。
// 历史写入失败只记日志，成绩仍然返回给用户。
func (s *SessionService) finalizeLocked(ctx context.Context, entry *activeExam, reason string) {
	session := entry.session
	session.Finished = true

	score, percentage := ScoreExam(session.Questions, session.Answers)
	record := BuildExamRecord(session, score, percentage, reason == "timeout")

	if err := s.RecordRepo.Create(record); err != nil {
		logger.Log.Error("failed to append exam record",
			zap.Uint("userId", session.UserID), zap.Error(err))
	}
	if err := s.SnapshotRepo.Delete(ctx, session.UserID); err != nil {
		logger.Log.Warn("failed to clear snapshot on completion",
			zap.Uint("userId", session.UserID), zap.Error(err))
	}

	results := make([]QuestionResult, 0, len(session.Questions))
	for i := range session.Questions {
		q := &session.Questions[i]
		a := session.Answers[q.ID]
		qr := QuestionResult{
			QuestionID:        q.ID,
			Kind:              q.Kind,
			Prompt:            q.Prompt,
			Correct:           isCorrect(q, a),
			CorrectOptionID:   q.CorrectOptionID,
			ReferenceSolution: q.ReferenceSolution,
		}
		if a != nil {
			qr.SelectedOptionID = a.SelectedOptionID
			qr.Feedback = a.Feedback
			qr.Output = a.Output
		}
		results = append(results, qr)
	}

	entry.result = &ExamResult{
		RecordID:       record.ID,
		Score:          score,
		TotalQuestions: len(session.Questions),
		Percentage:     percentage,
		TimeSpent:      session.ElapsedTime,
		AutoSubmitted:  reason == "timeout",
		Questions:      results,
	}

	monitoring.ExamCompleted.WithLabelValues(reason).Inc()
	logger.Log.Info("exam session completed",
		zap.Uint("userId", session.UserID),
		zap.String("reason", reason),
		zap.Int("score", score),
		zap.Int("percentage", percentage))
}

// viewLocked 调用方必须持锁
func (s *SessionService) viewLocked(entry *activeExam) *ExamView {
	session := entry.session
	phase := PhaseExam
	if entry.result != nil {
		phase = PhaseResults
	}

	questions := make([]QuestionView, 0, len(session.Questions))
	for i := range session.Questions {
		q := &session.Questions[i]
		questions = append(questions, QuestionView{
			ID:          q.ID,
			Kind:        q.Kind,
			Prompt:      q.Prompt,
			Difficulty:  q.Difficulty,
			Options:     q.Options,
			Language:    q.Language,
			StarterCode: q.StarterCode,
			Hints:       q.Hints,
		})
	}

	answers := make(map[string]*model.Answer, len(session.Answers))
	for qid, a := range session.Answers {
		copied := *a
		answers[qid] = &copied
	}

	return &ExamView{
		Phase:         phase,
		Topic:         session.Topic,
		Difficulty:    session.Difficulty,
		Mode:          session.Mode,
		TimeLimit:     session.TimeLimit,
		ElapsedTime:   session.ElapsedTime,
		Remaining:     session.Remaining(),
		CurrentIndex:  session.CurrentIndex,
		AnsweredCount: session.AnsweredCount(),
		Total:         len(session.Questions),
		Questions:     questions,
		Answers:       answers,
		Result:        entry.result,
	}
}
