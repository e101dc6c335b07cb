package service

import (
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/util"
	"testing"
)

func choiceQuestion(id, correct string) model.Question {
	return model.Question{
		ID:     id,
		Kind:   model.KindChoice,
		Prompt: "1+1=?",
		Options: []model.Option{
			{ID: "A", Text: "1"},
			{ID: "B", Text: "2"},
		},
		CorrectOptionID: correct,
	}
}

func codeQuestion(id string) model.Question {
	return model.Question{
		ID:          id,
		Kind:        model.KindCode,
		Prompt:      "implement add(a, b)",
		Language:    "go",
		StarterCode: "func add(a, b int) int {\n}\n",
	}
}

func newTestSession(timeLimit int, questions ...model.Question) *ExamSession {
	return NewExamSession(1, "go basics", model.DifficultyEasy, model.ModeMixed, timeLimit, questions)
}

func TestRecordChoiceClearsCodeFields(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"))

	if err := s.RecordCode("q1", "some code here padded"); err != nil {
		t.Fatalf("RecordCode: %v", err)
	}
	s.Answers["q1"].Judged = true
	s.Answers["q1"].IsCorrect = true
	s.Answers["q1"].Feedback = "ok"

	if err := s.RecordChoice("q1", "A"); err != nil {
		t.Fatalf("RecordChoice: %v", err)
	}

	a := s.Answers["q1"]
	if a.SelectedOptionID != "A" {
		t.Errorf("selected = %q, want A", a.SelectedOptionID)
	}
	if a.Code != "" || a.Judged || a.IsCorrect || a.Feedback != "" {
		t.Errorf("code fields not cleared: %+v", a)
	}
}

func TestRecordCodePreservesJudgment(t *testing.T) {
	s := newTestSession(0, codeQuestion("q1"))

	if err := s.RecordCode("q1", "first version of the code"); err != nil {
		t.Fatalf("RecordCode: %v", err)
	}
	if err := s.AttachJudgment("q1", &JudgeResult{Passed: true, Feedback: "good"}); err != nil {
		t.Fatalf("AttachJudgment: %v", err)
	}

	if err := s.RecordCode("q1", "second version of the code"); err != nil {
		t.Fatalf("RecordCode: %v", err)
	}

	a := s.Answers["q1"]
	if !a.Judged || !a.IsCorrect || a.Feedback != "good" {
		t.Errorf("judgment should survive a code update: %+v", a)
	}
	if a.Code != "second version of the code" {
		t.Errorf("code = %q", a.Code)
	}
}

func TestRecordUnknownQuestion(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"))

	if err := s.RecordChoice("missing", "A"); err != util.ErrQuestionNotFound {
		t.Errorf("RecordChoice err = %v, want ErrQuestionNotFound", err)
	}
	if err := s.RecordCode("missing", "x"); err != util.ErrQuestionNotFound {
		t.Errorf("RecordCode err = %v, want ErrQuestionNotFound", err)
	}
	if len(s.Answers) != 0 {
		t.Errorf("ledger should stay empty, got %d entries", len(s.Answers))
	}
}

func TestLedgerOneAnswerPerQuestion(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"), codeQuestion("q2"))

	s.RecordChoice("q1", "A")
	s.RecordChoice("q1", "B")
	s.RecordCode("q2", "a")
	s.RecordCode("q2", "ab")

	if len(s.Answers) != 2 {
		t.Fatalf("ledger size = %d, want 2", len(s.Answers))
	}
	if len(s.Answers) > len(s.Questions) {
		t.Fatalf("ledger larger than question set")
	}
}

func TestIsAnswered(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"), codeQuestion("q2"))

	if s.IsAnswered("q1") || s.IsAnswered("q2") {
		t.Fatal("nothing answered yet")
	}

	// 占位级别的短代码不算作答
	s.RecordCode("q2", "  ab  ")
	if s.IsAnswered("q2") {
		t.Error("short placeholder code must not count as answered")
	}

	s.RecordCode("q2", "func add(a, b int) int { return a + b }")
	if !s.IsAnswered("q2") {
		t.Error("substantial code should count as answered")
	}

	s.RecordChoice("q1", "A")
	if !s.IsAnswered("q1") {
		t.Error("selected option should count as answered")
	}

	if got := s.AnsweredCount(); got != 2 {
		t.Errorf("AnsweredCount = %d, want 2", got)
	}
}

func TestTickWithoutLimitNeverAutoSubmits(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"))

	for i := 0; i < 1000; i++ {
		if s.Tick() {
			t.Fatalf("auto-submit fired at tick %d with no limit", i)
		}
	}
	if s.ElapsedTime != 1000 {
		t.Errorf("elapsed = %d, want 1000", s.ElapsedTime)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0 for unlimited", s.Remaining())
	}
}

func TestTickAutoSubmitsExactlyOnce(t *testing.T) {
	s := newTestSession(3, choiceQuestion("q1", "B"))

	fired := 0
	for i := 0; i < 10; i++ {
		if s.Tick() {
			fired++
			if s.ElapsedTime != 3 {
				t.Errorf("fired at elapsed %d, want 3", s.ElapsedTime)
			}
		}
	}
	if fired != 1 {
		t.Errorf("auto-submit fired %d times, want exactly 1", fired)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want saturated 0", s.Remaining())
	}
}

func TestRemainingCountsDown(t *testing.T) {
	s := newTestSession(10, choiceQuestion("q1", "B"))

	if s.Remaining() != 10 {
		t.Fatalf("Remaining = %d, want 10", s.Remaining())
	}
	s.Tick()
	s.Tick()
	if s.Remaining() != 8 {
		t.Errorf("Remaining = %d, want 8", s.Remaining())
	}
}

func TestTickStopsAfterFinish(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"))
	s.Tick()
	s.Finished = true
	s.Tick()
	if s.ElapsedTime != 1 {
		t.Errorf("elapsed = %d, want 1 after finish", s.ElapsedTime)
	}
}

func TestSnapshotRestoreRoundtrip(t *testing.T) {
	s := newTestSession(600, choiceQuestion("q1", "B"), codeQuestion("q2"))
	s.RecordChoice("q1", "B")
	s.RecordCode("q2", "func add(a, b int) int { return a + b }")
	s.AttachJudgment("q2", &JudgeResult{Passed: true, Feedback: "nice", Output: "4"})
	s.Goto(1)
	for i := 0; i < 42; i++ {
		s.Tick()
	}

	snap := s.Snapshot()

	// 快照必须是深拷贝：改原会话不影响快照
	s.RecordChoice("q1", "A")

	restored := RestoreSession(1, snap)

	if restored.ElapsedTime != 42 {
		t.Errorf("elapsed = %d, want 42", restored.ElapsedTime)
	}
	if restored.CurrentIndex != 1 {
		t.Errorf("index = %d, want 1", restored.CurrentIndex)
	}
	if restored.TimeLimit != 600 {
		t.Errorf("limit = %d, want 600", restored.TimeLimit)
	}
	if len(restored.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(restored.Questions))
	}
	if a := restored.Answers["q1"]; a == nil || a.SelectedOptionID != "B" {
		t.Errorf("q1 answer not restored: %+v", a)
	}
	if a := restored.Answers["q2"]; a == nil || !a.IsCorrect || a.Feedback != "nice" || a.Output != "4" {
		t.Errorf("q2 judgment not restored: %+v", a)
	}
}

func TestGotoBounds(t *testing.T) {
	s := newTestSession(0, choiceQuestion("q1", "B"), codeQuestion("q2"))

	if err := s.Goto(1); err != nil {
		t.Errorf("Goto(1): %v", err)
	}
	if err := s.Goto(2); err == nil {
		t.Error("Goto(2) should fail")
	}
	if err := s.Goto(-1); err == nil {
		t.Error("Goto(-1) should fail")
	}
}
