package service

import (
	"errors"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/util"
	"testing"
)

const generatedBatch = `[
  {
    "kind": "choice",
    "prompt": "Go 中 map 的零值是什么？",
    "options": [
      {"id": "A", "text": "空 map"},
      {"id": "B", "text": "nil"},
      {"id": "C", "text": "panic"}
    ],
    "correctOptionId": "B"
  },
  {
    "kind": "code",
    "prompt": "实现 Reverse(s string) string",
    "language": "go",
    "starterCode": "func Reverse(s string) string {\n}\n",
    "referenceSolution": "func Reverse(s string) string { ... }",
    "testCases": ["输入 abc，输出 cba"],
    "hints": ["按 rune 遍历"]
  }
]`

func TestGenerateQuestions(t *testing.T) {
	svc := NewQuestionService(&fakeChat{reply: "```json\n" + generatedBatch + "\n```"})

	questions, err := svc.GenerateQuestions("go basics", model.DifficultyMedium, 5, model.ModeMixed)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	q1, q2 := questions[0], questions[1]
	if q1.Kind != model.KindChoice || q1.CorrectOptionID != "B" || len(q1.Options) != 3 {
		t.Errorf("choice question parsed wrong: %+v", q1)
	}
	if q2.Kind != model.KindCode || q2.Language != "go" || len(q2.TestCases) != 1 {
		t.Errorf("code question parsed wrong: %+v", q2)
	}
	if q1.ID == "" || q2.ID == "" || q1.ID == q2.ID {
		t.Error("questions must get distinct generated IDs")
	}
	if q1.Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty = %q", q1.Difficulty)
	}
}

func TestGenerateQuestionsTruncatesToCount(t *testing.T) {
	svc := NewQuestionService(&fakeChat{reply: generatedBatch})

	questions, err := svc.GenerateQuestions("go basics", model.DifficultyEasy, 1, model.ModeMixed)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("got %d questions, want 1", len(questions))
	}
}

func TestGenerateQuestionsChatError(t *testing.T) {
	svc := NewQuestionService(&fakeChat{err: errors.New("502 bad gateway")})

	_, err := svc.GenerateQuestions("go basics", model.DifficultyEasy, 5, model.ModeChoice)
	if !errors.Is(err, util.ErrGenerationFailed) {
		t.Errorf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestParseGeneratedQuestionsFiltersInvalid(t *testing.T) {
	raw := `[
	  {"kind": "choice", "prompt": "只有一个选项", "options": [{"id": "A", "text": "x"}], "correctOptionId": "A"},
	  {"kind": "choice", "prompt": "正确答案不在选项里", "options": [{"id": "A", "text": "x"}, {"id": "B", "text": "y"}], "correctOptionId": "C"},
	  {"kind": "code", "prompt": "缺语言字段"},
	  {"kind": "essay", "prompt": "未知题型"},
	  {"kind": "choice", "prompt": "", "options": [{"id": "A", "text": "x"}, {"id": "B", "text": "y"}], "correctOptionId": "A"},
	  {"kind": "choice", "prompt": "这道是好的", "options": [{"id": "A", "text": "x"}, {"id": "B", "text": "y"}], "correctOptionId": "A"}
	]`

	questions, err := parseGeneratedQuestions(raw, model.DifficultyEasy)
	if err != nil {
		t.Fatalf("parseGeneratedQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1 survivor", len(questions))
	}
	if questions[0].Prompt != "这道是好的" {
		t.Errorf("wrong survivor: %+v", questions[0])
	}
}

func TestParseGeneratedQuestionsAllInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain text", "抱歉，我不能出题。"},
		{"broken json", "[{\"kind\": \"choice\","},
		{"empty array", "[]"},
		{"all filtered", `[{"kind": "essay", "prompt": "x"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGeneratedQuestions(tt.raw, model.DifficultyEasy)
			if !errors.Is(err, util.ErrGenerationFailed) {
				t.Errorf("err = %v, want ErrGenerationFailed", err)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	if got := extractJSONArray("```json\n[1, 2]\n```"); got != "[1, 2]" {
		t.Errorf("got %q", got)
	}
	if got := extractJSONArray("no brackets"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
