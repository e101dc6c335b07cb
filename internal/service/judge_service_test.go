package service

import (
	"errors"
	"exam_trainer_backend/pkg/logger"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// fakeChat 测试用的AI客户端替身
type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Chat(prompt, systemPrompt string) (string, error) {
	return f.reply, f.err
}

func TestJudgeCodeFallbackOnError(t *testing.T) {
	svc := NewJudgeService(&fakeChat{err: errors.New("connection refused")})
	q := codeQuestion("q1")

	result := svc.JudgeCode(&q, "func main() {}")
	if result.Passed {
		t.Error("fallback result must be not-passed")
	}
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if result.Feedback != JudgeFallbackFeedback {
		t.Errorf("Feedback = %q, want the fixed fallback text", result.Feedback)
	}
}

func TestJudgeCodeFallbackOnGarbage(t *testing.T) {
	svc := NewJudgeService(&fakeChat{reply: "抱歉，我无法判题。"})
	q := codeQuestion("q1")

	result := svc.JudgeCode(&q, "func main() {}")
	if result.Passed || result.Feedback != JudgeFallbackFeedback {
		t.Errorf("want fallback result, got %+v", result)
	}
}

func TestJudgeCodeParsesFencedResponse(t *testing.T) {
	svc := NewJudgeService(&fakeChat{reply: "```json\n" +
		`{"passed": true, "score": 95, "feedback": "逻辑正确", "output": "42"}` +
		"\n```"})
	q := codeQuestion("q1")

	result := svc.JudgeCode(&q, "func add(a, b int) int { return a + b }")
	if !result.Passed {
		t.Error("Passed = false, want true")
	}
	if result.Score != 95 {
		t.Errorf("Score = %d, want 95", result.Score)
	}
	if result.Feedback != "逻辑正确" || result.Output != "42" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseJudgeResultClampsScore(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"passed": true, "score": 150}`, 100},
		{`{"passed": false, "score": -20}`, 0},
		{`{"passed": true, "score": 80}`, 80},
	}
	for _, tt := range tests {
		result, err := parseJudgeResult(tt.raw)
		if err != nil {
			t.Fatalf("parseJudgeResult(%q): %v", tt.raw, err)
		}
		if result.Score != tt.want {
			t.Errorf("parseJudgeResult(%q).Score = %d, want %d", tt.raw, result.Score, tt.want)
		}
	}
}

func TestGenerateTestCases(t *testing.T) {
	q := codeQuestion("q1")

	svc := NewJudgeService(&fakeChat{reply: "```json\n[\"输入 1 2，输出 3\", \"输入 -1 1，输出 0\"]\n```"})
	cases := svc.GenerateTestCases(&q)
	if len(cases) != 2 || cases[0] != "输入 1 2，输出 3" {
		t.Errorf("cases = %v", cases)
	}
}

func TestGenerateTestCasesFallback(t *testing.T) {
	q := codeQuestion("q1")

	tests := []struct {
		name string
		chat *fakeChat
	}{
		{"call error", &fakeChat{err: errors.New("timeout")}},
		{"not an array", &fakeChat{reply: "这道题不需要测试用例。"}},
		{"empty array", &fakeChat{reply: "[]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases := NewJudgeService(tt.chat).GenerateTestCases(&q)
			if len(cases) != 1 || cases[0] != TestCaseFallback {
				t.Errorf("cases = %v, want single fallback entry", cases)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	if got := extractJSONObject("前缀 {\"a\": 1} 后缀"); got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
	if got := extractJSONObject("no braces here"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
