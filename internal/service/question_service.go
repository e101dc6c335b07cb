package service

import (
	"encoding/json"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/internal/util"
	"exam_trainer_backend/pkg/monitoring"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuestionService 调用外部AI生成一套题目
type QuestionService struct {
	AI ChatClient
}

func NewQuestionService(ai ChatClient) *QuestionService {
	return &QuestionService{AI: ai}
}

const generationSystemPrompt = "你是一个专业的编程考试出题助手。" +
	"只输出一个JSON数组，不要输出任何解释性文字。"

// rawQuestion AI返回的题目结构，字段尽量宽松，解析后再校验
type rawQuestion struct {
	Kind              string         `json:"kind"`
	Prompt            string         `json:"prompt"`
	Options           []model.Option `json:"options"`
	CorrectOptionID   string         `json:"correctOptionId"`
	Language          string         `json:"language"`
	StarterCode       string         `json:"starterCode"`
	ReferenceSolution string         `json:"referenceSolution"`
	TestCases         []string       `json:"testCases"`
	Hints             []string       `json:"hints"`
}

func buildGenerationPrompt(topic string, difficulty model.Difficulty, count int, mode model.ExamMode) string {
	var kinds string
	switch mode {
	case model.ModeChoice:
		kinds = `全部题目 kind 为 "choice"`
	case model.ModeCode:
		kinds = `全部题目 kind 为 "code"`
	default:
		kinds = `"choice" 与 "code" 混合出题，各约占一半`
	}

	return fmt.Sprintf(`请围绕主题"%s"出 %d 道难度为 %s 的考试题，%s。
输出JSON数组，每道题为一个对象：
- kind: "choice" 或 "code"
- prompt: 题干
- choice 题必须包含 options（对象数组，字段 id 为 "A"/"B"/"C"/"D"，字段 text 为选项内容）和 correctOptionId
- code 题必须包含 language、starterCode、referenceSolution、testCases（字符串数组，每项为一条人类可读的测试用例描述），可以包含 hints（字符串数组）
不要输出数组以外的任何内容。`, topic, count, difficulty, kinds)
}

// GenerateQuestions 任何失败（网络、解析、空结果）都返回错误，
// 由调用方回退到未开始状态，不产生半成品会话。
func (s *QuestionService) GenerateQuestions(topic string, difficulty model.Difficulty, count int, mode model.ExamMode) ([]model.Question, error) {
	start := time.Now()
	raw, err := s.AI.Chat(buildGenerationPrompt(topic, difficulty, count, mode), generationSystemPrompt)
	monitoring.AICallDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	questions, err := parseGeneratedQuestions(raw, difficulty)
	if err != nil {
		return nil, err
	}
	if count > 0 && len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// parseGeneratedQuestions 容忍模型把JSON包在markdown代码栅栏里，
// 逐题校验，全部无效时视为生成失败。
func parseGeneratedQuestions(raw string, difficulty model.Difficulty) ([]model.Question, error) {
	payload := extractJSONArray(raw)
	if payload == "" {
		return nil, util.ErrGenerationFailed
	}

	var rawQs []rawQuestion
	if err := json.Unmarshal([]byte(payload), &rawQs); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	questions := make([]model.Question, 0, len(rawQs))
	for _, rq := range rawQs {
		q, ok := validateQuestion(rq, difficulty)
		if !ok {
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, util.ErrGenerationFailed
	}
	return questions, nil
}

func validateQuestion(rq rawQuestion, difficulty model.Difficulty) (model.Question, bool) {
	q := model.Question{
		ID:         uuid.New().String(),
		Prompt:     strings.TrimSpace(rq.Prompt),
		Difficulty: difficulty,
	}
	if q.Prompt == "" {
		return q, false
	}

	switch model.QuestionKind(rq.Kind) {
	case model.KindChoice:
		if len(rq.Options) < 2 {
			return q, false
		}
		correctOK := false
		for _, opt := range rq.Options {
			if opt.ID == "" || opt.Text == "" {
				return q, false
			}
			if opt.ID == rq.CorrectOptionID {
				correctOK = true
			}
		}
		if !correctOK {
			return q, false
		}
		q.Kind = model.KindChoice
		q.Options = rq.Options
		q.CorrectOptionID = rq.CorrectOptionID

	case model.KindCode:
		if rq.Language == "" {
			return q, false
		}
		q.Kind = model.KindCode
		q.Language = rq.Language
		q.StarterCode = rq.StarterCode
		q.ReferenceSolution = rq.ReferenceSolution
		q.TestCases = rq.TestCases
		q.Hints = rq.Hints

	default:
		return q, false
	}

	return q, true
}

// extractJSONArray 截取首个 '[' 到最后一个 ']' 之间的内容
func extractJSONArray(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
