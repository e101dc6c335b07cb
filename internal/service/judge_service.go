package service

import (
	"encoding/json"
	"exam_trainer_backend/internal/model"
	"exam_trainer_backend/pkg/logger"
	"exam_trainer_backend/pkg/monitoring"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// JudgeFallbackFeedback 判题服务不可用时的固定兜底反馈
const JudgeFallbackFeedback = "判题服务暂时不可用，本次提交按未通过处理，请稍后重试。"

// TestCaseFallback 测试用例生成失败时的单元素兜底
const TestCaseFallback = "暂时无法生成测试用例，请参考题目描述自行构造输入。"

// JudgeResult 一次代码判题的结果。Score 为 0-100 的参考分，
// 总评只使用 Passed。
type JudgeResult struct {
	Passed   bool   `json:"passed"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Output   string `json:"output"`
}

// JudgeService 把代码判题与测试用例生成委托给外部AI。
// 任何失败都以固定兜底结果替代，绝不中断考试会话。
type JudgeService struct {
	AI ChatClient
}

func NewJudgeService(ai ChatClient) *JudgeService {
	return &JudgeService{AI: ai}
}

const judgeSystemPrompt = "你是一个严格的编程考试判题官。只输出一个JSON对象，不要输出任何解释性文字。"

func buildJudgePrompt(q *model.Question, code string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "题目（%s）：\n%s\n\n", q.Language, q.Prompt)
	if q.ReferenceSolution != "" {
		fmt.Fprintf(&sb, "参考答案：\n%s\n\n", q.ReferenceSolution)
	}
	if len(q.TestCases) > 0 {
		sb.WriteString("测试用例：\n")
		for _, tc := range q.TestCases {
			fmt.Fprintf(&sb, "- %s\n", tc)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "学生提交的代码：\n%s\n\n", code)
	sb.WriteString(`请判断该代码能否通过全部测试用例，输出JSON对象：
{"passed": bool, "score": 0到100的整数, "feedback": "简要评语", "output": "代码在测试用例上的预期运行输出"}`)
	return sb.String()
}

// JudgeCode 永不返回错误，失败时退化为固定的未通过结果
func (s *JudgeService) JudgeCode(q *model.Question, code string) *JudgeResult {
	start := time.Now()
	raw, err := s.AI.Chat(buildJudgePrompt(q, code), judgeSystemPrompt)
	monitoring.AICallDuration.WithLabelValues("judge").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Log.Warn("judge call failed, using fallback result",
			zap.String("questionId", q.ID), zap.Error(err))
		return fallbackJudgeResult()
	}

	result, err := parseJudgeResult(raw)
	if err != nil {
		logger.Log.Warn("judge response unparseable, using fallback result",
			zap.String("questionId", q.ID), zap.Error(err))
		return fallbackJudgeResult()
	}
	return result
}

func fallbackJudgeResult() *JudgeResult {
	return &JudgeResult{
		Passed:   false,
		Score:    0,
		Feedback: JudgeFallbackFeedback,
	}
}

func parseJudgeResult(raw string) (*JudgeResult, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in judge response")
	}

	var result JudgeResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, err
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	return &result, nil
}

func buildTestCasePrompt(q *model.Question) string {
	return fmt.Sprintf(`针对下面这道编程题，生成3到5条人类可读的测试用例描述（含输入和预期输出）。
输出JSON字符串数组，不要输出数组以外的任何内容。

题目（%s）：
%s`, q.Language, q.Prompt)
}

// GenerateTestCases 失败时返回固定的单元素列表
func (s *JudgeService) GenerateTestCases(q *model.Question) []string {
	start := time.Now()
	raw, err := s.AI.Chat(buildTestCasePrompt(q), judgeSystemPrompt)
	monitoring.AICallDuration.WithLabelValues("testcases").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Log.Warn("test case generation failed, using fallback",
			zap.String("questionId", q.ID), zap.Error(err))
		return []string{TestCaseFallback}
	}

	payload := extractJSONArray(raw)
	var cases []string
	if payload == "" || json.Unmarshal([]byte(payload), &cases) != nil || len(cases) == 0 {
		return []string{TestCaseFallback}
	}
	return cases
}

// extractJSONObject 截取首个 '{' 到最后一个 '}' 之间的内容
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
