package model

// QuestionKind 题目类型
type QuestionKind string

const (
	KindChoice QuestionKind = "choice"
	KindCode   QuestionKind = "code"
)

// Difficulty 难度档位
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ExamMode 出题模式：纯选择 / 纯编程 / 混合
type ExamMode string

const (
	ModeChoice ExamMode = "choice"
	ModeCode   ExamMode = "code"
	ModeMixed  ExamMode = "mixed"
)

// Option 选择题的一个选项
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 一道题目。生成后在会话内不可变。
type Question struct {
	ID         string       `json:"id"`
	Kind       QuestionKind `json:"kind"`
	Prompt     string       `json:"prompt"`
	Difficulty Difficulty   `json:"difficulty"`

	// 选择题字段
	Options         []Option `json:"options,omitempty"`
	CorrectOptionID string   `json:"correctOptionId,omitempty"`

	// 编程题字段
	Language          string   `json:"language,omitempty"`
	StarterCode       string   `json:"starterCode,omitempty"`
	ReferenceSolution string   `json:"referenceSolution,omitempty"`
	TestCases         []string `json:"testCases,omitempty"`
	Hints             []string `json:"hints,omitempty"`
}
