package model

// Answer 答题账本中的一条记录，按题目ID惟一。
// 选择题与编程题互斥：记录选项时会清空编程相关字段。
type Answer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	Code             string `json:"code,omitempty"`

	// 判题结果，由外部AI判题服务写入
	Judged    bool   `json:"judged"`
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback,omitempty"`
	Output    string `json:"output,omitempty"`
	TestInput string `json:"testInput,omitempty"`
}
