package model

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrCorruptSnapshot = errors.New("快照数据损坏，无法恢复")

// SessionSnapshot 进行中考试的可恢复持久化表示。
// 每个用户至多存在一份，保存即覆盖。
type SessionSnapshot struct {
	Topic        string             `json:"topic"`
	Difficulty   Difficulty         `json:"difficulty"`
	Mode         ExamMode           `json:"mode"`
	TimeLimit    int                `json:"timeLimit"` // 秒，0 表示不限时
	Questions    []Question         `json:"questions"`
	Answers      map[string]*Answer `json:"answers"`
	ElapsedTime  int                `json:"elapsedTime"` // 秒
	CurrentIndex int                `json:"currentIndex"`
	SavedAt      time.Time          `json:"savedAt"`
}

// MarshalSnapshot 快照序列化，save/load 是一对纯函数
func MarshalSnapshot(s *SessionSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot 反序列化并做基本一致性校验：
// 题目集不能为空，账本里不允许出现题目集之外的题目ID。
func UnmarshalSnapshot(data []byte) (*SessionSnapshot, error) {
	var s SessionSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ErrCorruptSnapshot
	}
	if len(s.Questions) == 0 {
		return nil, ErrCorruptSnapshot
	}

	known := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if q.ID == "" {
			return nil, ErrCorruptSnapshot
		}
		known[q.ID] = true
	}
	for qid := range s.Answers {
		if !known[qid] {
			return nil, ErrCorruptSnapshot
		}
	}

	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil, ErrCorruptSnapshot
	}
	if s.Answers == nil {
		s.Answers = make(map[string]*Answer)
	}

	return &s, nil
}
