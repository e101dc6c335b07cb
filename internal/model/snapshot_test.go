package model

import (
	"errors"
	"testing"
)

func sampleSnapshot() *SessionSnapshot {
	return &SessionSnapshot{
		Topic:      "go basics",
		Difficulty: DifficultyMedium,
		Mode:       ModeMixed,
		TimeLimit:  600,
		Questions: []Question{
			{
				ID:     "q1",
				Kind:   KindChoice,
				Prompt: "1+1=?",
				Options: []Option{
					{ID: "A", Text: "1"},
					{ID: "B", Text: "2"},
				},
				CorrectOptionID: "B",
			},
			{
				ID:       "q2",
				Kind:     KindCode,
				Prompt:   "implement add",
				Language: "go",
			},
		},
		Answers: map[string]*Answer{
			"q1": {QuestionID: "q1", SelectedOptionID: "B"},
			"q2": {QuestionID: "q2", Code: "func add(a, b int) int { return a + b }", Judged: true, IsCorrect: true, Feedback: "ok"},
		},
		ElapsedTime:  42,
		CurrentIndex: 1,
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	data, err := MarshalSnapshot(sampleSnapshot())
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	if got.Topic != "go basics" || got.TimeLimit != 600 {
		t.Errorf("header fields wrong: %+v", got)
	}
	if got.ElapsedTime != 42 || got.CurrentIndex != 1 {
		t.Errorf("progress fields wrong: elapsed=%d index=%d", got.ElapsedTime, got.CurrentIndex)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
	a := got.Answers["q2"]
	if a == nil || !a.Judged || !a.IsCorrect || a.Feedback != "ok" {
		t.Errorf("q2 answer wrong: %+v", a)
	}
}

func TestUnmarshalSnapshotCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"empty object", "{}"},
		{"no questions", `{"topic": "x", "questions": []}`},
		{"blank question id", `{"questions": [{"id": "", "kind": "choice", "prompt": "x"}]}`},
		{
			"answer for unknown question",
			`{"questions": [{"id": "q1", "kind": "choice", "prompt": "x"}],
			  "answers": {"ghost": {"questionId": "ghost"}}}`,
		},
		{
			"index out of range",
			`{"questions": [{"id": "q1", "kind": "choice", "prompt": "x"}], "currentIndex": 5}`,
		},
		{
			"negative index",
			`{"questions": [{"id": "q1", "kind": "choice", "prompt": "x"}], "currentIndex": -1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSnapshot([]byte(tt.data))
			if !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("err = %v, want ErrCorruptSnapshot", err)
			}
		})
	}
}

func TestUnmarshalSnapshotNilAnswers(t *testing.T) {
	got, err := UnmarshalSnapshot([]byte(`{"questions": [{"id": "q1", "kind": "choice", "prompt": "x"}]}`))
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if got.Answers == nil {
		t.Error("Answers must be initialized to an empty map")
	}
}
