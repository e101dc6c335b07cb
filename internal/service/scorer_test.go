package service

import (
	"exam_trainer_backend/internal/model"
	"testing"
)

func TestScoreExamChoices(t *testing.T) {
	questions := []model.Question{
		choiceQuestion("q1", "A"),
		choiceQuestion("q2", "B"),
		choiceQuestion("q3", "B"),
	}
	answers := map[string]*model.Answer{
		"q1": {QuestionID: "q1", SelectedOptionID: "A"},
		"q2": {QuestionID: "q2", SelectedOptionID: "B"},
		"q3": {QuestionID: "q3", SelectedOptionID: "A"},
	}

	score, percentage := ScoreExam(questions, answers)
	if score != 2 {
		t.Errorf("score = %d, want 2", score)
	}
	if percentage != 67 {
		t.Errorf("percentage = %d, want 67", percentage)
	}
}

func TestScoreExamCodeQuestions(t *testing.T) {
	questions := []model.Question{codeQuestion("q1"), codeQuestion("q2"), codeQuestion("q3")}

	tests := []struct {
		name    string
		answers map[string]*model.Answer
		score   int
	}{
		{
			name:    "no answers",
			answers: map[string]*model.Answer{},
			score:   0,
		},
		{
			// 判对但代码被清空，不得分
			name: "judged correct but empty code",
			answers: map[string]*model.Answer{
				"q1": {QuestionID: "q1", Code: "   ", Judged: true, IsCorrect: true},
			},
			score: 0,
		},
		{
			name: "unjudged code",
			answers: map[string]*model.Answer{
				"q1": {QuestionID: "q1", Code: "func main() {}"},
			},
			score: 0,
		},
		{
			name: "judged incorrect",
			answers: map[string]*model.Answer{
				"q1": {QuestionID: "q1", Code: "func main() {}", Judged: true, IsCorrect: false},
			},
			score: 0,
		},
		{
			name: "judged correct",
			answers: map[string]*model.Answer{
				"q1": {QuestionID: "q1", Code: "func main() {}", Judged: true, IsCorrect: true},
				"q2": {QuestionID: "q2", Code: "print(1)", Judged: true, IsCorrect: true},
			},
			score: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := ScoreExam(questions, tt.answers)
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
		})
	}
}

func TestScoreExamPercentageRounding(t *testing.T) {
	tests := []struct {
		total      int
		correct    int
		percentage int
	}{
		{3, 1, 33},
		{3, 2, 67},
		{6, 1, 17},
		{8, 7, 88},
		{4, 4, 100},
		{5, 0, 0},
	}

	for _, tt := range tests {
		questions := make([]model.Question, tt.total)
		answers := make(map[string]*model.Answer)
		for i := 0; i < tt.total; i++ {
			id := string(rune('a' + i))
			questions[i] = choiceQuestion(id, "A")
			if i < tt.correct {
				answers[id] = &model.Answer{QuestionID: id, SelectedOptionID: "A"}
			}
		}
		_, percentage := ScoreExam(questions, answers)
		if percentage != tt.percentage {
			t.Errorf("%d/%d: percentage = %d, want %d", tt.correct, tt.total, percentage, tt.percentage)
		}
	}
}

func TestScoreExamEmpty(t *testing.T) {
	score, percentage := ScoreExam(nil, nil)
	if score != 0 || percentage != 0 {
		t.Errorf("got %d/%d, want 0/0", score, percentage)
	}
}

func TestBuildExamRecord(t *testing.T) {
	s := newTestSession(600, choiceQuestion("q1", "A"), choiceQuestion("q2", "B"))
	s.ElapsedTime = 125

	rec := BuildExamRecord(s, 1, 50, true)
	if rec.UserID != 1 {
		t.Errorf("UserID = %d", rec.UserID)
	}
	if rec.Topic != "go basics" {
		t.Errorf("Topic = %q", rec.Topic)
	}
	if rec.Score != 1 || rec.Percentage != 50 || rec.TotalQuestions != 2 {
		t.Errorf("score fields wrong: %+v", rec)
	}
	if rec.TimeSpent != 125 {
		t.Errorf("TimeSpent = %d", rec.TimeSpent)
	}
	if !rec.AutoSubmitted {
		t.Error("AutoSubmitted should be true")
	}
	if rec.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
}
