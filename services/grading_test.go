package services

import (
	"testing"

	"admissions-api/models"
)

func sampleBank() (map[string]models.Question, []models.ServedQuestion) {
	questions := []models.Question{
		{
			ID:             "q1",
			QuestionType:   models.QuestionSingleChoice,
			Options:        models.StringList{"a", "b", "c", "d"},
			CorrectOptions: models.IntList{2},
			Marks:          4,
			NegativeMarks:  1,
		},
		{
			ID:             "q2",
			QuestionType:   models.QuestionMultipleChoice,
			Options:        models.StringList{"a", "b", "c", "d"},
			CorrectOptions: models.IntList{0, 2},
			Marks:          4,
			NegativeMarks:  1,
		},
		{
			ID:             "q3",
			QuestionType:   models.QuestionSingleChoice,
			Options:        models.StringList{"a", "b"},
			CorrectOptions: models.IntList{1},
			Marks:          2,
			NegativeMarks:  0.5,
		},
	}

	bank := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
	}
	return bank, StripAnswers(questions)
}

func TestGradeAttemptCountsAndMarks(t *testing.T) {
	bank, served := sampleBank()

	responses := map[string][]int{
		"q1": {2},    // correct, +4
		"q2": {2, 0}, // correct regardless of order, +4
		// q3 unanswered
	}

	s := GradeAttempt(served, bank, responses, 5)

	if s.TotalQuestions != 3 || s.Attempted != 2 || s.Correct != 2 || s.Incorrect != 0 || s.Unanswered != 1 {
		t.Fatalf("unexpected tallies: %+v", s)
	}
	if s.MarksObtained != 8 {
		t.Fatalf("marks = %v, want 8", s.MarksObtained)
	}
	if s.TotalMarks != 10 {
		t.Fatalf("total marks = %v, want 10", s.TotalMarks)
	}
	if s.Percentage != 80 {
		t.Fatalf("percentage = %v, want 80", s.Percentage)
	}
	if !s.Passed {
		t.Fatalf("expected pass at threshold 5 with marks 8")
	}
	if len(s.QuestionResults) != 3 {
		t.Fatalf("question results = %d, want 3", len(s.QuestionResults))
	}
}

func TestGradeAttemptPartialMultiSelectScoresZero(t *testing.T) {
	bank, served := sampleBank()

	// Selecting a strict subset of the correct set is wrong, not partial.
	responses := map[string][]int{
		"q2": {0},
	}

	s := GradeAttempt(served, bank, responses, 1)

	if s.Correct != 0 || s.Incorrect != 1 {
		t.Fatalf("partial multi-select graded as correct: %+v", s)
	}
	if s.MarksObtained != -1 {
		t.Fatalf("marks = %v, want -1 after negative marking", s.MarksObtained)
	}
}

func TestGradeAttemptSupersetScoresZero(t *testing.T) {
	bank, served := sampleBank()

	responses := map[string][]int{
		"q2": {0, 2, 3},
	}

	s := GradeAttempt(served, bank, responses, 1)
	if s.Correct != 0 || s.Incorrect != 1 {
		t.Fatalf("superset multi-select graded as correct: %+v", s)
	}
}

func TestGradeAttemptTotalCanGoNegative(t *testing.T) {
	bank, served := sampleBank()

	responses := map[string][]int{
		"q1": {0},
		"q2": {1},
		"q3": {0},
	}

	s := GradeAttempt(served, bank, responses, 5)

	if s.MarksObtained != -2.5 {
		t.Fatalf("marks = %v, want -2.5", s.MarksObtained)
	}
	if s.Passed {
		t.Fatalf("negative total must not pass")
	}
	if s.Percentage != -25 {
		t.Fatalf("percentage = %v, want -25", s.Percentage)
	}
}

func TestGradeAttemptPassIsAbsoluteThreshold(t *testing.T) {
	bank, served := sampleBank()

	responses := map[string][]int{"q1": {2}} // exactly 4 marks

	if s := GradeAttempt(served, bank, responses, 4); !s.Passed {
		t.Fatalf("marks equal to threshold must pass")
	}
	if s := GradeAttempt(served, bank, responses, 4.5); s.Passed {
		t.Fatalf("marks below threshold must not pass")
	}
}

func TestGradeAttemptZeroTotalMarks(t *testing.T) {
	s := GradeAttempt(nil, nil, nil, 0)
	if s.Percentage != 0 {
		t.Fatalf("percentage = %v, want 0 for empty attempt", s.Percentage)
	}
}

func TestGradeAttemptPercentageRounding(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", CorrectOptions: models.IntList{0}, Marks: 1},
		{ID: "q2", CorrectOptions: models.IntList{0}, Marks: 1},
		{ID: "q3", CorrectOptions: models.IntList{0}, Marks: 1},
	}
	bank := map[string]models.Question{}
	for _, q := range questions {
		bank[q.ID] = q
	}

	s := GradeAttempt(StripAnswers(questions), bank, map[string][]int{"q1": {0}}, 1)
	if s.Percentage != 33.33 {
		t.Fatalf("percentage = %v, want 33.33", s.Percentage)
	}
}

func TestStripAnswersOmitsCorrectOptions(t *testing.T) {
	bank, served := sampleBank()

	if len(served) != len(bank) {
		t.Fatalf("served = %d questions, want %d", len(served), len(bank))
	}
	for _, q := range served {
		src := bank[q.ID]
		if q.QuestionText != src.QuestionText || q.Marks != src.Marks || q.NegativeMarks != src.NegativeMarks {
			t.Fatalf("served question %s lost fields: %+v", q.ID, q)
		}
		if len(q.Options) != len(src.Options) {
			t.Fatalf("served question %s lost options", q.ID)
		}
	}
}

func TestSampleQuestionsUsesPermutation(t *testing.T) {
	pool := []models.Question{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	reversed := func(n int) []int {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = n - 1 - i
		}
		return idx
	}

	sample := SampleQuestions(pool, 2, reversed)
	if len(sample) != 2 {
		t.Fatalf("sample size = %d, want 2", len(sample))
	}
	if sample[0].ID != "d" || sample[1].ID != "c" {
		t.Fatalf("sample = %v, want [d c]", []string{sample[0].ID, sample[1].ID})
	}
}

func TestSampleQuestionsClampsToPoolSize(t *testing.T) {
	pool := []models.Question{{ID: "a"}, {ID: "b"}}

	identity := func(n int) []int {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	sample := SampleQuestions(pool, 10, identity)
	if len(sample) != 2 {
		t.Fatalf("sample size = %d, want 2", len(sample))
	}
}
