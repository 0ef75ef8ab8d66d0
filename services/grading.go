package services

import (
	"math"
	"sort"

	"admissions-api/models"
)

// GradeSummary is the outcome of grading one attempt.
type GradeSummary struct {
	TotalQuestions int
	Attempted      int
	Correct        int
	Incorrect      int
	Unanswered     int

	MarksObtained float64
	TotalMarks    float64
	Percentage    float64
	Passed        bool

	QuestionResults []models.QuestionResult
}

// GradeAttempt scores the served questions against the authoritative
// question bank. Multi-select answers are all-or-nothing: the response
// set must equal the correct set exactly. Wrong answers deduct the
// question's negative marks, which can push the total below zero.
// The pass decision compares marks obtained against the absolute
// passing threshold.
func GradeAttempt(served []models.ServedQuestion, bank map[string]models.Question, responses map[string][]int, passingMarks float64) GradeSummary {
	s := GradeSummary{
		TotalQuestions:  len(served),
		QuestionResults: make([]models.QuestionResult, 0, len(served)),
	}

	for _, q := range served {
		s.TotalMarks += q.Marks

		answer := responses[q.ID]
		correct := []int(bank[q.ID].CorrectOptions)

		result := models.QuestionResult{
			QuestionID:    q.ID,
			StudentAnswer: answer,
			CorrectAnswer: correct,
			Marks:         q.Marks,
		}

		switch {
		case len(answer) == 0:
			s.Unanswered++
			result.Status = "unanswered"
		case sameOptionSet(answer, correct):
			s.Correct++
			s.MarksObtained += q.Marks
			result.IsCorrect = true
			result.Status = "correct"
		default:
			s.Incorrect++
			s.MarksObtained -= q.NegativeMarks
			result.Status = "incorrect"
		}

		s.QuestionResults = append(s.QuestionResults, result)
	}

	s.Attempted = s.Correct + s.Incorrect
	if s.TotalMarks > 0 {
		s.Percentage = math.Round(s.MarksObtained/s.TotalMarks*100*100) / 100
	}
	s.Passed = s.MarksObtained >= passingMarks
	return s
}

// sameOptionSet compares two option index sets ignoring order.
func sameOptionSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// StripAnswers converts bank questions into the answer-free copies
// stored on a student-facing attempt.
func StripAnswers(questions []models.Question) []models.ServedQuestion {
	served := make([]models.ServedQuestion, 0, len(questions))
	for _, q := range questions {
		served = append(served, models.ServedQuestion{
			ID:            q.ID,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			Options:       q.Options,
			Marks:         q.Marks,
			NegativeMarks: q.NegativeMarks,
		})
	}
	return served
}

// SampleQuestions draws a uniform random sample without replacement of at
// most n questions. The shuffle permutation comes from the caller so the
// draw stays testable.
func SampleQuestions(pool []models.Question, n int, perm func(int) []int) []models.Question {
	if n >= len(pool) {
		n = len(pool)
	}
	idx := perm(len(pool))
	sample := make([]models.Question, 0, n)
	for _, i := range idx[:n] {
		sample = append(sample, pool[i])
	}
	return sample
}
