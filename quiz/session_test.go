package quiz

import (
	"testing"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

func twoQuestions() []models.Question {
	return []models.Question{
		{
			Text: "first",
			Options: []models.Option{
				{Text: "a", IsCorrect: true},
				{Text: "b"},
			},
		},
		{
			Text: "second",
			Options: []models.Option{
				{Text: "c"},
				{Text: "d", IsCorrect: true},
			},
		},
	}
}

func TestSessionFullRun(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "test quiz")
	s.Start()

	if snap := s.Snapshot(); !snap.Started || snap.Finished {
		t.Fatalf("Unexpected state after start: started=%v finished=%v", snap.Started, snap.Finished)
	}

	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := s.SubmitAnswer(1); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next on last question failed: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Finished {
		t.Error("Session should be finished after advancing past the last question")
	}
	if got := s.Score(); got != 2 {
		t.Errorf("Expected score 2, got %d", got)
	}
}

func TestSubmitAnswerRules(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "")

	// Before start
	if err := s.SubmitAnswer(0); err == nil {
		t.Error("SubmitAnswer before Start should fail")
	}

	s.Start()

	// Out of range
	if err := s.SubmitAnswer(5); err == nil {
		t.Error("Out-of-range option index should fail")
	}
	if err := s.SubmitAnswer(-1); err == nil {
		t.Error("Negative option index should fail")
	}

	// First valid answer sticks, second is rejected
	if err := s.SubmitAnswer(1); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if err := s.SubmitAnswer(0); err == nil {
		t.Error("Answering the same question twice should fail")
	}

	snap := s.Snapshot()
	if snap.Questions[0].UserAnswerIndex == nil || *snap.Questions[0].UserAnswerIndex != 1 {
		t.Error("First answer should be preserved")
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "")
	s.Start()

	if err := s.Next(); err == nil {
		t.Error("Next without an answer should fail")
	}
}

func TestTerminalStateRejectsEverything(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "")
	s.Start()
	s.Finish()

	if err := s.SubmitAnswer(0); err == nil {
		t.Error("SubmitAnswer after Finish should fail")
	}
	if err := s.Next(); err == nil {
		t.Error("Next after Finish should fail")
	}
}

func TestRestartClearsAnswers(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "")
	s.Start()

	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	s.Restart()

	snap := s.Snapshot()
	if snap.Finished {
		t.Error("Restarted session should not be finished")
	}
	if snap.CurrentQuestionIndex != 0 {
		t.Errorf("Restart should reset the cursor, got %d", snap.CurrentQuestionIndex)
	}
	for i, q := range snap.Questions {
		if q.UserAnswerIndex != nil {
			t.Errorf("Question %d should have no answer after restart", i)
		}
	}
	if got := s.Score(); got != 0 {
		t.Errorf("Expected score 0 after restart, got %d", got)
	}
}

func TestOptionShuffleKeepsCorrectness(t *testing.T) {
	questions := []models.Question{
		{
			Text: "shuffled",
			Options: []models.Option{
				{Text: "right", IsCorrect: true},
				{Text: "w1"}, {Text: "w2"}, {Text: "w3"}, {Text: "w4"},
			},
		},
	}

	settings := models.QuizSettings{ShuffleOptions: true}
	s := NewSession(questions, settings, "")
	s.Start()

	snap := s.Snapshot()
	correct := 0
	seen := map[string]bool{}
	for _, opt := range snap.Questions[0].Options {
		seen[opt.Text] = true
		if opt.IsCorrect {
			correct++
			if opt.Text != "right" {
				t.Errorf("Correctness moved to the wrong option: %q", opt.Text)
			}
		}
	}
	if correct != 1 {
		t.Errorf("Expected exactly one correct option after shuffle, got %d", correct)
	}
	for _, want := range []string{"right", "w1", "w2", "w3", "w4"} {
		if !seen[want] {
			t.Errorf("Option %q lost during shuffle", want)
		}
	}
}

func TestQuestionShuffleKeepsAllQuestions(t *testing.T) {
	var questions []models.Question
	texts := []string{"q1", "q2", "q3", "q4", "q5"}
	for _, text := range texts {
		questions = append(questions, models.Question{
			Text:    text,
			Options: []models.Option{{Text: "a", IsCorrect: true}},
		})
	}

	settings := models.QuizSettings{ShuffleQuestions: true}
	s := NewSession(questions, settings, "")
	s.Start()

	snap := s.Snapshot()
	if len(snap.Questions) != len(texts) {
		t.Fatalf("Expected %d questions, got %d", len(texts), len(snap.Questions))
	}
	seen := map[string]bool{}
	for _, q := range snap.Questions {
		seen[q.Text] = true
	}
	for _, text := range texts {
		if !seen[text] {
			t.Errorf("Question %q lost during shuffle", text)
		}
	}
}

func TestStartWithNoQuestionsIsNoop(t *testing.T) {
	s := NewSession(nil, models.DefaultQuizSettings(), "")
	s.Start()

	if snap := s.Snapshot(); snap.Started {
		t.Error("Starting an empty session should be a no-op")
	}
}

func TestScoreCountsOnlyCorrectAnswers(t *testing.T) {
	s := NewSession(twoQuestions(), models.DefaultQuizSettings(), "")
	s.Start()

	if err := s.SubmitAnswer(1); err != nil { // wrong
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := s.SubmitAnswer(1); err != nil { // right
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	if got := s.Score(); got != 1 {
		t.Errorf("Expected score 1, got %d", got)
	}
}

func TestRegistryReplacesSessions(t *testing.T) {
	r := NewRegistry()

	first := NewSession(twoQuestions(), models.DefaultQuizSettings(), "first")
	second := NewSession(twoQuestions(), models.DefaultQuizSettings(), "second")

	r.Put("user:1", first)
	r.Put("user:1", second)

	got, ok := r.Get("user:1")
	if !ok || got != second {
		t.Error("Put should replace the existing session")
	}

	r.Remove("user:1")
	if _, ok := r.Get("user:1"); ok {
		t.Error("Remove should drop the session")
	}
}

func TestStartClearsReplayedAnswers(t *testing.T) {
	// Retakes replay questions from a history entry, which still carry
	// the answers from the earlier run.
	questions := twoQuestions()
	prev := 1
	questions[0].UserAnswerIndex = &prev
	questions[1].UserAnswerIndex = &prev

	s := NewSession(questions, models.DefaultQuizSettings(), "retake")
	s.Start()

	if got := s.Score(); got != 0 {
		t.Fatalf("Fresh session already has score %d before any answer", got)
	}
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("SubmitAnswer on a fresh session failed: %v", err)
	}
	if got := s.Score(); got != 1 {
		t.Errorf("Expected score 1 after one correct answer, got %d", got)
	}
}

func TestSessionDoesNotMutateInputQuestions(t *testing.T) {
	questions := twoQuestions()

	s := NewSession(questions, models.QuizSettings{ShuffleOptions: true}, "")
	s.Start()
	if err := s.SubmitAnswer(0); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	if questions[0].UserAnswerIndex != nil || questions[1].UserAnswerIndex != nil {
		t.Error("Answering inside the session leaked into the caller's questions")
	}
	if questions[0].Options[0].Text != "a" || questions[0].Options[1].Text != "b" {
		t.Error("Shuffling inside the session reordered the caller's options")
	}
}

func TestSnapshotDoesNotAliasSessionOptions(t *testing.T) {
	s := NewSession(twoQuestions(), models.QuizSettings{ShuffleOptions: true}, "")
	s.Start()

	snap := s.Snapshot()
	snap.Questions[0].Options[0].Text = "tampered"

	fresh := s.Snapshot()
	for _, opt := range fresh.Questions[0].Options {
		if opt.Text == "tampered" {
			t.Fatal("Writing to a snapshot's options changed the live session")
		}
	}

	// The reverse direction: a restart reshuffles the live options and
	// must leave an earlier snapshot untouched.
	before := s.Snapshot()
	want := make([]string, len(before.Questions[0].Options))
	for i, opt := range before.Questions[0].Options {
		want[i] = opt.Text
	}
	for i := 0; i < 20; i++ {
		s.Restart()
	}
	for i, opt := range before.Questions[0].Options {
		if opt.Text != want[i] {
			t.Fatal("Restart reshuffled the options of an earlier snapshot")
		}
	}
}
