package models

// Option is one answer choice of a multiple-choice question. At most one
// option per question is expected to be correct, but the parser does not
// enforce that; scoring simply never matches when no option is marked.
type Option struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Question is a parsed multiple-choice question. UserAnswerIndex is nil
// until the question has been answered in a session.
type Question struct {
	Text            string   `json:"question"`
	Options         []Option `json:"options"`
	UserAnswerIndex *int     `json:"user_answer_index,omitempty"`
}

// Answered reports whether an answer has been recorded.
func (q *Question) Answered() bool {
	return q.UserAnswerIndex != nil
}

// AnsweredCorrectly computes correctness lazily from the recorded answer.
// An unanswered question is never correct.
func (q *Question) AnsweredCorrectly() bool {
	if q.UserAnswerIndex == nil {
		return false
	}
	idx := *q.UserAnswerIndex
	if idx < 0 || idx >= len(q.Options) {
		return false
	}
	return q.Options[idx].IsCorrect
}

// QuizSettings is the option bag in effect for one quiz run
type QuizSettings struct {
	ImmediateFeedback bool `json:"immediate_feedback"`
	ShuffleQuestions  bool `json:"shuffle_questions"`
	ShuffleOptions    bool `json:"shuffle_options"`
}

// DefaultQuizSettings returns the settings used when none are stored
func DefaultQuizSettings() QuizSettings {
	return QuizSettings{
		ImmediateFeedback: true,
		ShuffleQuestions:  false,
		ShuffleOptions:    false,
	}
}

// QuizHistoryEntry is an immutable snapshot of one finished quiz,
// complete enough to replay it later.
type QuizHistoryEntry struct {
	ID             string       `json:"id"`
	Timestamp      int64        `json:"timestamp"` // unix milliseconds
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Title          string       `json:"title,omitempty"`
	Questions      []Question   `json:"questions"`
	Settings       QuizSettings `json:"settings"`
}
