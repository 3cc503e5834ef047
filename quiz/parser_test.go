package quiz

import (
	"strings"
	"testing"
)

func TestParseBasicQuestion(t *testing.T) {
	text := `Q: What is the capital of France?
A) London
B) Paris *
C) Berlin
D) Madrid`

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}

	q := questions[0]
	if q.Text != "What is the capital of France?" {
		t.Errorf("Unexpected question text: %q", q.Text)
	}
	if len(q.Options) != 4 {
		t.Fatalf("Expected 4 options, got %d", len(q.Options))
	}
	if !q.Options[1].IsCorrect {
		t.Error("Expected option B to be correct")
	}
	if q.Options[1].Text != "Paris" {
		t.Errorf("Expected the correctness marker to be stripped, got %q", q.Options[1].Text)
	}
	for i, opt := range q.Options {
		if i != 1 && opt.IsCorrect {
			t.Errorf("Option %d should not be correct", i)
		}
	}
}

func TestParseQuestionPrefixes(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		expected string
	}{
		{"q colon", "Q: First question", "First question"},
		{"numbered q", "Q12: Numbered question", "Numbered question"},
		{"dotted", "3. Dotted question", "Dotted question"},
		{"bare fallback", "A question without any prefix?", "A question without any prefix?"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text := tc.line + "\na) yes *\nb) no"
			questions := Parse(text)
			if len(questions) != 1 {
				t.Fatalf("Expected 1 question, got %d", len(questions))
			}
			if questions[0].Text != tc.expected {
				t.Errorf("Expected text %q, got %q", tc.expected, questions[0].Text)
			}
		})
	}
}

func TestParseLowercaseOptionLetters(t *testing.T) {
	text := "Q: Pick one\na) first\nb) second *"

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(questions[0].Options))
	}
	if !questions[0].Options[1].IsCorrect {
		t.Error("Expected second option to be correct")
	}
}

func TestParseExplanations(t *testing.T) {
	text := `Q: Why is the sky blue?
A) Rayleigh scattering *
Explanation: Short wavelengths scatter more.
Explanation: That makes the sky appear blue.
B) Reflection from the ocean`

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}

	got := questions[0].Options[0].Explanation
	want := "Short wavelengths scatter more. That makes the sky appear blue."
	if got != want {
		t.Errorf("Expected joined explanation %q, got %q", want, got)
	}
	if questions[0].Options[1].Explanation != "" {
		t.Errorf("Second option should have no explanation, got %q", questions[0].Options[1].Explanation)
	}
}

func TestParseBlankLineClosesOption(t *testing.T) {
	// The explanation after the blank line has no open option and is dropped
	text := `Q: Something
A) An answer *

Explanation: orphaned explanation
B) Another answer`

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if questions[0].Options[0].Explanation != "" {
		t.Errorf("Explanation after blank line should be dropped, got %q", questions[0].Options[0].Explanation)
	}
	if len(questions[0].Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(questions[0].Options))
	}
}

func TestParseDropsQuestionWithoutOptions(t *testing.T) {
	text := `Q: A question with no options
Q: A real question
A) yes *
B) no`

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if questions[0].Text != "A real question" {
		t.Errorf("Wrong question kept: %q", questions[0].Text)
	}
}

func TestParseDropsOrphanOptions(t *testing.T) {
	// Options before any question line cannot happen with the fallback
	// rule unless the option pattern matches first; make sure a leading
	// option line does not panic and is attached to nothing.
	text := "A) floating option\nQ: Real question\nB) answer *"

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Options) != 1 {
		t.Errorf("Expected 1 option, got %d", len(questions[0].Options))
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n"} {
		if got := Parse(text); len(got) != 0 {
			t.Errorf("Parse(%q) should return no questions, got %d", text, len(got))
		}
	}
}

func TestParseMultipleQuestions(t *testing.T) {
	text := `1. First question
A) one *
B) two

2. Second question
A) three
B) four *
Explanation: four is right.`

	questions := Parse(text)
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if questions[0].Text != "First question" || questions[1].Text != "Second question" {
		t.Errorf("Question order or text wrong: %q, %q", questions[0].Text, questions[1].Text)
	}
	if !questions[1].Options[1].IsCorrect {
		t.Error("Second question's second option should be correct")
	}
	if !strings.Contains(questions[1].Options[1].Explanation, "four is right") {
		t.Errorf("Missing explanation: %q", questions[1].Options[1].Explanation)
	}
}

func TestParseWindowsLineEndings(t *testing.T) {
	text := "Q: CRLF question\r\nA) yes *\r\nB) no\r\n"

	questions := Parse(text)
	if len(questions) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Options) != 2 {
		t.Errorf("Expected 2 options, got %d", len(questions[0].Options))
	}
	if questions[0].Options[0].Text != "yes" {
		t.Errorf("Expected trimmed option text, got %q", questions[0].Options[0].Text)
	}
}
