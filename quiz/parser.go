package quiz

import (
	"regexp"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

// The parser turns one block of freeform pasted text into questions. The
// format is a loose convention, not a grammar: question lines, "A) ..."
// option lines with a trailing "*" on the correct one, and optional
// "Explanation:" lines. Anything it cannot place is dropped, never an
// error; callers must check for an empty result themselves.

var (
	numberedQuestionRe = regexp.MustCompile(`^Q\d+:`)
	dottedQuestionRe   = regexp.MustCompile(`^\d+\.`)
	optionRe           = regexp.MustCompile(`^[A-Za-z]\)`)
)

const explanationPrefix = "Explanation:"

type lineKind int

const (
	lineBlank lineKind = iota
	lineQuestion
	lineOption
	lineExplanation
)

// classifyLine tags a trimmed line. Any non-empty line that is neither an
// option line nor an explanation line starts a new question. That fallback
// keeps inconsistently formatted pastes usable, at the price of misfiring
// on genuinely malformed input.
func classifyLine(line string) lineKind {
	switch {
	case line == "":
		return lineBlank
	case optionRe.MatchString(line):
		return lineOption
	case strings.HasPrefix(line, explanationPrefix):
		return lineExplanation
	default:
		return lineQuestion
	}
}

// questionText strips the recognized question prefixes. Unprefixed
// fallback lines are used verbatim.
func questionText(line string) string {
	switch {
	case strings.HasPrefix(line, "Q:"):
		return strings.TrimSpace(line[2:])
	case numberedQuestionRe.MatchString(line):
		return strings.TrimSpace(numberedQuestionRe.ReplaceAllString(line, ""))
	case dottedQuestionRe.MatchString(line):
		return strings.TrimSpace(dottedQuestionRe.ReplaceAllString(line, ""))
	default:
		return line
	}
}

// Parse scans text line by line and returns the questions it recognized,
// in source order. Questions without a single parsed option are dropped.
func Parse(text string) []models.Question {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		parsed          []models.Question
		currentQuestion *models.Question
		currentOption   *models.Option
	)

	closeOption := func() {
		if currentOption != nil && currentQuestion != nil {
			currentQuestion.Options = append(currentQuestion.Options, *currentOption)
		}
		currentOption = nil
	}

	closeQuestion := func() {
		closeOption()
		if currentQuestion != nil && len(currentQuestion.Options) > 0 {
			parsed = append(parsed, *currentQuestion)
		}
		currentQuestion = nil
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)

		switch classifyLine(line) {
		case lineQuestion:
			closeQuestion()
			currentQuestion = &models.Question{Text: questionText(line)}

		case lineOption:
			// Option lines outside a question are dropped
			if currentQuestion == nil {
				continue
			}
			closeOption()
			optionText := strings.TrimSpace(line[2:])
			isCorrect := strings.HasSuffix(optionText, "*")
			if isCorrect {
				optionText = strings.TrimSpace(strings.TrimSuffix(optionText, "*"))
			}
			currentOption = &models.Option{Text: optionText, IsCorrect: isCorrect}

		case lineExplanation:
			// Explanation lines without an open option are dropped
			if currentOption == nil {
				continue
			}
			extra := strings.TrimSpace(line[len(explanationPrefix):])
			if currentOption.Explanation == "" {
				currentOption.Explanation = extra
			} else {
				currentOption.Explanation += " " + extra
			}

		case lineBlank:
			// A blank line closes the option being built
			closeOption()
		}
	}

	closeQuestion()
	return parsed
}
