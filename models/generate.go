package models

// Attachment is a binary document forwarded to the generation API
type Attachment struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// GenerateQuizRequest asks for multiple-choice questions, either on a
// topic or from attached documents.
type GenerateQuizRequest struct {
	Topic              string       `json:"topic,omitempty"`
	Attachments        []Attachment `json:"attachments,omitempty"`
	NumberOfQuestions  int          `json:"number_of_questions,omitempty"`
	Difficulty         string       `json:"difficulty,omitempty"`
	CustomInstructions string       `json:"custom_instructions,omitempty"`
	Title              string       `json:"title,omitempty"`
}

// FlashcardGenerationOptions mirror the knobs of the flashcard generator
type FlashcardGenerationOptions struct {
	NumberOfCards int      `json:"number_of_cards"`
	Difficulty    string   `json:"difficulty"` // easy, medium, hard, mixed
	FocusAreas    []string `json:"focus_areas,omitempty"`
	CardType      string   `json:"card_type"` // question-answer, term-definition, concept-explanation, mixed
}

// GenerateFlashcardsRequest asks for a generated deck from free text or
// an attached document.
type GenerateFlashcardsRequest struct {
	Content    string                     `json:"content,omitempty"`
	Attachment *Attachment                `json:"attachment,omitempty"`
	Options    FlashcardGenerationOptions `json:"options"`
	Title      string                     `json:"title,omitempty"`
}
