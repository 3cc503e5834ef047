package llm

import (
	"fmt"
	"strings"

	"github.com/mmmustafa1/mcqs-quiz/models"
)

// Prompt builders. The formats here are load-bearing: the quiz prompt
// teaches the model the exact line convention the text parser recognizes
// (Q:/A)/trailing */Explanation:), and the flashcard prompt pins the JSON
// array shape the tolerant parser extracts.

// BuildQuizTopicPrompt asks for MCQs on a free-form topic
func BuildQuizTopicPrompt(topic string, numberOfQuestions int, difficulty, customInstructions string) string {
	prompt := fmt.Sprintf(`Please create %d multiple-choice questions (MCQs) on the topic of "%s". The difficulty level should be %s.

Follow these guidelines:
1. Format each question in this specific format:
   Q: [Question text]
   A) [Option 1]
      Explanation: [Explanation]
   B) [Option 2]
      Explanation: [Explanation]
   C) [Option 3]* (the correct can be any option, not just C)
      Explanation: [Explanation]
   D) [Option 4]
      Explanation: [Explanation]

2. Mark the correct answer with an asterisk (*) at the end of the option.
3. Create exactly %d questions covering different aspects of the topic.
4. Make questions that test understanding, not just memorization.
5. Ensure all information is factually accurate.
6. Include clear explanations for the answers.
7. Make all options plausible but ensure only one is correct.
8. For %s difficulty, ensure the questions are appropriately challenging.`,
		numberOfQuestions, topic, difficulty, numberOfQuestions, difficulty)

	if strings.TrimSpace(customInstructions) != "" {
		prompt += "\n\nAdditional Instructions:\n" + customInstructions
	}
	return prompt
}

// BuildQuizDocumentPrompt asks for MCQs covering attached documents
func BuildQuizDocumentPrompt(documentCount int, customInstructions string) string {
	plural := "document"
	coverage := "document"
	if documentCount > 1 {
		plural = "documents"
		coverage = "content across all documents"
	}

	prompt := fmt.Sprintf(`Please create multiple-choice questions (MCQs) based on the content of the uploaded %s.

Follow these guidelines:
1. Format each question in this specific format:
   Q: [Question text]
   A) [Option 1]
      Explanation: [Explanation]
   B) [Option 2]
      Explanation: [Explanation]
   C) [Option 3]*
      Explanation: [Explanation]
   D) [Option 4]
      Explanation: [Explanation]


2. Mark the correct answer with an asterisk (*) at the end of the option.
3. Create questions covering the entire %s.
4. Make questions that test understanding, not just memorization.
5. Make sure the questions and answers are correct.
6. Include explanations for the answers.
7. Make all options plausible but ensure only one is correct.
8. Cover different topics from the %s.`, plural, coverage, plural)

	if strings.TrimSpace(customInstructions) != "" {
		prompt += "\n\nAdditional Instructions:\n" + customInstructions
	}
	return prompt
}

var difficultyGuidance = map[string]string{
	"easy":   "Focus on basic concepts, simple definitions, and fundamental facts. Keep questions straightforward.",
	"medium": "Include some analysis and application questions. Mix basic concepts with moderate complexity.",
	"hard":   "Include complex analysis, synthesis, and evaluation questions. Challenge deeper understanding.",
	"mixed":  "Vary difficulty levels - include easy, medium, and hard questions for comprehensive review.",
}

var cardTypeGuidance = map[string]string{
	"question-answer":     "Create questions on the front and comprehensive answers on the back.",
	"term-definition":     "Put terms/concepts on the front and their definitions/explanations on the back.",
	"concept-explanation": "Put concepts on the front and detailed explanations on the back.",
	"mixed":               "Use a variety of formats - questions/answers, terms/definitions, and concept explanations.",
}

// BuildFlashcardPrompt asks for a JSON array of flashcards from content
// that came either from a document or a free-form prompt.
func BuildFlashcardPrompt(contentText string, opts models.FlashcardGenerationOptions, source string) string {
	var focus string
	if len(opts.FocusAreas) > 0 {
		focus = fmt.Sprintf("\n- Focus areas: %s", strings.Join(opts.FocusAreas, ", "))
	}

	return fmt.Sprintf(`You are an educational content expert specializing in creating effective flashcards for learning and retention.

CONTENT TO PROCESS:
%s

GENERATION REQUIREMENTS:
- Generate exactly %d flashcards
- Difficulty level: %s
- Card type: %s
- Source: %s%s

DIFFICULTY GUIDANCE:
%s

CARD TYPE GUIDANCE:
%s

QUALITY GUIDELINES:
1. Make the front side clear, concise, and specific
2. Provide comprehensive but focused answers on the back
3. Ensure each flashcard tests a single concept or fact
4. Use active voice and clear language
5. Include context when necessary for understanding
6. Vary question types to maintain engagement
7. Ensure factual accuracy and consistency
8. Make cards self-contained (no references to "the text" or "above")

FORMATTING RULES:
- Front side: Maximum 150 characters for optimal readability
- Back side: Maximum 500 characters, but aim for 200-300 for best retention
- Use proper punctuation and grammar
- Avoid overly complex terminology unless necessary
- Include examples where helpful

OUTPUT FORMAT:
Return a valid JSON array with this exact structure (no additional text or formatting):
[
  {
    "front": "Clear, concise question or term",
    "back": "Comprehensive but focused answer or definition",
    "difficulty": "easy|medium|hard",
    "category": "relevant_topic_category"
  }
]

IMPORTANT:
- Return ONLY the JSON array, no additional text
- Ensure all JSON is properly formatted and valid
- Each flashcard must have all four required fields
- Categories should be descriptive but concise (max 30 characters)
- Difficulty should match the requested level or be appropriate for mixed difficulty`,
		contentText, opts.NumberOfCards, opts.Difficulty, opts.CardType, source, focus,
		difficultyGuidance[opts.Difficulty], cardTypeGuidance[opts.CardType])
}
