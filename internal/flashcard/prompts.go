package flashcard

import "fmt"

const basicSystemPrompt = `You are a world-class Anki flashcard creator that helps students remember facts, concepts, and ideas.`

const clozeSystemPrompt = `You are a world-class Anki cloze-deletion flashcard creator.`

const basicPromptTemplate = `You will be given a chapter from a book.

1. Identify key high-level concepts and ideas presented, including relevant equations. If the content is math or physics-heavy, focus on concepts. If it isn't heavy on concepts, focus on facts.
2. Use your own knowledge to flesh out additional details (facts, dates, equations) to ensure flashcards are self-contained.
3. Make question-answer cards based on the content.
4. Keep questions and answers roughly in the same order as they appear in the chapter.

%s

**Output Format:**
- Return ONLY a JSON array, no markdown fences, no other text
- Each element is an object with "front" (question) and "back" (answer) string fields
- Math: wrap with \( ... \) for inline, \[ ... \] for block
- Chemistry: use \( \ce{H2O} \) format for MathJax
- No newlines within a field - use <br> for lists
- Bold: <b>text</b>, Italic: <i>text</i>

**Chapter Title:** %s

**Chapter Content:**
%s`

const clozePromptTemplate = `You will be given a chapter from a book.

1. Identify key concepts, facts, dates, definitions, and equations for long-term recall.
2. Expand briefly on each point with extra context so cards are self-contained.
3. Convert each point into well-formed cloze deletions:
   - Use {{c1::hidden text}} syntax
   - Use c2, c3 only if a second deletion is really necessary
   - Keep one atomic fact per cloze
   - Add hints if helpful: {{c1::answer::hint}}
4. Maintain original order of appearance from the source.

%s

**Output Format:**
- Return ONLY a JSON array, no markdown fences, no other text
- Each element is an object with "text" (cloze text) and optional "back_extra" (extra info shown on back) string fields
- Math: wrap with \( ... \) for inline, \[ ... \] for block
- Chemistry: use \( \ce{H2O} \) format for MathJax
- No newlines within a field - use <br> for lists

**Chapter Title:** %s

**Chapter Content:**
%s`

func maxCardsInstruction(maxCards int) string {
	if maxCards > 0 {
		return fmt.Sprintf("Generate at most %d cards total.", maxCards)
	}
	return "Be exhaustive. Cover as much as you can - aim for comprehensive coverage of key concepts."
}

func buildBasicPrompt(title, content string, maxCards int) string {
	return fmt.Sprintf(basicPromptTemplate, maxCardsInstruction(maxCards), title, content)
}

func buildClozePrompt(title, content string, maxCards int) string {
	return fmt.Sprintf(clozePromptTemplate, maxCardsInstruction(maxCards), title, content)
}
