// Package flashcard turns chapter content into Anki-ready flashcards
// using an LLM provider.
package flashcard

import (
	"fmt"
	"strings"
	"time"
)

// BasicCard is a front/back question-answer card.
type BasicCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ClozeCard is a cloze-deletion card. Text contains {{c1::...}} markers.
type ClozeCard struct {
	Text      string `json:"text"`
	BackExtra string `json:"back_extra,omitempty"`
}

// GenerationMetadata describes one generation run for a chapter.
type GenerationMetadata struct {
	RunID                 string    `json:"run_id"`
	ChapterID             string    `json:"chapter_id"`
	ChapterTitle          string    `json:"chapter_title"`
	SourceFile            string    `json:"source_file"`
	GeneratedAt           time.Time `json:"generated_at"`
	Provider              string    `json:"provider"`
	ModelUsed             string    `json:"model_used"`
	BasicCount            int       `json:"basic_count"`
	ClozeCount            int       `json:"cloze_count"`
	TotalCount            int       `json:"total_count"`
	PromptTokens          int       `json:"prompt_tokens"`
	CompletionTokens      int       `json:"completion_tokens"`
	GenerationTimeSeconds float64   `json:"generation_time_seconds"`
}

// GenerationResult holds the cards generated for a single chapter.
type GenerationResult struct {
	Metadata   GenerationMetadata `json:"metadata"`
	BasicCards []BasicCard        `json:"basic_cards"`
	ClozeCards []ClozeCard        `json:"cloze_cards"`
}

// ToBasicTxt renders basic cards as pipe-separated lines for Anki import.
func (r *GenerationResult) ToBasicTxt() string {
	lines := make([]string, 0, len(r.BasicCards))
	for _, c := range r.BasicCards {
		lines = append(lines, fmt.Sprintf("%s|%s", c.Front, c.Back))
	}
	return strings.Join(lines, "\n")
}

// ToClozeTxt renders cloze cards as pipe-separated lines for Anki import.
func (r *GenerationResult) ToClozeTxt() string {
	lines := make([]string, 0, len(r.ClozeCards))
	for _, c := range r.ClozeCards {
		lines = append(lines, fmt.Sprintf("%s|%s", c.Text, c.BackExtra))
	}
	return strings.Join(lines, "\n")
}
