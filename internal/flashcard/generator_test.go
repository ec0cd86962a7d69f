package flashcard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/deckgen/deckgen/internal/providers"
)

var testChapter = Chapter{
	ID:         "chapter_001",
	Title:      "Thermodynamics",
	Content:    "Heat flows from hot to cold bodies.",
	SourceFile: "chapter_001.json",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const basicJSON = `[
	{"front": "What is the second law of thermodynamics about?", "back": "The direction of heat flow."},
	{"front": "Heat flows from?", "back": "Hot to cold bodies."}
]`

const clozeJSON = `[
	{"text": "Heat flows from {{c1::hot}} to {{c2::cold}} bodies.", "back_extra": "Second law."},
	{"text": "This card has no deletion marker.", "back_extra": ""}
]`

func TestGenerate(t *testing.T) {
	mock := providers.NewMockClient("mock", basicJSON, clozeJSON)
	gen := NewGenerator(mock, WithMaxCards(10), WithLogger(testLogger()))

	result, err := gen.Generate(context.Background(), testChapter)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(result.BasicCards) != 2 {
		t.Errorf("basic cards = %d, want 2", len(result.BasicCards))
	}
	if result.BasicCards[0].Front != "What is the second law of thermodynamics about?" {
		t.Errorf("front = %q", result.BasicCards[0].Front)
	}

	// Cloze cards without {{c markers are dropped.
	if len(result.ClozeCards) != 1 {
		t.Fatalf("cloze cards = %d, want 1", len(result.ClozeCards))
	}
	if !strings.Contains(result.ClozeCards[0].Text, "{{c1::hot}}") {
		t.Errorf("cloze text = %q", result.ClozeCards[0].Text)
	}

	meta := result.Metadata
	if meta.RunID == "" {
		t.Error("RunID missing")
	}
	if meta.ChapterID != "chapter_001" || meta.ChapterTitle != "Thermodynamics" {
		t.Errorf("metadata chapter = %q / %q", meta.ChapterID, meta.ChapterTitle)
	}
	if meta.BasicCount != 2 || meta.ClozeCount != 1 || meta.TotalCount != 3 {
		t.Errorf("counts = %d/%d/%d", meta.BasicCount, meta.ClozeCount, meta.TotalCount)
	}
	if meta.Provider != "mock" {
		t.Errorf("provider = %q", meta.Provider)
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if !strings.Contains(calls[0].Prompt, "Generate at most 10 cards total.") {
		t.Error("basic prompt missing max cards instruction")
	}
	if !strings.Contains(calls[0].Prompt, "Thermodynamics") {
		t.Error("basic prompt missing chapter title")
	}
	if !strings.Contains(calls[1].Prompt, "{{c1::hidden text}}") {
		t.Error("cloze prompt missing cloze syntax instructions")
	}
}

func TestGenerateBasicRecoversCodeFences(t *testing.T) {
	fenced := "```json\n" + basicJSON + "\n```"
	mock := providers.NewMockClient("mock", fenced)
	gen := NewGenerator(mock, WithLogger(testLogger()))

	cards, _, err := gen.GenerateBasic(context.Background(), testChapter)
	if err != nil {
		t.Fatalf("GenerateBasic: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("cards = %d, want 2", len(cards))
	}
}

func TestGenerateBasicRetriesMalformedOutput(t *testing.T) {
	mock := providers.NewMockClient("mock", "sorry, I cannot do that", basicJSON)
	gen := NewGenerator(mock, WithAttempts(2), WithLogger(testLogger()))

	cards, _, err := gen.GenerateBasic(context.Background(), testChapter)
	if err != nil {
		t.Fatalf("GenerateBasic: %v", err)
	}
	if len(cards) != 2 {
		t.Errorf("cards = %d, want 2", len(cards))
	}
	if got := len(mock.Calls()); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestGenerateBasicRejectsSchemaViolation(t *testing.T) {
	// Missing "back" field fails validation on every attempt.
	mock := providers.NewMockClient("mock", `[{"front": "only front"}]`)
	gen := NewGenerator(mock, WithAttempts(2), WithLogger(testLogger()))

	if _, _, err := gen.GenerateBasic(context.Background(), testChapter); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestGenerateSurfacesProviderError(t *testing.T) {
	mock := providers.NewMockClient("mock").FailWith(errors.New("quota exceeded"))
	gen := NewGenerator(mock, WithAttempts(1), WithLogger(testLogger()))

	if _, err := gen.Generate(context.Background(), testChapter); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestExhaustiveInstructionWhenNoCap(t *testing.T) {
	mock := providers.NewMockClient("mock", basicJSON)
	gen := NewGenerator(mock, WithLogger(testLogger()))

	if _, _, err := gen.GenerateBasic(context.Background(), testChapter); err != nil {
		t.Fatalf("GenerateBasic: %v", err)
	}
	if !strings.Contains(mock.Calls()[0].Prompt, "Be exhaustive.") {
		t.Error("prompt should ask for exhaustive coverage when no cap is set")
	}
}

func TestToTxtExports(t *testing.T) {
	result := &GenerationResult{
		BasicCards: []BasicCard{
			{Front: "Q1", Back: "A1"},
			{Front: "Q2", Back: "A2"},
		},
		ClozeCards: []ClozeCard{
			{Text: "{{c1::X}} marks the spot", BackExtra: "pirate lore"},
			{Text: "{{c1::Y}}"},
		},
	}

	if got, want := result.ToBasicTxt(), "Q1|A1\nQ2|A2"; got != want {
		t.Errorf("ToBasicTxt() = %q, want %q", got, want)
	}
	if got, want := result.ToClozeTxt(), "{{c1::X}} marks the spot|pirate lore\n{{c1::Y}}|"; got != want {
		t.Errorf("ToClozeTxt() = %q, want %q", got, want)
	}
}

func TestParseCardJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain array", `[{"front":"a","back":"b"}]`, false},
		{"fenced array", "```json\n[{\"front\":\"a\",\"back\":\"b\"}]\n```", false},
		{"array with preamble", "Here are your cards:\n[{\"front\":\"a\",\"back\":\"b\"}]\nEnjoy!", false},
		{"empty", "", true},
		{"prose only", "I could not generate any cards.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCardJSON(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseCardJSON(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
