package tokenizer

import (
	"errors"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("boom") }

func TestCountTextCountsDecodedText(t *testing.T) {
	result, err := CountText(testCounter{}, "héllo")
	if err != nil {
		t.Fatalf("CountText error: %v", err)
	}
	if !result.Counted {
		t.Fatalf("expected counted result")
	}
	if result.Tokens != len([]rune("héllo")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("héllo")), result.Tokens)
	}
}

func TestCountTextRejectsNilCounter(t *testing.T) {
	if _, err := CountText(nil, "text"); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountTextPropagatesCounterError(t *testing.T) {
	result, err := CountText(failingCounter{}, "text")
	if err == nil {
		t.Fatalf("expected counter error")
	}
	if result.Counted {
		t.Fatalf("failed count must not be marked counted")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"text-embedding-3-small": true,
		"claude-3-opus":          false,
		"llama-3":                false,
	}
	for model, expected := range testCases {
		if actual := isOpenAIModel(model); actual != expected {
			t.Fatalf("isOpenAIModel(%q) = %v, want %v", model, actual, expected)
		}
	}
}
