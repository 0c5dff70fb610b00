package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestAskTrimsInput(t *testing.T) {
	p := newPrompter(strings.NewReader("  hello world  \n"), &bytes.Buffer{})
	got, err := p.ask("Question?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("ask = %q, want %q", got, "hello world")
	}
}

func TestAskEOF(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.ask("Question?")
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestAskDefaultKeepsValueOnEmptyInput(t *testing.T) {
	p := newPrompter(strings.NewReader("\ncustom\n"), &bytes.Buffer{})

	got, err := p.askDefault("Output directory", "music")
	if err != nil {
		t.Fatalf("askDefault: %v", err)
	}
	if got != "music" {
		t.Fatalf("empty input should keep default, got %q", got)
	}

	got, err = p.askDefault("Output directory", "music")
	if err != nil {
		t.Fatalf("askDefault: %v", err)
	}
	if got != "custom" {
		t.Fatalf("expected typed value, got %q", got)
	}
}

func TestAskBool(t *testing.T) {
	p := newPrompter(strings.NewReader("\nmaybe\nyes\nn\n"), &bytes.Buffer{})

	got, err := p.askBool("Continue?", true)
	if err != nil || !got {
		t.Fatalf("empty input should keep default true, got %v err %v", got, err)
	}

	// "maybe" is rejected and re-asked, then "yes" is accepted.
	got, err = p.askBool("Continue?", false)
	if err != nil || !got {
		t.Fatalf("expected true after re-ask, got %v err %v", got, err)
	}

	got, err = p.askBool("Continue?", true)
	if err != nil || got {
		t.Fatalf("expected explicit no, got %v err %v", got, err)
	}
}

func TestAskChoiceRejectsUnknownOptions(t *testing.T) {
	p := newPrompter(strings.NewReader("superloud\n128K\n"), &bytes.Buffer{})

	got, err := p.askChoice("Audio quality", []string{"64k", "128k", "320k"}, "320k")
	if err != nil {
		t.Fatalf("askChoice: %v", err)
	}
	if got != "128k" {
		t.Fatalf("expected canonical 128k, got %q", got)
	}
}

func TestAskIntRejectsNegatives(t *testing.T) {
	p := newPrompter(strings.NewReader("-4\nabc\n7\n"), &bytes.Buffer{})

	got, err := p.askInt("Max downloads", 0)
	if err != nil {
		t.Fatalf("askInt: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7 after re-asks, got %d", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("  first\nsecond\n"); got != "first" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine("single"); got != "single" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine(""); got != "" {
		t.Fatalf("firstLine = %q", got)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("truncateLine = %q", got)
	}
	if got := truncateLine("a very long line indeed", 10); got != "a very ..." {
		t.Fatalf("truncateLine = %q", got)
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:     "512B",
		2048:    "2.0KB",
		5 << 20: "5.0MB",
	}
	for in, want := range cases {
		if got := humanBytes(in); got != want {
			t.Fatalf("humanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
