package downloader

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryOfWrappedErrors(t *testing.T) {
	base := errors.New("boom")
	err := wrapCategory(CategoryExtraction, base)
	if CategoryOf(err) != CategoryExtraction {
		t.Fatalf("expected extraction, got %q", CategoryOf(err))
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapping should preserve the error chain")
	}

	// Category survives further fmt wrapping.
	outer := fmt.Errorf("context: %w", err)
	if CategoryOf(outer) != CategoryExtraction {
		t.Fatalf("category lost through wrapping: %q", CategoryOf(outer))
	}

	if CategoryOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors should have no category")
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{wrapCategory(CategoryConfig, errors.New("bad config")), 2},
		{wrapCategory(CategoryInvalidURL, errors.New("bad url")), 3},
		{wrapCategory(CategoryExtraction, errors.New("fetch failed")), 4},
		{wrapCategory(CategoryNetwork, errors.New("timeout")), 1},
		{wrapCategory(CategoryFilesystem, errors.New("disk")), 1},
		{errors.New("uncategorized"), 1},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMarkReported(t *testing.T) {
	err := MarkReported(errors.New("shown already"))
	if !IsReported(err) {
		t.Fatalf("expected reported marker")
	}
	if IsReported(errors.New("fresh")) {
		t.Fatalf("fresh errors should not be reported")
	}
	if MarkReported(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestMarkReportedKeepsCategory(t *testing.T) {
	err := MarkReported(wrapCategory(CategoryInvalidURL, errors.New("bad url")))
	if CategoryOf(err) != CategoryInvalidURL {
		t.Fatalf("category lost through reported marker: %q", CategoryOf(err))
	}
	if ExitCode(err) != 3 {
		t.Fatalf("exit code lost through reported marker: %d", ExitCode(err))
	}
}
