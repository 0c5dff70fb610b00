package downloader

import "errors"

// Category classifies a failure for exit codes and user-facing handling.
type Category string

const (
	CategoryInvalidURL  Category = "invalid_url"
	CategoryConfig      Category = "config"
	CategoryExtraction  Category = "extraction"
	CategoryNetwork     Category = "network"
	CategoryFilesystem  Category = "filesystem"
	CategoryUnsupported Category = "unsupported"
)

// CategorizedError attaches a Category to an underlying error.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e CategorizedError) Error() string {
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

func wrapCategory(category Category, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

// CategoryOf returns the category of an error, or empty when uncategorized.
func CategoryOf(err error) Category {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryConfig:
		return 2
	case CategoryInvalidURL:
		return 3
	case CategoryExtraction:
		return 4
	default:
		return 1
	}
}

type reportedError struct {
	err error
}

func (e reportedError) Error() string {
	return e.err.Error()
}

func (e reportedError) Unwrap() error {
	return e.err
}

// MarkReported flags an error as already shown to the user so callers higher
// up the stack do not print it a second time.
func MarkReported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// IsReported returns true if the error has already been printed to stderr.
func IsReported(err error) bool {
	var re reportedError
	return errors.As(err, &re)
}
