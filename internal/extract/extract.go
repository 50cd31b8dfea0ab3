package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

// ErrUnreadableInput marks content that is structurally unreadable (binary
// where text was expected, or a table without a parseable header). This is
// the one extraction failure that propagates to the caller; everything
// else degrades to generic raw events.
var ErrUnreadableInput = errors.New("unreadable input")

// Metadata describes what extraction saw in one file.
type Metadata struct {
	Kind     model.SourceKind `json:"kind"`
	Columns  []string         `json:"columns,omitempty"`
	RowCount int              `json:"row_count"`
}

// Extractor turns raw file content into loosely-typed raw events.
type Extractor struct {
	log *zap.Logger
}

// New creates an Extractor.
func New(log *zap.Logger) *Extractor {
	return &Extractor{log: log}
}

// ExtractFile splits file content into raw events. kind is "csv", "text"
// or "auto"; auto detects by file extension, defaulting to text.
func (e *Extractor) ExtractFile(name string, content []byte, kind string) ([]model.RawEvent, Metadata, error) {
	if !utf8.Valid(content) {
		return nil, Metadata{}, fmt.Errorf("%s: %w: not valid UTF-8 text", name, ErrUnreadableInput)
	}

	switch resolveKind(name, kind) {
	case "csv":
		return e.extractCSV(name, content)
	case "text":
		return e.extractText(name, content)
	default:
		return nil, Metadata{}, fmt.Errorf("%s: unsupported file kind %q", name, kind)
	}
}

func resolveKind(name, kind string) string {
	switch strings.ToLower(kind) {
	case "csv":
		return "csv"
	case "text", "txt":
		return "text"
	case "", "auto":
		if strings.EqualFold(filepath.Ext(name), ".csv") {
			return "csv"
		}
		return "text"
	default:
		return strings.ToLower(kind)
	}
}
