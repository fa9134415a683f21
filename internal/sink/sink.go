// Package sink persists extraction results.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// ErrResultOpen is returned when a result is written before its job closed it.
var ErrResultOpen = errors.New("extraction result is still open")

// Mode says what happens to existing destination contents.
type Mode string

const (
	// ModeTruncate overwrites the destination.
	ModeTruncate Mode = "truncate"
	// ModeAppend keeps prior contents and adds new records at the end.
	ModeAppend Mode = "append"
)

// ParseMode parses "append" or "truncate" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTruncate:
		return ModeTruncate, nil
	case ModeAppend:
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("invalid output mode %q (want append or truncate)", s)
	}
}

// Format names a sink implementation.
type Format string

const (
	FormatText   Format = "text"
	FormatSQLite Format = "sqlite"
)

// ParseFormat parses "text" or "sqlite" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatSQLite:
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want text or sqlite)", s)
	}
}

// Sink writes a result to a destination.
// Implementations acquire the destination once and release it on every exit path.
type Sink interface {
	Write(ctx context.Context, destination string, result *extraction.Result, mode Mode) error
}

// New returns the sink for format.
func New(format Format) (Sink, error) {
	switch format {
	case FormatText, "":
		return &TextSink{}, nil
	case FormatSQLite:
		return &SQLiteSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// SinkWriteError means the destination could not be opened, written, flushed or closed.
type SinkWriteError struct {
	Destination string
	Op          string
	Err         error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Op, e.Destination, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// checkResult refuses results that are nil or still being filled.
func checkResult(destination string, result *extraction.Result) error {
	if result == nil || !result.Closed() {
		return &SinkWriteError{Destination: destination, Op: "open", Err: ErrResultOpen}
	}
	return nil
}
