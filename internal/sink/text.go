package sink

import (
	"bufio"
	"context"
	"errors"
	"os"

	"github.com/mvp-joe/methodex/internal/extractor/extraction"
)

// TextSink writes one bare method name per line, terminated by "\n",
// with no header or footer, in result order.
type TextSink struct{}

// Write renders result into destination.
func (s *TextSink) Write(ctx context.Context, destination string, result *extraction.Result, mode Mode) (err error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case ModeAppend:
		flags |= os.O_APPEND
	case ModeTruncate, "":
		flags |= os.O_TRUNC
	default:
		return &SinkWriteError{Destination: destination, Op: "open", Err: errors.New("unknown mode " + string(mode))}
	}

	if err := checkResult(destination, result); err != nil {
		return err
	}

	lock, err := lockDestination(ctx, destination)
	if err != nil {
		return err
	}
	defer unlock(lock, destination, &err)

	f, err := os.OpenFile(destination, flags, 0644)
	if err != nil {
		return &SinkWriteError{Destination: destination, Op: "open", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &SinkWriteError{Destination: destination, Op: "close", Err: cerr}
		}
	}()

	w := bufio.NewWriter(f)
	for _, rec := range result.Records {
		if _, err := w.WriteString(rec.Name); err != nil {
			return &SinkWriteError{Destination: destination, Op: "write", Err: err}
		}
		if err := w.WriteByte('\n'); err != nil {
			return &SinkWriteError{Destination: destination, Op: "write", Err: err}
		}
	}

	if err := w.Flush(); err != nil {
		return &SinkWriteError{Destination: destination, Op: "flush", Err: err}
	}
	return nil
}
