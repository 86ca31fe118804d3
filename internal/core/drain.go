package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Stream names used in errors, logs and span attributes.
const (
	streamStdout = "stdout"
	streamStderr = "stderr"
)

// drainResult is what a drain worker reports on completion. lines is owned
// by the worker until the result is sent and read-only afterwards.
type drainResult struct {
	stream string
	lines  []string
	err    error
}

// maxLineLength lifts bufio.Scanner's default 64 KiB token cap.
const maxLineLength = math.MaxInt

// drain reads r until end-of-stream and returns every line in the order it
// was produced. A line ends at "\n", "\r" or "\r\n"; a final unterminated
// line is kept. There is no practical line-length limit.
//
// The loop ends on the stream's own EOF, never on an outside signal: a child
// that is still writing keeps the pipe open, and the read blocks until its
// data (or EOF) arrives.
//
// If dec is non-nil the bytes are decoded from that encoding to UTF-8.
func drain(r io.Reader, dec encoding.Encoding) ([]string, error) {
	src := r
	if dec != nil {
		src = transform.NewReader(r, dec.NewDecoder())
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	sc.Split(splitLines)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// ReadLines reads r to end-of-stream on the calling goroutine and returns
// its lines, split the same way WaitFor splits a child's output. A read
// failure returns the lines read so far with an error wrapping ErrDrain.
func ReadLines(r io.Reader) ([]string, error) {
	lines, err := drain(r, nil)
	if err != nil {
		return lines, fmt.Errorf("%w: %w", ErrDrain, err)
	}
	return lines, nil
}

// splitLines is a bufio.SplitFunc that ends lines at "\n", a lone "\r", or
// "\r\n". A "\r" at the end of the buffered data waits for the next byte
// so a "\r\n" split across reads still counts as one boundary.
func splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0:
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i], nil
	case i+1 < len(data):
		if data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	case atEOF:
		return i + 1, data[:i], nil
	default:
		return 0, nil, nil
	}
}

// drainTask returns a pool task that drains r, closes it if it is an
// io.Closer, and only then reports on out. out must be buffered so the
// worker never blocks after a coordinator has given up.
func drainTask(stream string, r io.Reader, dec encoding.Encoding, out chan<- drainResult) func() {
	return func() {
		lines, err := drain(r, dec)
		if c, ok := r.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", stream, cerr)
			}
		}
		out <- drainResult{stream: stream, lines: lines, err: err}
	}
}
