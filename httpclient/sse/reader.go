// Package sse decodes text/event-stream response bodies.
package sse

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"
)

// MaxLineSize is the longest event-stream line the reader accepts.
const MaxLineSize = 1 << 20

// Event is one dispatched server-sent event.
type Event struct {
	// Type is the "event:" field. Empty means "message".
	Type string
	// Data is the "data:" payload; multiple data lines are joined with "\n".
	Data string
	// ID is the last event ID seen on the stream, which persists across
	// events until the server changes it.
	ID string
	// Retry is the reconnection delay requested by the server, if any.
	Retry time.Duration
}

// Reader reads server-sent events from a stream.
type Reader interface {
	// Next returns the next event. It returns io.EOF when the stream ends.
	Next() (*Event, error)
	// LastEventID returns the ID to send as Last-Event-ID on reconnect.
	LastEventID() string
	// Close releases the underlying stream.
	Close() error
}

type reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
	lastID  string
	first   bool
}

// NewReader creates a reader over body. Lines may end in "\n", "\r\n" or
// "\r".
func NewReader(body io.ReadCloser) Reader {
	s := bufio.NewScanner(body)
	s.Buffer(make([]byte, 0, 4096), MaxLineSize)
	s.Split(scanLines)
	return &reader{scanner: s, body: body, first: true}
}

// Next returns the next event.
func (r *reader) Next() (*Event, error) {
	var (
		ev      Event
		data    strings.Builder
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if r.first {
			line = strings.TrimPrefix(line, "\uFEFF")
			r.first = false
		}

		if line == "" {
			if hasData {
				ev.Data = data.String()
				ev.ID = r.lastID
				return &ev, nil
			}
			ev = Event{}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			ev.Type = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.ParseUint(value, 10, 63); err == nil {
				ev.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	// An event without its terminating blank line is not dispatched.
	return nil, io.EOF
}

func (r *reader) LastEventID() string {
	return r.lastID
}

// Close releases the underlying stream.
func (r *reader) Close() error {
	return r.body.Close()
}

func parseLine(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}

// scanLines is bufio.ScanLines extended to treat a lone '\r' as a line end.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Need one more byte to tell "\r" from "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
