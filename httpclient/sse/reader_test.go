package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func newBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func readAll(t *testing.T, r Reader) []*Event {
	t.Helper()
	var events []*Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		events = append(events, ev)
	}
}

func TestReader_Events(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []Event
	}{
		{"single", "data: hello world\n\n", []Event{{Data: "hello world"}}},
		{"two events", "data: first\n\ndata: second\n\n", []Event{{Data: "first"}, {Data: "second"}}},
		{"typed", "event: update\ndata: x\n\n", []Event{{Type: "update", Data: "x"}}},
		{"multi-line data", "data: a\ndata: b\ndata: c\n\n", []Event{{Data: "a\nb\nc"}}},
		{"comment skipped", ": keepalive\ndata: hi\n\n", []Event{{Data: "hi"}}},
		{"no space after colon", "data:tight\n\n", []Event{{Data: "tight"}}},
		{"crlf lines", "data: one\r\n\r\ndata: two\r\n\r\n", []Event{{Data: "one"}, {Data: "two"}}},
		{"cr lines", "data: one\r\rdata: two\r\r", []Event{{Data: "one"}, {Data: "two"}}},
		{"bom", "\uFEFFdata: b\n\n", []Event{{Data: "b"}}},
		{"id persists", "id: 7\ndata: a\n\ndata: b\n\n", []Event{{ID: "7", Data: "a"}, {ID: "7", Data: "b"}}},
		{"retry", "retry: 1500\ndata: r\n\n", []Event{{Data: "r", Retry: 1500 * time.Millisecond}}},
		{"bad retry ignored", "retry: soon\ndata: r\n\n", []Event{{Data: "r"}}},
		{"event without data dropped", "event: ping\n\ndata: real\n\n", []Event{{Data: "real"}}},
		{"unterminated event dropped", "data: done\n\ndata: partial", []Event{{Data: "done"}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(newBody(tt.stream))
			defer r.Close()
			got := readAll(t, r)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if *got[i] != tt.want[i] {
					t.Errorf("event %d = %+v, want %+v", i, *got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReader_LastEventID(t *testing.T) {
	r := NewReader(newBody("id: 1\ndata: a\n\nid: 2\ndata: b\n\n"))
	defer r.Close()
	readAll(t, r)
	if got := r.LastEventID(); got != "2" {
		t.Errorf("LastEventID() = %q, want %q", got, "2")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line  string
		field string
		value string
	}{
		{"data: hello", "data", "hello"},
		{"data:hello", "data", "hello"},
		{"data:  two", "data", " two"},
		{"event: msg", "event", "msg"},
		{"retry: 3000", "retry", "3000"},
		{"fieldonly", "fieldonly", ""},
	}
	for _, tt := range tests {
		f, v := parseLine(tt.line)
		if f != tt.field || v != tt.value {
			t.Errorf("parseLine(%q) = (%q, %q), want (%q, %q)", tt.line, f, v, tt.field, tt.value)
		}
	}
}
