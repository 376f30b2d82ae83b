package wire

import (
	"io"
	"strings"
	"testing"
)

func TestLengthReaderExactRead(t *testing.T) {
	lr := newLengthReader(strings.NewReader("hello world"), 5)

	data, err := io.ReadAll(lr)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestLengthReaderEndsAtShortSourceEOF(t *testing.T) {
	lr := newLengthReader(strings.NewReader("abc"), 10)

	data, err := io.ReadAll(lr)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abc" {
		t.Fatalf("got %q, want %q", data, "abc")
	}
}
