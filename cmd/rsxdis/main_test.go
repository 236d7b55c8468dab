package main

import (
	"bytes"
	"fmt"
	"testing"
)

func TestClipWriter(t *testing.T) {
	var out bytes.Buffer
	c := &clipWriter{w: &out, width: 10}
	n, err := fmt.Fprintf(c, "short\n\tx\n0123456789abc\npart")
	if err != nil || n != len("short\n\tx\n0123456789abc\npart") {
		t.Fatalf("write n=%d err=%v", n, err)
	}
	want := "short\n        x\n012345678>\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
	fmt.Fprintln(c)
	if out.String() != want+"part\n" {
		t.Fatalf("pending line lost: %q", out.String())
	}
}
