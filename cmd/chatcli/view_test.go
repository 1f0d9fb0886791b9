package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalNavigator(t *testing.T) {
	var out bytes.Buffer
	nav := newTerminalNavigator("chatcli chat list", &out)

	assert.Equal(t, "/chat/list", nav.Location())

	nav.Redirect("/login")
	nav.Redirect("/login")

	assert.Equal(t, "/login", nav.Location())
	assert.Equal(t, 1, strings.Count(out.String(), "session has expired"))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLineReader(t *testing.T) {
	lines := newLineReader(strings.NewReader("hello\nworld\n"))

	got, ok := lines.next()
	assert.True(t, ok)
	assert.Equal(t, "hello", got)

	got, ok = lines.next()
	assert.True(t, ok)
	assert.Equal(t, "world", got)

	_, ok = lines.next()
	assert.False(t, ok)
}

func TestStrPtr(t *testing.T) {
	assert.Nil(t, strPtr(""))
	if p := strPtr("x"); p == nil || *p != "x" {
		t.Errorf("strPtr(\"x\") = %v", p)
	}
}
