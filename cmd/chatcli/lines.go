package main

import (
	"bufio"
	"io"
)

type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &lineReader{scanner: s}
}

func (l *lineReader) next() (string, bool) {
	if !l.scanner.Scan() {
		return "", false
	}
	return l.scanner.Text(), true
}
