// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ircmsg

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxFrameLength is the number of bytes an outbound frame may carry
// before the line terminator is appended.
const MaxFrameLength = 511

// maxFields is the number of space separated fields a line is split into.
// Anything after the third space is kept as a single trailing field.
const maxFields = 4

var (
	// ErrNoSource is returned when a source prefix does not carry a nick.
	ErrNoSource = errors.New("line has no nick source")
	// ErrMalformed is returned by accessors when an expected field is missing.
	ErrMalformed = errors.New("malformed line")
)

// Line is one inbound protocol line split into at most four fields:
// an optional source (starting with ':'), the verb, and the remaining text.
type Line struct {
	Raw    string
	Fields []string
}

// Parse splits a raw line (without its terminator) on single spaces into at
// most four fields. Parsing never fails; missing fields are reported by
// [Line.Field].
func Parse(raw string) Line {
	raw = strings.TrimRight(raw, "\r\n")
	return Line{
		Raw:    raw,
		Fields: strings.SplitN(raw, " ", maxFields),
	}
}

// Field returns the i-th field, or ErrMalformed when the line is too short.
func (l Line) Field(i int) (string, error) {
	if i < 0 || i >= len(l.Fields) {
		return "", ErrMalformed
	}
	return l.Fields[i], nil
}

// Len returns the number of fields.
func (l Line) Len() int {
	return len(l.Fields)
}

// VerbCandidates returns the uppercased first and second fields. Handlers are
// looked up with the first field (lines without a source, like PING) and then
// the second (lines with a source).
func (l Line) VerbCandidates() []string {
	out := make([]string, 0, 2)
	for i := 0; i < 2 && i < len(l.Fields); i++ {
		out = append(out, strings.ToUpper(l.Fields[i]))
	}
	return out
}

// Nick returns the nick of the line's source.
func (l Line) Nick() (string, error) {
	src, err := l.Field(0)
	if err != nil {
		return "", err
	}
	return NickFromSource(src)
}

// NickFromSource extracts "nick" from ":nick!user@host".
func NickFromSource(src string) (string, error) {
	if !strings.HasPrefix(src, ":") {
		return "", ErrNoSource
	}
	bang := strings.IndexByte(src, '!')
	if bang < 2 {
		return "", ErrNoSource
	}
	return src[1:bang], nil
}

// TrimTrailing strips the ':' that introduces a trailing parameter.
func TrimTrailing(s string) string {
	return strings.TrimPrefix(s, ":")
}

// lineBreaks turns embedded line breaks into spaces so one call can never
// put more than one protocol line on the wire.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Frame clips text to MaxFrameLength bytes and appends exactly one line
// terminator. Interior line breaks become spaces and the clip never splits a
// UTF-8 sequence.
func Frame(text string) string {
	text = lineBreaks.Replace(strings.TrimRight(text, "\r\n"))
	if len(text) > MaxFrameLength {
		text = text[:clipIndex(text, MaxFrameLength)]
	}
	return text + "\n"
}

// clipIndex returns the largest cut point <= limit that does not fall inside
// a multibyte rune. Invalid input is cut at limit.
func clipIndex(text string, limit int) int {
	for i := limit; i > limit-utf8.UTFMax && i > 0; i-- {
		if utf8.RuneStart(text[i]) {
			return i
		}
	}
	return limit
}
