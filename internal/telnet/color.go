package telnet

import "strings"

// In-band style codes: '{' escapes a single code character.
//
//	{k {r {g {y {b {m {c {w   dark foreground colors
//	{K {R {G {Y {B {M {C {W   bright foreground colors
//	{0 .. {7                  background colors
//	{h bold  {i italic  {u underline  {f flash  {v reverse  {s strike
//	{x {X                     reset
//	{{                        literal '{'
//
// Unrecognized codes are dropped silently so stale content never leaks
// control characters to a terminal.

var fgCodes = map[byte]string{
	'k': "30", 'r': "31", 'g': "32", 'y': "33",
	'b': "34", 'm': "35", 'c': "36", 'w': "37",
	'K': "90", 'R': "91", 'G': "92", 'Y': "93",
	'B': "94", 'M': "95", 'C': "96", 'W': "97",
}

var styleCodes = map[byte]string{
	'h': "1", 'i': "3", 'u': "4", 'f': "5", 'v': "7", 's': "9",
}

// escapeFor translates one code character into its terminal escape sequence,
// or returns false for unknown codes.
func escapeFor(c byte) (string, bool) {
	if sgr, ok := fgCodes[c]; ok {
		return "\x1b[" + sgr + "m", true
	}
	if sgr, ok := styleCodes[c]; ok {
		return "\x1b[" + sgr + "m", true
	}
	if c >= '0' && c <= '7' {
		return "\x1b[4" + string(c) + "m", true
	}
	if c == 'x' || c == 'X' {
		return "\x1b[0m", true
	}
	return "", false
}

// knownCode reports whether the character names a style code.
func knownCode(c byte) bool {
	_, ok := escapeFor(c)
	return ok
}

// Render converts style codes to terminal escape sequences.
func Render(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			break // trailing escape, dropped
		}
		i++
		next := text[i]
		if next == '{' {
			b.WriteByte('{')
			continue
		}
		if esc, ok := escapeFor(next); ok {
			b.WriteString(esc)
		}
	}
	return b.String()
}

// Strip removes style codes, yielding the visible text.
func Strip(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			break
		}
		i++
		if text[i] == '{' {
			b.WriteByte('{')
		}
	}
	return b.String()
}

// VisibleLength is the on-screen length of the text after code removal.
func VisibleLength(text string) int {
	return len(Strip(text))
}

// Sticky rewrites internal resets to the given color code and appends a
// final reset, so a colored wrapper survives nested styling.
// The color argument is a single code character ('g', 'R', ...).
func Sticky(text string, color byte) string {
	var b strings.Builder
	b.Grow(len(text) + 4)
	b.WriteByte('{')
	b.WriteByte(color)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			break
		}
		i++
		next := text[i]
		if next == '{' {
			b.WriteString("{{")
			continue
		}
		if next == 'x' || next == 'X' {
			b.WriteByte('{')
			b.WriteByte(color)
			continue
		}
		b.WriteByte('{')
		b.WriteByte(next)
	}
	b.WriteString("{x")
	return b.String()
}
