package stringutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "My Cat", CleanTitle("  My Cat  "))
	assert.Equal(t, "one two", CleanTitle("one\ntwo"))
	assert.Equal(t, "tabs too", CleanTitle("tabs\t\ttoo"))
	assert.Equal(t, "clean", CleanTitle("cle\x00an"))
}

func TestStringFromBytes(t *testing.T) {
	assert.Equal(t, "hello", StringFromBytes(append(Utf8bom, []byte("hello")...)))
	assert.Equal(t, "a\nb\nc", StringFromBytes([]byte("a\r\nb\rc")))
	assert.Equal(t, "plain", StringFromBytes([]byte("plain")))
}

func TestPrintableRatio(t *testing.T) {
	assert.Zero(t, PrintableRatio(""))
	assert.Equal(t, 1.0, PrintableRatio("all ascii text"))
	assert.Equal(t, 0.0, PrintableRatio("\x00\x01\x02"))
	assert.InDelta(t, 0.5, PrintableRatio("ab\x00\x01"), 0.001)
}

func TestStringPrefixInWidth(t *testing.T) {
	prefix, width := StringPrefixInWidth("hello", 3)
	assert.Equal(t, "hel", prefix)
	assert.Equal(t, 3, width)

	// CJK runes occupy two columns, an odd width limit leaves one unused.
	prefix, width = StringPrefixInWidth("日本語", 5)
	assert.Equal(t, "日本", prefix)
	assert.Equal(t, 4, width)

	prefix, width = StringPrefixInWidth("hi", 10)
	assert.Equal(t, "hi", prefix)
	assert.Equal(t, 2, width)
}

func TestPrintStringInWidth(t *testing.T) {
	sb := &strings.Builder{}
	remain := PrintStringInWidth(sb, "abcdef", 4, true)
	assert.Equal(t, "abcd", sb.String())
	assert.Equal(t, "ef", remain)

	sb.Reset()
	remain = PrintStringInWidth(sb, "ab", 5, true)
	assert.Equal(t, "ab   ", sb.String())
	assert.Empty(t, remain)

	sb.Reset()
	PrintStringInWidth(sb, "ab", 5, false)
	assert.Equal(t, "   ab", sb.String())
}

func TestReplaceNewLinesWithSpace(t *testing.T) {
	assert.Equal(t, "a b c", ReplaceNewLinesWithSpace("a\nb\r\nc"))
	assert.Equal(t, "no newlines", ReplaceNewLinesWithSpace("no newlines"))
}
