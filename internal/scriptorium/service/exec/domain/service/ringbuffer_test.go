package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapBuffer_UnderLimit(t *testing.T) {
	b := newCapBuffer(64)

	n, err := b.Write([]byte("hello "))
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = b.Write([]byte("world"))

	assert.Equal(t, "hello world", b.String())
}

func TestCapBuffer_TruncatesAndCounts(t *testing.T) {
	b := newCapBuffer(10)

	n, err := b.Write([]byte(strings.Repeat("x", 25)))
	assert.NoError(t, err)
	assert.Equal(t, 25, n)
	_, _ = b.Write([]byte("more"))

	out := b.String()
	assert.True(t, strings.HasPrefix(out, strings.Repeat("x", 10)))
	assert.Contains(t, out, "[truncated: 19 bytes]")
}

func TestCapBuffer_SplitAcrossLimit(t *testing.T) {
	b := newCapBuffer(5)

	_, _ = b.Write([]byte("abc"))
	_, _ = b.Write([]byte("defg"))

	assert.Contains(t, b.String(), "abcde")
	assert.Contains(t, b.String(), "[truncated: 2 bytes]")
}
