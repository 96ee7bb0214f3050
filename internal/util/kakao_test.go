package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyKakaoSeeMorePadding(t *testing.T) {
	out := ApplyKakaoSeeMorePadding("body line", "Header")
	assert.True(t, strings.HasPrefix(out, "Header"+KakaoZeroWidthSpace))
	assert.True(t, strings.HasSuffix(out, "\nbody line"))
	assert.Equal(t, KakaoSeeMorePadding, strings.Count(out, KakaoZeroWidthSpace))

	assert.Equal(t, "  ", ApplyKakaoSeeMorePadding("  ", "Header"))
}

func TestStripLeadingHeader(t *testing.T) {
	assert.Equal(t, "rest", StripLeadingHeader("Title\n\nrest", "Title"))
	assert.Equal(t, "rest", StripLeadingHeader("Title\r\nrest", "Title"))
	assert.Equal(t, "Other\nrest", StripLeadingHeader("Other\nrest", "Title"))
	assert.Equal(t, "Title\nrest", StripLeadingHeader("Title\nrest", " "))
}

func TestApplySeeMoreWithHeader(t *testing.T) {
	out := ApplySeeMoreWithHeader("Title\nline 1\nline 2", "Title", "Open", " (more)")
	assert.True(t, strings.HasPrefix(out, "Title (more)"+KakaoZeroWidthSpace))
	assert.True(t, strings.HasSuffix(out, "\nline 1\nline 2"))
	assert.Equal(t, 1, strings.Count(out, "Title"))

	out = ApplySeeMoreWithHeader("line 1", "", "Open", "")
	assert.True(t, strings.HasPrefix(out, "Open"+KakaoZeroWidthSpace))
}
