package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// ApplyKakaoSeeMorePadding pushes text below KakaoTalk's "see more" fold,
// leaving only the instruction line visible in the room.
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	message := strings.TrimSpace(instruction)

	var builder strings.Builder
	builder.Grow(len(text) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + len(message) + 2)

	if message != "" {
		builder.WriteString(message)
	}
	builder.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(text, "\n") {
		builder.WriteByte('\n')
	}
	builder.WriteString(text)

	return builder.String()
}

// StripLeadingHeader drops header from the first line so it is not shown twice.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}

	candidates := []string{
		header + "\r\n\r\n",
		header + "\n\n",
		header + "\r\n",
		header + "\n",
		header,
	}

	for _, candidate := range candidates {
		if strings.HasPrefix(text, candidate) {
			return strings.TrimPrefix(text, candidate)
		}
	}
	return text
}

// ApplySeeMoreWithHeader moves header above the fold and pads the rest.
// fallback is used when header is blank.
func ApplySeeMoreWithHeader(text, header, fallback, suffix string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	body := StripLeadingHeader(text, header)
	instruction := strings.TrimSpace(header)
	if instruction == "" {
		instruction = strings.TrimSpace(fallback)
	} else if suffix != "" {
		instruction += suffix
	}

	return ApplyKakaoSeeMorePadding(body, instruction)
}
