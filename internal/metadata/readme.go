package metadata

import (
	"os"
	"path/filepath"
	"strings"
)

// readmeMaxChars bounds the README excerpt fed to the embedding.
const readmeMaxChars = 1500

var readmeNames = []string{"README.md", "README", "readme.md", "Readme.md"}

// readmeExcerpt returns the first meaningful prose of a project README,
// truncated at a word boundary near readmeMaxChars.
func readmeExcerpt(root string) string {
	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		return firstParagraph(string(data))
	}
	return ""
}

// firstParagraph strips markdown noise (headers, badges, images, code
// fences, bullet lists) and collects the leading prose lines.
func firstParagraph(content string) string {
	var b strings.Builder

	for _, line := range strings.Split(stripHTMLTags(content), "\n") {
		trimmed := strings.TrimSpace(line)

		if len(trimmed) < 10 {
			continue
		}
		if strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "[") ||
			strings.HasPrefix(trimmed, "!") ||
			strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "<!--") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.Contains(trimmed, "shields.io") {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(trimmed)

		if b.Len() >= readmeMaxChars {
			break
		}
	}

	result := b.String()
	if len(result) > readmeMaxChars {
		result = truncateAtWord(result, readmeMaxChars) + "..."
	}
	return result
}

// truncateAtWord cuts s at the last space before max, respecting UTF-8
// boundaries.
func truncateAtWord(s string, max int) string {
	end := max
	for end > 0 && !isUTF8Start(s[end]) {
		end--
	}
	s = s[:end]
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	return s
}

// isUTF8Start reports whether b begins a UTF-8 rune.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// stripHTMLTags removes angle-bracket tags; READMEs often open with HTML
// badge blocks.
func stripHTMLTags(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
