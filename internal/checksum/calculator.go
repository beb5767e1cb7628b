package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator computes checksums of script content.
type Calculator interface {
	Raw(content string) string
	Normalized(content string) string
}

// SHA256 is the SHA-256 Calculator. The zero value is ready to use.
type SHA256 struct{}

// New returns a SHA-256 calculator.
func New() SHA256 { return SHA256{} }

// Raw hashes content as is.
func (SHA256) Raw(content string) string {
	return hexSum(content)
}

// Normalized hashes the normalized form of content.
func (SHA256) Normalized(content string) string {
	return hexSum(Normalize(content))
}

func hexSum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Normalize strips SQL comments, lower-cases everything outside literals and
// collapses runs of whitespace into a single space.
func Normalize(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	pendingSpace := false

	emit := func(s string, fold bool) {
		for _, r := range s {
			if unicode.IsSpace(r) && fold {
				pendingSpace = b.Len() > 0
				continue
			}
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			if fold {
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
		}
	}

	for rest := content; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "--"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return b.String()
			}
			pendingSpace = b.Len() > 0
			rest = rest[end+1:]

		case strings.HasPrefix(rest, "/*"):
			rest = skipBlockComment(rest)
			pendingSpace = b.Len() > 0

		case rest[0] == '\'':
			n := quotedLen(rest)
			emit(rest[:n], false)
			rest = rest[n:]

		case rest[0] == '$':
			if tag := dollarTag(rest); tag != "" {
				end := strings.Index(rest[len(tag):], tag)
				n := len(rest)
				if end >= 0 {
					n = len(tag) + end + len(tag)
				}
				emit(rest[:n], false)
				rest = rest[n:]
				continue
			}
			emit(rest[:1], true)
			rest = rest[1:]

		default:
			emit(rest[:1], true)
			rest = rest[1:]
		}
	}
	return b.String()
}

// skipBlockComment returns what follows a possibly nested block comment.
func skipBlockComment(s string) string {
	depth := 0
	for i := 0; i+1 < len(s); {
		switch s[i : i+2] {
		case "/*":
			depth++
			i += 2
		case "*/":
			depth--
			i += 2
			if depth == 0 {
				return s[i:]
			}
		default:
			i++
		}
	}
	return ""
}

// quotedLen returns the length of the single-quoted literal at the start of
// s, doubled quotes included. An unterminated literal spans the rest of s.
func quotedLen(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

// dollarTag returns the "$tag$" or "$$" opening s, or "".
func dollarTag(s string) string {
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$':
			return s[:i+1]
		case c == '_' || unicode.IsLetter(rune(c)):
		case c >= '0' && c <= '9' && i > 1:
		default:
			return ""
		}
	}
	return ""
}
