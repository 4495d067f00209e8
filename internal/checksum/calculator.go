package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator is an interface for computing file checksums.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
// Normalization:
//  1. Remove XML comments (<!-- -->) outside CDATA sections
//  2. Remove property-file comment lines starting with # or !
//  3. Collapse whitespace to single spaces
//  4. Drop whitespace that only separates two tags
//
// Case is preserved: metadata names are case-significant.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// Func returns the hashing function selected by ignoreFormatting.
func (c SHA256) Func(ignoreFormatting bool) func([]byte) string {
	if ignoreFormatting {
		return c.CalculateNormalized
	}
	return c.CalculateRaw
}

func (c SHA256) normalize(content string) string {
	cleaned := removePropertyComments(removeXMLComments(content))

	var b strings.Builder
	b.Grow(len(cleaned))

	lastWasSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.ReplaceAll(strings.TrimSpace(b.String()), "> <", "><")
}

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	cdataOpen    = "<![CDATA["
	cdataClose   = "]]>"
)

// removeXMLComments drops <!-- --> blocks while leaving CDATA content intact.
// An unterminated comment swallows the rest of the input.
func removeXMLComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	for i := 0; i < len(content); {
		rest := content[i:]
		switch {
		case strings.HasPrefix(rest, cdataOpen):
			end := strings.Index(rest, cdataClose)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			b.WriteString(rest[:end+len(cdataClose)])
			i += end + len(cdataClose)
		case strings.HasPrefix(rest, commentOpen):
			end := strings.Index(rest[len(commentOpen):], commentClose)
			if end < 0 {
				return b.String()
			}
			i += len(commentOpen) + end + len(commentClose)
		default:
			b.WriteByte(content[i])
			i++
		}
	}

	return b.String()
}

func removePropertyComments(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
