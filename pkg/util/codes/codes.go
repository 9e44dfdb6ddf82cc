package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("invalid code length")
	ErrEmptyCharset  = errors.New("charset cannot be empty")
)

const (
	// Upper-case alphanumeric without 0/O and 1/I/L.
	charsetUpperAlphanumeric = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	defaultGiftCardLength = 12
	giftCardGroupSize     = 4
)

// GenerateCode creates a code of specified length from a given character set.
func GenerateCode(length int, charset string) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	if len(charset) == 0 {
		return "", ErrEmptyCharset
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// GenerateNumericCode creates a zero-padded numeric code of the given length.
func GenerateNumericCode(length int) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// FormatCode formats a code with dashes for readability.
// e.g., "ABCD1234" -> "ABCD-1234" with groupSize=4
func FormatCode(code string, groupSize int) string {
	if groupSize < 1 || len(code) <= groupSize {
		return code
	}

	var parts []string
	for i := 0; i < len(code); i += groupSize {
		end := min(i+groupSize, len(code))
		parts = append(parts, code[i:end])
	}
	return strings.Join(parts, "-")
}

// ParseCode removes formatting (dashes, spaces) and upper-cases a code.
func ParseCode(formatted string) string {
	code := strings.ReplaceAll(formatted, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(strings.TrimSpace(code))
}

// Generator issues gift card codes.
type Generator struct {
	length  int
	charset string
}

func NewGenerator(cfg Config) *Generator {
	g := &Generator{length: cfg.GiftCardLength, charset: cfg.Charset}
	if g.length < 1 {
		g.length = defaultGiftCardLength
	}
	if g.charset == "" {
		g.charset = charsetUpperAlphanumeric
	}
	return g
}

// GiftCardCode returns the normalized code to store; display it with FormatCode.
func (g *Generator) GiftCardCode() (string, error) {
	return GenerateCode(g.length, g.charset)
}

// Display renders a stored code in dash-separated groups.
func (g *Generator) Display(code string) string {
	return FormatCode(code, giftCardGroupSize)
}
