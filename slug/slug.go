// Package slug builds URL-safe identifiers that are unique per owner and
// stay put across edits that do not change the source text.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxAttempts bounds the suffix search. Reaching it means something is badly wrong.
const MaxAttempts = 10000

var (
	ErrNotSluggable = errors.New("slug: record has no slug source")
	ErrExhausted    = errors.New("slug: no free slug")
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[-\s]+`)
)

// Sluggable is implemented by every entity with a slug column.
type Sluggable interface {
	GetID() uint
	SlugSource() string
	SlugKind() string
	GetSlug() string
	SetSlug(string)
	SlugMaxLength() int
}

// TakenFunc reports whether candidate is already used by another live record
// of the same kind and owner.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// Normalize folds text to lowercase ASCII, keeps letters, digits, '_' and '-',
// joins words with single hyphens and cuts the result to maxLen.
func Normalize(text string, maxLen int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), text)
	if err != nil {
		folded = text
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	s := invalidChars.ReplaceAllString(strings.ToLower(folded), "")
	s = separators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if maxLen > 0 && len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}

// Base is the unsuffixed slug for rec. Records whose source normalizes to
// nothing fall back to their kind.
func Base(rec Sluggable) string {
	base := Normalize(rec.SlugSource(), rec.SlugMaxLength())
	if base == "" {
		base = Normalize(rec.SlugKind(), rec.SlugMaxLength())
	}
	return base
}

// WithSuffix appends "-n" to base, shortening base so the result fits in maxLen.
func WithSuffix(base string, n, maxLen int) string {
	suffix := "-" + strconv.Itoa(n)
	if cut := maxLen - len(suffix); cut < len(base) {
		if cut < 0 {
			cut = 0
		}
		base = strings.TrimRight(base[:cut], "-")
	}
	return base + suffix
}

// Derives reports whether existing is base itself or one of its numbered variants.
func Derives(existing, base string, maxLen int) bool {
	if existing == "" {
		return false
	}
	if existing == base {
		return true
	}
	i := strings.LastIndex(existing, "-")
	if i < 0 {
		return false
	}
	n, err := strconv.Atoi(existing[i+1:])
	if err != nil || n < 1 || strconv.Itoa(n) != existing[i+1:] {
		return false
	}
	return existing == WithSuffix(base, n, maxLen)
}

// Generate returns the slug v should be saved with. A persisted record keeps
// its slug while the source text still produces the same base; otherwise the
// first free candidate among base, base-1, base-2, ... wins.
func Generate(ctx context.Context, v any, taken TakenFunc) (string, error) {
	rec, ok := v.(Sluggable)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrNotSluggable, v)
	}
	maxLen := rec.SlugMaxLength()
	base := Base(rec)

	if rec.GetID() != 0 && Derives(rec.GetSlug(), base, maxLen) {
		return rec.GetSlug(), nil
	}

	candidate := base
	for n := 1; n <= MaxAttempts; n++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = WithSuffix(base, n, maxLen)
	}
	return "", fmt.Errorf("%w for %q after %d attempts", ErrExhausted, base, MaxAttempts)
}

// Assign generates a slug for rec and stores it on the record.
func Assign(ctx context.Context, rec Sluggable, taken TakenFunc) error {
	s, err := Generate(ctx, rec, taken)
	if err != nil {
		return err
	}
	rec.SetSlug(s)
	return nil
}
