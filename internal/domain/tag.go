package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tag is a shared label; its description is its external identifier.
type Tag struct {
	ID          int64  `json:"-"`
	Description string `json:"description"`
}

// FoldKey is the case-insensitive lookup key stored beside each description.
// It is NFC-normalized and Unicode case-folded.
func FoldKey(description string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(description)))
}

// DefaultTags are seeded into an empty catalog.
var DefaultTags = []string{
	"C#", "Java", "HTML", "Kotlin", "iOS", "UI/UX", "Design",
	"Apple", "Linux", "React", "Angular", "Redux", "Microsoft",
}
