package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const maxSlugLen = 48

// ArtifactName builds a default base name for a run's artifacts, for example
// 2025-07-16_1530_romeo-and-juliet-in-space-colony_82f06b15.
func ArtifactName(storyKey, worldKey, runID string, now time.Time) string {
	shortID := runID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	slug := Slugify(storyKey+" in "+worldKey, maxSlugLen)
	return fmt.Sprintf("%s_%s_%s", now.Format("2006-01-02_1504"), slug, shortID)
}

// Slugify lowercases s and keeps only letters and digits, joining runs of
// anything else with a single hyphen. An empty result becomes "output".
func Slugify(s string, maxLen int) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.TrimRight(truncateRunes(slug, maxLen), "-")
	}
	if slug == "" {
		return "output"
	}
	return slug
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}
