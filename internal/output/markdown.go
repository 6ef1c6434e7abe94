package output

import (
	"strings"
)

const (
	noteLines    = 3
	noteMaxChars = 200
)

// RenderMarkdown produces the human-readable rendering of r.
func RenderMarkdown(r Result) string {
	var b strings.Builder

	b.WriteString("# " + r.Metadata.Source + ": Reimagined\n\n")
	b.WriteString("**Original:** " + r.Metadata.Source + "\n")
	b.WriteString("**New Setting:** " + r.Metadata.TargetWorld + "\n")
	b.WriteString("**Core Themes:** " + strings.Join(r.Metadata.ThemesPreserved, ", ") + "\n\n")
	b.WriteString("---\n\n")

	b.WriteString("## The Reimagined Story\n\n")
	b.WriteString(strings.TrimSpace(r.Story) + "\n\n")
	b.WriteString("---\n\n")

	b.WriteString("## Transformation Notes\n\n")
	b.WriteString("*Key decisions made during the adaptation process:*\n\n")

	b.WriteString("### Character Adaptations\n\n")
	for _, c := range r.TransformationDetails.Characters {
		b.WriteString("**" + c.Original + ":** " + CharacterNote(c.Transformation) + "\n\n")
	}

	b.WriteString("### Conflict Reimagined\n\n")
	b.WriteString(FirstParagraph(r.TransformationDetails.Conflict) + "\n")

	return b.String()
}

// CharacterNote joins the first three lines of a transformation with spaces
// and cuts the result to 200 characters, marking the cut with "...".
func CharacterNote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > noteLines {
		lines = lines[:noteLines]
	}
	summary := strings.TrimSpace(strings.Join(lines, " "))

	runes := []rune(summary)
	if len(runes) > noteMaxChars {
		return string(runes[:noteMaxChars]) + "..."
	}
	return summary
}

// FirstParagraph returns text up to its first blank line.
func FirstParagraph(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "\n\n"); i >= 0 {
		return text[:i]
	}
	return text
}
