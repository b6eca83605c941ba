// Package assembler turns generated text back into a complete document.
package assembler

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/starford/recast/internal/models"
)

// DateLayout is the format of a defaulted date field.
const DateLayout = "2006-01-02"

var fenceRe = regexp.MustCompile("(?s)^```(?:markdown)?\n(.*?)\n```$")

// Output is an assembled document.
type Output struct {
	Content   []byte
	Body      string
	WordCount int
}

// Assemble cleans generated text, sets the date default on doc's
// front-matter and renders the final file content.
func Assemble(doc *models.Document, generated string, now time.Time) (Output, error) {
	body := Clean(generated, doc.Title())
	EnsureDate(doc.Frontmatter, now)

	fm, err := Serialize(doc.Frontmatter)
	if err != nil {
		return Output{}, fmt.Errorf("assembler: %s: %w", doc.Name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(fm) + len(body) + 8)
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	buf.WriteString(body)

	return Output{
		Content:   buf.Bytes(),
		Body:      body,
		WordCount: CountWords(body),
	}, nil
}

// Clean strips a code fence wrapping the whole text and a leading
// `# <title>` heading together with the blank lines after it.
func Clean(text, title string) string {
	text = fenceRe.ReplaceAllString(strings.TrimSpace(text), "${1}")
	if title == "" {
		return text
	}
	headingRe, err := regexp.Compile(`^# +` + regexp.QuoteMeta(title) + `\n+`)
	if err != nil {
		return text
	}
	return headingRe.ReplaceAllString(text, "")
}

// CountWords returns the number of whitespace separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EnsureDate keeps a non-empty date and otherwise sets now's local date.
func EnsureDate(fm *models.Frontmatter, now time.Time) {
	if !fm.Empty("date") {
		return
	}
	fm.Set("date", now.Local().Format(DateLayout))
}
