package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	label = color.New(color.FgRed, color.Bold).SprintFunc()
	code  = color.New(color.FgWhite, color.Bold).SprintFunc()
	place = color.New(color.FgCyan).SprintFunc()
	faint = color.New(color.FgHiBlack).SprintFunc()
	link  = color.New(color.FgBlue).SprintFunc()
)

// DisableColors turns off ANSI colors for every formatter in the process.
func DisableColors() {
	color.NoColor = true
}

// Format renders the error as a multi-line terminal report.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n" + label("ERROR"))
	if e.Code != "" {
		b.WriteString(" " + code(e.Code))
	}
	b.WriteString(": " + e.Message + "\n\n")

	section := func(lines ...string) {
		for _, l := range lines {
			b.WriteString("  " + l + "\n")
		}
		b.WriteString("\n")
	}
	if e.Document != "" {
		section(faint("In: ") + place(e.Document))
	}
	if e.Detail != "" {
		section(wrapText(e.Detail, 70)...)
	}
	if e.Wrapped != nil {
		section(faint("Cause: ") + e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		section(place("Hint: ") + e.Suggestion)
	}
	if e.DocURL != "" {
		b.WriteString("  " + faint("Learn more: ") + link(e.DocURL) + "\n")
	}
	return b.String()
}

// FormatCompact renders the error on one line, prefixed by its document.
func (e *Error) FormatCompact() string {
	if e.Document == "" {
		return e.Error()
	}
	return e.Document + ": " + e.Error()
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Document   string   `json:"document,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	DocURL     string   `json:"docUrl,omitempty"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	j := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Document:   e.Document,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		j.Cause = e.Wrapped.Error()
	}
	return json.Marshal(j)
}

// wrapText breaks text into lines of at most width bytes. Preformatted
// text (containing newlines) is split on them instead.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if strings.Contains(text, "\n") {
		return strings.Split(strings.TrimRight(text, "\n"), "\n")
	}

	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	return append(lines, cur.String())
}

// Fprint writes err to w, as a full report when it is (or wraps) an *Error.
func Fprint(w io.Writer, err error) {
	var e *Error
	if errors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s: %s\n\n", label("ERROR"), err.Error())
}
