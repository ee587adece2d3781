// Package command formats command templates into literal shell command lines.
//
// Templates reference paths through four placeholders:
//
//	{source}           source path, shell-quoted
//	{output}           artifact path, shell-quoted
//	{source_unquoted}  source path as-is
//	{output_unquoted}  artifact path as-is
//
// Only braces around an identifier ({name}, letters, digits and "_") form a
// placeholder, and any other identifier is an error. All other brace text,
// such as awk '{print $1}', f() { ...; } or {a,b}, is copied verbatim.
package command

import (
	"io"
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
	"github.com/valyala/fasttemplate"
)

// Placeholder names recognized inside templates.
const (
	PlaceholderSource         = "source"
	PlaceholderOutput         = "output"
	PlaceholderSourceUnquoted = "source_unquoted"
	PlaceholderOutputUnquoted = "output_unquoted"
)

const (
	startTag = "{"
	endTag   = "}"
)

// Format substitutes source and output into template.
// The result contains no placeholders and is safe to pass to sh -c.
func Format(template, source, output string) (string, error) {
	var b strings.Builder
	if err := render(&b, template, template, Values(source, output)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// render writes s to w with placeholders expanded. fasttemplate pairs each
// "{" with the next "}"; a pair that does not enclose an identifier is not a
// placeholder, so its "{" is written back and the rest is rendered again.
func render(w *strings.Builder, template, s string, values map[string]string) error {
	// Text after the last "}" cannot hold a placeholder.
	end := strings.LastIndex(s, endTag) + 1
	s, tail := s[:end], s[end:]

	if s != "" {
		t, err := fasttemplate.NewTemplate(s, startTag, endTag)
		if err != nil {
			return newTemplateError(template, err.Error())
		}
		_, err = t.ExecuteFunc(w, func(tw io.Writer, tag string) (int, error) {
			if !isIdentifier(tag) {
				w.WriteString(startTag)
				return 0, render(w, template, tag+endTag, values)
			}
			v, ok := values[tag]
			if !ok {
				return 0, newTemplateError(template, "unknown placeholder {"+tag+"}")
			}
			return io.WriteString(tw, v)
		})
		if err != nil {
			return err
		}
	}

	w.WriteString(tail)
	return nil
}

func isIdentifier(tag string) bool {
	for _, r := range tag {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FormatAll formats each template in order, stopping at the first error.
func FormatAll(templates []string, source, output string) ([]string, error) {
	commands := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		cmd, err := Format(tmpl, source, output)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// Values returns the placeholder substitutions for a source/output pair.
func Values(source, output string) map[string]string {
	return map[string]string{
		PlaceholderSource:         Quote(source),
		PlaceholderOutput:         Quote(output),
		PlaceholderSourceUnquoted: source,
		PlaceholderOutputUnquoted: output,
	}
}

// Quote returns s escaped as a single POSIX shell word.
func Quote(s string) string {
	return shellquote.Join(s)
}
