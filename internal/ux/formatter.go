package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/plansched/internal/plan"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported output formats.
func Formats() []Format { return []Format{FormatText, FormatJSON, FormatYAML} }

// ParseFormat parses a format name, ignoring case. Empty means text.
func ParseFormat(s string) (Format, error) {
	name := Format(strings.ToLower(strings.TrimSpace(s)))
	if name == "" {
		return FormatText, nil
	}
	for _, f := range Formats() {
		if f == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %s (supported: text, json, yaml)", s)
}

// Formatter writes command results in one output format.
type Formatter interface {
	Format(data any) error
}

// FormatterOptions configures NewFormatter.
type FormatterOptions struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// NoColor renders text without styles.
	NoColor bool
	// Compact drops indentation from JSON and YAML.
	Compact bool
}

// NewFormatter returns the formatter for format.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	o := FormatterOptions{Writer: os.Stdout}
	if opts != nil {
		o = *opts
		if o.Writer == nil {
			o.Writer = os.Stdout
		}
	}
	return &formatter{format: f, opts: o}, nil
}

type formatter struct {
	format Format
	opts   FormatterOptions
}

func (f *formatter) Format(data any) error {
	switch f.format {
	case FormatJSON:
		return f.json(data)
	case FormatYAML:
		return f.yaml(data)
	default:
		return f.text(data)
	}
}

func (f *formatter) json(data any) error {
	enc := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (f *formatter) yaml(data any) error {
	enc := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		enc.SetIndent(2)
	}
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// text renders plans as a report, strings and Stringers as a line, and
// any other value as YAML.
func (f *formatter) text(data any) error {
	switch v := data.(type) {
	case *plan.Plan:
		_, err := io.WriteString(f.opts.Writer, RenderPlan(v, f.styles()))
		return err
	case plan.Plan:
		_, err := io.WriteString(f.opts.Writer, RenderPlan(&v, f.styles()))
		return err
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	default:
		return f.yaml(data)
	}
}

func (f *formatter) styles() Styles {
	if f.opts.NoColor {
		return PlainStyles()
	}
	return DefaultStyles()
}
