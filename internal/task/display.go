package task

import (
	"strings"

	"mathdrill/internal/calculator"
)

const (
	MultiplicationGlyph = "×"
	DivisionGlyph       = "÷"
)

// Display задаёт, как задание выводится на экран. На вычисление не влияет.
type Display struct {
	DotToComma         bool `json:"dot_to_comma" yaml:"dot_to_comma"`
	MultiplicationSign bool `json:"multiplication_sign" yaml:"multiplication_sign"`
	DivisionSign       bool `json:"division_sign" yaml:"division_sign"`
}

func DefaultDisplay() Display {
	return Display{DotToComma: true}
}

// Typographic - десятичная запятая и знаки × и ÷
func Typographic() Display {
	return Display{DotToComma: true, MultiplicationSign: true, DivisionSign: true}
}

func (d Display) Render(text string) string {
	var pairs []string
	if d.DotToComma {
		pairs = append(pairs, ".", ",")
	}
	if d.MultiplicationSign {
		pairs = append(pairs, "*", MultiplicationGlyph)
	}
	if d.DivisionSign {
		pairs = append(pairs, "/", DivisionGlyph)
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func (d Display) FormatResult(r calculator.Result) string {
	s := r.String()
	if d.DotToComma {
		s = strings.ReplaceAll(s, ".", ",")
	}
	return s
}
