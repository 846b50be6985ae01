package present

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const defaultCurrency = money.USD

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// FormatPrice renders amount in currency, e.g. "$1,234.56". Unknown or empty
// currencies fall back to USD.
func FormatPrice(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		code = defaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := int64(math.Round(amount * math.Pow10(cur.Fraction)))
	return money.New(minor, code).Display()
}

// FormatChange renders a change and its percentage with explicit signs,
// e.g. "+1.25 (+0.84%)". Zero counts as positive.
func FormatChange(change, percent float64) string {
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f (%s%.2f%%)", sign, round2(change), sign, round2(percent))
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // avoid "-0.00"
	}
	return r
}

// RenderSummary converts summary markdown to HTML. Raw HTML in the input is
// not passed through.
func RenderSummary(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(buf.String())
}
