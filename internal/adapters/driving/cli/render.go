package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// Styles for the terminal result listing. Palette follows the rest of
// the propscout tooling.
var (
	renderTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	renderPrice = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6E3A1"))

	renderMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	renderCategory = map[domain.Category]lipgloss.Style{
		domain.CategoryDistressed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		domain.CategoryFixerUpper: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		domain.CategoryLand:       lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		domain.CategoryStandard:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
	}
)

// renderDocument renders the result document as a numbered listing for
// the terminal. JSON/CSV outputs carry the full document; this view is
// for humans scanning candidates.
func renderDocument(doc *domain.ResultDocument, finalRadius float64) string {
	var b strings.Builder

	if doc.TotalCount == 0 {
		b.WriteString("No properties found.\n")
		return b.String()
	}

	header := fmt.Sprintf("%d properties across %s", doc.TotalCount, strings.Join(doc.Locations, ", "))
	b.WriteString(renderTitle.Render(header))
	b.WriteString("\n")
	if finalRadius > 0 {
		b.WriteString(renderMuted.Render(fmt.Sprintf("search radius %.2g miles", finalRadius)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i := range doc.Properties {
		p := &doc.Properties[i]

		b.WriteString(fmt.Sprintf("[%d] %s  %s\n",
			i+1,
			renderPrice.Render(priceLabel(p)),
			p.Title))

		if p.Address != "" {
			b.WriteString("    " + p.Address + "\n")
		}

		catStyle, ok := renderCategory[p.Category]
		if !ok {
			catStyle = renderCategory[domain.CategoryStandard]
		}
		b.WriteString(fmt.Sprintf("    %s  score %.1f  via %s\n",
			catStyle.Render(string(p.Category)),
			p.Score,
			strings.Join(p.Sources, "+")))

		if p.ROI != nil {
			b.WriteString(renderMuted.Render(fmt.Sprintf("    est. yield %.1f%%", *p.ROI)))
			b.WriteString("\n")
		}
		if p.Rationale != "" {
			b.WriteString(renderMuted.Render("    "+p.Rationale) + "\n")
		}
		b.WriteString("    " + p.URL + "\n\n")
	}

	if len(doc.Categories) > 0 {
		var parts []string
		for _, cat := range []domain.Category{
			domain.CategoryDistressed,
			domain.CategoryFixerUpper,
			domain.CategoryLand,
			domain.CategoryStandard,
		} {
			if n := doc.Categories[cat]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", cat, n))
			}
		}
		b.WriteString(renderMuted.Render(strings.Join(parts, " | ")))
		b.WriteString("\n")
	}

	return b.String()
}

// priceLabel prefers the parsed price so formatting is uniform, and
// falls back to the source's display text for POA-style listings.
func priceLabel(p *domain.PropertyRecord) string {
	if p.Price != nil {
		return formatPounds(*p.Price)
	}
	if p.PriceDisplay != "" {
		return p.PriceDisplay
	}
	return "POA"
}

// formatPounds renders 125000 as £125,000.
func formatPounds(v int) string {
	s := fmt.Sprintf("%d", v)
	var out strings.Builder
	out.WriteString("£")
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteRune(',')
		}
		out.WriteRune(r)
	}
	return out.String()
}
