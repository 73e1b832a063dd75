package sink

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

var (
	textTitle   = lipgloss.NewStyle().Bold(true)
	textHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	textMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	textItalic  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	textBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	textHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("18")).Padding(0, 1)
	textCell    = lipgloss.NewStyle().Padding(0, 1)
)

// DefaultTextWidth is the preview width used when none is given.
const DefaultTextWidth = 80

// RenderText renders the page for a terminal, width columns wide. Sections
// follow the printed order; the logo slot is shown by its state only.
func RenderText(p layout.Page, width int) string {
	if width <= 0 {
		width = DefaultTextWidth
	}
	width = max(width, 40)

	var b strings.Builder

	// Header: issuer on the left, title block on the right.
	left := []string{logoLine(p.Header.Logo), textTitle.Render(p.Header.Company.Name)}
	left = append(left, p.Header.Company.AddressLines...)
	left = append(left, p.Header.Company.VATLine)

	right := []string{textTitle.Render(p.Header.Title)}
	for _, f := range p.Header.Fields {
		right = append(right, textMuted.Render(f.Label)+" "+f.Value)
	}
	half := width / 2
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(strings.Join(left, "\n")),
		lipgloss.NewStyle().Width(width-half).Align(lipgloss.Right).Render(strings.Join(right, "\n")),
	))
	b.WriteString("\n\n")

	// Recipient.
	b.WriteString(textHeading.Render(strings.ToUpper(p.Recipient.Title)) + "\n")
	rows := make([][]string, 0, len(p.Recipient.Rows))
	for _, r := range p.Recipient.Rows {
		rows = append(rows, []string{r.Label, strings.Join(r.Lines, "\n")})
	}
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(textBorder).
		Width(width).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return textCell.Bold(true)
			}
			return textCell
		}).
		Render())
	b.WriteString("\n\n")

	// Goods.
	b.WriteString(textHeading.Render(strings.ToUpper(p.Items.Title)) + "\n")
	headers := make([]string, len(p.Items.Columns))
	for i, c := range p.Items.Columns {
		headers[i] = c.Label
	}
	itemRows := make([][]string, 0, len(p.Items.Rows))
	for _, r := range p.Items.Rows {
		itemRows = append(itemRows, []string{r.Description, r.Quantity, r.Total})
	}
	cols := p.Items.Columns
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(textBorder).
		Width(width).
		Headers(headers...).
		Rows(itemRows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return textHeader
			}
			if col < len(cols) && cols[col].Align == layout.AlignRight {
				return textCell.Align(lipgloss.Right)
			}
			return textCell
		}).
		Render())
	b.WriteString("\n")

	// Totals, right aligned under the goods.
	totalRows := make([][]string, 0, len(p.Totals.Rows))
	for _, r := range p.Totals.Rows {
		totalRows = append(totalRows, []string{r.Label, r.Value})
	}
	totals := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(textBorder).
		Rows(totalRows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := textCell
			if col == 0 || (row >= 0 && row < len(p.Totals.Rows) && p.Totals.Rows[row].Emphasis) {
				s = s.Bold(true)
			}
			if col == 1 {
				s = s.Align(lipgloss.Right)
			}
			return s
		}).
		Render()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, totals))
	b.WriteString("\n\n")

	// Observations.
	b.WriteString(textHeading.Render(strings.ToUpper(p.Observations.Title)) + "\n")
	b.WriteString(textItalic.Render(strings.Join(p.Observations.Lines, "\n")))
	b.WriteString("\n\n")

	// Signatures.
	b.WriteString(textHeading.Render(strings.ToUpper(p.Signatures.Title)) + "\n")
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width/2 - 2)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		box.Render(signatureText(p.Signatures.Client)),
		box.Render(signatureText(p.Signatures.DeliveryPerson)),
	))
	b.WriteString("\n\n")

	b.WriteString(textMuted.Render(p.Footer.Label) + " " + p.Footer.Value + "\n")
	return b.String()
}

func logoLine(l layout.Logo) string {
	switch l.State {
	case layout.LogoNone:
		return textMuted.Render("[" + l.Placeholder + "]")
	case layout.LogoReady:
		return textMuted.Render("[logo]")
	default:
		return ""
	}
}

func signatureText(s layout.SignatureBox) string {
	lines := []string{textTitle.Render(s.Heading)}
	for _, f := range s.Fields {
		lines = append(lines, textMuted.Render(f.Label)+" "+f.Value)
	}
	lines = append(lines, "", textMuted.Render(s.Signature))
	return strings.Join(lines, "\n")
}
