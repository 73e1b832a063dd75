package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/deliverynote/pkg/editor"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

// Form styles
var (
	formSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	formNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	formDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	formHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	formInputStyle    = lipgloss.NewStyle().Foreground(colorYellow)

	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorNavy).Padding(0, 1)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)

	buttonStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorNavy).Padding(0, 1)
	buttonBusyStyle = lipgloss.NewStyle().Foreground(colorGray).Background(colorDim).Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(1, 2)
)

// Labels shown by the editor.
const (
	tabEditLabel    = "Édition"
	tabPreviewLabel = "Aperçu"
	exportLabel     = "Télécharger PDF"
	exportBusyLabel = "Génération..."
	itemsSection    = "Marchandises"
	valueMaxWidth   = 48
	defaultFormRows = 15
)

type editorTab int

const (
	tabEdit editorTab = iota
	tabPreview
)

// =============================================================================
// Form entries
// =============================================================================

// formEntry is one editable row: a document field, or one field of a line
// item.
type formEntry struct {
	field  editor.Field
	itemID string
	item   editor.ItemField
	index  int // 1-based item position, for labels
}

func (e formEntry) isItem() bool { return e.itemID != "" }

func (e formEntry) section() string {
	if e.isItem() {
		return itemsSection
	}
	return e.field.Section()
}

func (e formEntry) label() string {
	if e.isItem() {
		return fmt.Sprintf("#%d %s", e.index, e.item.Label())
	}
	return e.field.Label()
}

func (e formEntry) multiline() bool {
	return !e.isItem() && e.field.Multiline()
}

func (e formEntry) value(n note.DeliveryNote) string {
	if e.isItem() {
		it, ok := n.Item(e.itemID)
		if !ok {
			return ""
		}
		return editor.GetItem(it, e.item)
	}
	return editor.Get(n, e.field)
}

// formEntries lists the rows in form order. Line items sit between the
// recipient and the VAT rate.
func formEntries(n note.DeliveryNote) []formEntry {
	var out []formEntry
	for _, f := range editor.Fields() {
		if f == editor.FieldVATRate {
			for i, it := range n.Items {
				for _, itf := range editor.ItemFields() {
					out = append(out, formEntry{itemID: it.ID, item: itf, index: i + 1})
				}
			}
		}
		out = append(out, formEntry{field: f})
	}
	return out
}

// =============================================================================
// Messages
// =============================================================================

type exportDoneMsg struct {
	result export.Result
	err    error
}

type previewMsg struct {
	rev  uint64
	text string
}

type spinnerTickMsg time.Time

// =============================================================================
// EditorModel - Interactive delivery note form
// =============================================================================

// EditorModel is the bubbletea model for the delivery note form. Edits go
// through the shell; ctrl+s exports the current note with saver.
type EditorModel struct {
	ctx     context.Context
	shell   *shell.Shell
	saver   export.Saver
	notices <-chan string

	entries []formEntry
	Cursor  int
	Offset  int
	Height  int
	Width   int
	tab     editorTab

	editing bool
	input   []rune

	exporting bool
	frame     int

	// notice blocks the form until any key is pressed.
	notice string
	status string
	failed bool

	preview       string
	previewOffset int
}

// NewEditorModel creates an editor for the note owned by sh. notices
// receives the exporter's failure notice, if any.
func NewEditorModel(ctx context.Context, sh *shell.Shell, saver export.Saver, notices <-chan string) EditorModel {
	return EditorModel{
		ctx:     ctx,
		shell:   sh,
		saver:   saver,
		notices: notices,
		entries: formEntries(sh.Note()),
		Height:  defaultFormRows,
		Width:   sink.DefaultTextWidth,
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(5, msg.Height-10)
		m.scrollToCursor()
		if m.tab == tabPreview {
			return m, m.previewCmd()
		}

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.notice = m.takeNotice()
			if m.notice == "" {
				m.setStatus(true, msg.err.Error())
			}
			return m, nil
		}
		m.setStatus(false, fmt.Sprintf("%s enregistré (%.0f mm)", msg.result.Filename, msg.result.PageHeightMM))

	case previewMsg:
		if msg.rev == m.shell.Revision() {
			m.preview = msg.text
		}

	case spinnerTickMsg:
		if m.exporting {
			m.frame++
			return m, spinnerTick()
		}

	case tea.KeyMsg:
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m EditorModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		return m.startExport()
	case "tab", "shift+tab":
		if m.tab == tabEdit {
			m.tab = tabPreview
			m.previewOffset = 0
			return m, m.previewCmd()
		}
		m.tab = tabEdit
	case "up", "k":
		if m.tab == tabPreview {
			m.previewOffset = max(0, m.previewOffset-1)
		} else if m.Cursor > 0 {
			m.Cursor--
			m.scrollToCursor()
		}
	case "down", "j":
		if m.tab == tabPreview {
			m.previewOffset = min(m.previewOffset+1, max(0, strings.Count(m.preview, "\n")-m.Height))
		} else if m.Cursor < len(m.entries)-1 {
			m.Cursor++
			m.scrollToCursor()
		}
	case "enter", "e":
		if m.tab == tabEdit && len(m.entries) > 0 {
			m.editing = true
			m.input = []rune(m.entries[m.Cursor].value(m.shell.Note()))
		}
	case "a":
		if m.tab == tabEdit {
			id := m.shell.AddItem()
			m.refresh()
			m.focusItem(id)
		}
	case "x", "delete":
		if m.tab == tabEdit && len(m.entries) > 0 {
			if e := m.entries[m.Cursor]; e.isItem() {
				m.shell.RemoveItem(e.itemID)
				m.refresh()
			}
		}
	}
	return m, nil
}

func (m EditorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.input = nil
	case "enter":
		m.commit()
	case "alt+enter":
		if m.entries[m.Cursor].multiline() {
			m.input = append(m.input, '\n')
		}
	case "ctrl+s":
		m.commit()
		return m.startExport()
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case "ctrl+u":
		m.input = m.input[:0]
	default:
		switch msg.Type {
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	}
	return m, nil
}

// commit applies the input to the selected row and leaves editing mode.
func (m *EditorModel) commit() {
	e := m.entries[m.Cursor]
	value := string(m.input)
	m.editing = false
	m.input = nil

	var err error
	if e.isItem() {
		_, err = m.shell.UpdateItem(e.itemID, e.item, value)
	} else {
		err = m.shell.Set(string(e.field), value)
	}
	if err != nil {
		m.setStatus(true, err.Error())
		return
	}
	m.status = ""
}

// startExport runs one export in the background. Triggers while an export
// is in flight are ignored.
func (m EditorModel) startExport() (tea.Model, tea.Cmd) {
	if m.exporting || m.shell.Busy() {
		return m, nil
	}
	m.exporting = true
	m.frame = 0
	m.status = ""
	return m, tea.Batch(m.exportCmd(), spinnerTick())
}

func (m EditorModel) exportCmd() tea.Cmd {
	ctx, sh, saver := m.ctx, m.shell, m.saver
	return func() tea.Msg {
		res, err := sh.Export(ctx, saver)
		return exportDoneMsg{result: res, err: err}
	}
}

func (m EditorModel) previewCmd() tea.Cmd {
	ctx, sh, width := m.ctx, m.shell, m.Width
	rev := sh.Revision()
	return func() tea.Msg {
		return previewMsg{rev: rev, text: sink.RenderText(sh.Page(ctx), width)}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg { return spinnerTickMsg(t) })
}

// takeNotice returns the pending failure notice without blocking.
func (m EditorModel) takeNotice() string {
	if m.notices == nil {
		return ""
	}
	select {
	case n := <-m.notices:
		return n
	default:
		return ""
	}
}

func (m *EditorModel) setStatus(failed bool, msg string) {
	m.failed = failed
	m.status = msg
}

// refresh rebuilds the rows after items were added or removed.
func (m *EditorModel) refresh() {
	m.entries = formEntries(m.shell.Note())
	m.Cursor = min(m.Cursor, max(0, len(m.entries)-1))
	m.scrollToCursor()
}

func (m *EditorModel) focusItem(id string) {
	for i, e := range m.entries {
		if e.itemID == id {
			m.Cursor = i
			m.scrollToCursor()
			return
		}
	}
}

func (m *EditorModel) scrollToCursor() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Exporting reports whether an export is in flight.
func (m EditorModel) Exporting() bool { return m.exporting }

// Notice returns the blocking notice, or "".
func (m EditorModel) Notice() string { return m.notice }

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	if m.notice != "" {
		return noticeStyle.Render(StyleError.Render(m.notice)+"\n\n"+formDimStyle.Render("Appuyez sur une touche pour continuer")) + "\n"
	}

	n := m.shell.Note()
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Bon de Livraison") + " " + formDimStyle.Render(n.Number))
	b.WriteString("\n\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	if m.tab == tabPreview {
		b.WriteString(m.previewView())
	} else {
		b.WriteString(m.formView(n))
	}
	b.WriteString("\n\n")

	b.WriteString(totalsLine(n))
	b.WriteString("\n\n")
	b.WriteString(m.buttonView())
	if m.status != "" {
		style := StyleSuccess
		if m.failed {
			style = StyleError
		}
		b.WriteString("  " + style.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(formDimStyle.Render(m.helpLine()))
	return b.String()
}

func (m EditorModel) tabsView() string {
	edit, prev := tabInactiveStyle, tabInactiveStyle
	if m.tab == tabEdit {
		edit = tabActiveStyle
	} else {
		prev = tabActiveStyle
	}
	return edit.Render(tabEditLabel) + " " + prev.Render(tabPreviewLabel)
}

func (m EditorModel) formView(n note.DeliveryNote) string {
	end := min(m.Offset+m.Height, len(m.entries))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		value := displayValue(e.value(n))
		if i == m.Cursor && m.editing {
			value = formInputStyle.Render(strings.ReplaceAll(string(m.input), "\n", "⏎") + "▏")
		}
		rows = append(rows, []string{cursor, e.section(), e.label(), value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Section", "Champ", "Valeur").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return formHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return formSelectedStyle
			}
			if col == 1 {
				return formDimStyle
			}
			return formNormalStyle
		})

	return t.Render() + "\n" + formDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.entries)))
}

func (m EditorModel) previewView() string {
	if m.preview == "" {
		return formDimStyle.Render("Chargement de l'aperçu...")
	}
	lines := strings.Split(m.preview, "\n")
	start := min(m.previewOffset, len(lines))
	end := min(start+m.Height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func (m EditorModel) buttonView() string {
	if m.exporting {
		return buttonBusyStyle.Render(spinnerFrame(m.frame) + " " + exportBusyLabel)
	}
	return buttonStyle.Render(exportLabel)
}

func (m EditorModel) helpLine() string {
	switch {
	case m.editing:
		help := "⏎ valider  esc annuler  ctrl+u effacer"
		if m.entries[m.Cursor].multiline() {
			help += "  alt+⏎ nouvelle ligne"
		}
		return help
	case m.tab == tabPreview:
		return "↑/↓ défiler  tab édition  ctrl+s PDF  q quitter"
	default:
		return "↑/↓ naviguer  ⏎ modifier  a ajouter  x supprimer  ctrl+s PDF  tab aperçu  q quitter"
	}
}

// totalsLine shows the live totals of n.
func totalsLine(n note.DeliveryNote) string {
	f := note.ComputeTotals(n).Formatted()
	sep := formDimStyle.Render(" · ")
	return formDimStyle.Render("Sous-total HT ") + StyleNumber.Render(f.SubTotal+" €") + sep +
		formDimStyle.Render(fmt.Sprintf("TVA (%s%%) ", note.FormatNumber(n.VATRate))) + StyleNumber.Render(f.VATAmount+" €") + sep +
		formDimStyle.Render("Total TTC ") + StyleTitle.Render(f.TotalWithVAT+" €")
}

// displayValue flattens multi-line values and shortens long ones.
func displayValue(s string) string {
	s = strings.ReplaceAll(s, "\n", " ⏎ ")
	if r := []rune(s); len(r) > valueMaxWidth {
		s = string(r[:valueMaxWidth-1]) + "…"
	}
	if s == "" {
		return formDimStyle.Render("—")
	}
	return s
}
