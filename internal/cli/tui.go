package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mindweave/mindweave/pkg/concept"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// mapListModel is the bubbletea model for interactive map selection.
type mapListModel struct {
	Records  []concept.MapRecord
	Cursor   int
	Selected *concept.MapRecord
	Height   int
	Offset   int
}

func newMapListModel(records []concept.MapRecord) mapListModel {
	return mapListModel{
		Records: records,
		Height:  15,
	}
}

func (m mapListModel) Init() tea.Cmd {
	return nil
}

func (m mapListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			rec := m.Records[m.Cursor]
			m.Selected = &rec
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m mapListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Map"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		rec := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		extras := "—"
		var parts []string
		if n := len(rec.SubMaps); n > 0 {
			parts = append(parts, fmt.Sprintf("%d sub-maps", n))
		}
		if n := len(rec.Explanations); n > 0 {
			parts = append(parts, fmt.Sprintf("%d explained", n))
		}
		if len(parts) > 0 {
			extras = strings.Join(parts, ", ")
		}

		created := "—"
		if ms, err := strconv.ParseInt(rec.ID, 10, 64); err == nil {
			created = formatRelativeTime(time.UnixMilli(ms))
		}

		rows = append(rows, []string{
			cursor,
			rec.Prompt,
			fmt.Sprintf("%d", len(rec.Graph.Nodes)),
			created,
			extras,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Topic", "Nodes", "Created", "Extras").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// formatRelativeTime renders t as a short age like "3h ago".
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
