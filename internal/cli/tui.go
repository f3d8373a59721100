package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/dagopt/pkg/snapshot"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// SnapshotListModel is the bubbletea model for interactive snapshot browsing.
type SnapshotListModel struct {
	Snapshots []*snapshot.Metadata
	Cursor    int
	Selected  *snapshot.Metadata
	Height    int
	Offset    int
}

// NewSnapshotListModel creates a new snapshot list model.
func NewSnapshotListModel(snaps []*snapshot.Metadata) SnapshotListModel {
	return SnapshotListModel{
		Snapshots: snaps,
		Cursor:    0,
		Height:    15,
		Offset:    0,
	}
}

func (m SnapshotListModel) Init() tea.Cmd {
	return nil
}

func (m SnapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Snapshots)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Snapshots[m.Cursor]
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

func (m SnapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Snapshots"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Snapshots) {
		end = len(m.Snapshots)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Snapshots[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		source := "—"
		if v, ok := s.Attrs["source"]; ok {
			source = v
		}

		edges := fmt.Sprintf("%d %s %d", len(s.OriginalEdges), iconArrow, len(s.OptimizedEdges))
		changed := fmt.Sprintf("%d", len(s.ChangedMetrics))
		rows = append(rows, []string{cursor, shortID(s.ID), formatRelativeTime(s.Timestamp), edges, changed, source})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Snapshot", "Created", "Edges", "Changed", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Snapshots) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 2 || col == 5 {
				base = base.Foreground(colorDim)
			}
			if isCurrent {
				if col == 2 || col == 5 {
					return base.Bold(true)
				}
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 1 || col == 3 || col == 4 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Snapshots))))

	return b.String()
}

// shortID truncates a snapshot UUID to its first block for table display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// formatRelativeTime renders t relative to now for recent timestamps and as
// a date otherwise.
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
