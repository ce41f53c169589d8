package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mhalvorsen/enrichmap/pkg/export"
	"github.com/mhalvorsen/enrichmap/pkg/safe"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FeatureListModel - Interactive feature ranking browser
// =============================================================================

// nodeHit is a significant node for the detail pane.
type nodeHit struct {
	NodeID string
	Q      float64
	Score  float64
}

// FeatureListModel is the bubbletea model for browsing ranked features.
// Moving the cursor highlights a feature; enter toggles a detail pane that
// lists its most significant nodes.
type FeatureListModel struct {
	Rankings   []export.FeatureRanking
	Result     *safe.Result
	Cursor     int
	Height     int
	Offset     int
	ShowDetail bool
}

// NewFeatureListModel creates a new feature list model.
func NewFeatureListModel(rankings []export.FeatureRanking, result *safe.Result) FeatureListModel {
	return FeatureListModel{
		Rankings: rankings,
		Result:   result,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

func (m FeatureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rankings)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.ShowDetail = !m.ShowDetail
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m FeatureListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Feature Ranking"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle detail  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rankings) {
		end = len(m.Rankings)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rankings[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			r.Feature,
			fmt.Sprintf("%d", r.SignificantNodes),
			formatQ(r.MinQ),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Feature", "Significant", "Min q").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rankings) {
				return lipgloss.NewStyle()
			}
			r := m.Rankings[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if r.SignificantNodes > 0 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorDim).Bold(true)
			}
			if r.SignificantNodes > 0 {
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.ShowDetail && len(m.Rankings) > 0 {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.Rankings[m.Cursor].Feature))
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rankings))))

	return b.String()
}

// detailView renders the most significant nodes for a feature.
func (m FeatureListModel) detailView(feature string) string {
	hits := m.significantNodes(feature)

	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(feature))
	b.WriteString("\n")

	if len(hits) == 0 {
		b.WriteString(listDimStyle.Render("  no significant neighborhoods"))
		b.WriteString("\n")
		return b.String()
	}

	const maxDetail = 10
	shown := hits
	if len(shown) > maxDetail {
		shown = shown[:maxDetail]
	}
	for _, h := range shown {
		b.WriteString(fmt.Sprintf("  %-20s  q=%s  score=%.3f\n",
			h.NodeID, formatQ(h.Q), h.Score))
	}
	if len(hits) > len(shown) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … and %d more", len(hits)-len(shown))))
		b.WriteString("\n")
	}
	return b.String()
}

// significantNodes lists a feature's significant nodes sorted by ascending q.
func (m FeatureListModel) significantNodes(feature string) []nodeHit {
	if m.Result == nil {
		return nil
	}
	var hits []nodeHit
	for fi, name := range m.Result.Features {
		if name != feature {
			continue
		}
		row := m.Result.Cells[fi]
		if row == nil {
			break
		}
		for ni, cell := range row {
			if cell.Significant {
				hits = append(hits, nodeHit{
					NodeID: m.Result.NodeIDs[ni],
					Q:      cell.Q,
					Score:  cell.Score,
				})
			}
		}
		break
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Q != hits[j].Q {
			return hits[i].Q < hits[j].Q
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	return hits
}

// =============================================================================
// Helpers
// =============================================================================

// formatQ formats a q-value compactly for table display.
func formatQ(q float64) string {
	if q < 0.001 {
		return fmt.Sprintf("%.1e", q)
	}
	return fmt.Sprintf("%.4f", q)
}
