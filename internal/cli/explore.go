package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treedepth/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var input inputOpts

	cmd := &cobra.Command{
		Use:   "explore [dir]",
		Short: "Browse the deepest dependency chains interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), cmd, args, input)
		},
	}
	input.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, cmd *cobra.Command, args []string, input inputOpts) error {
	runner, err := c.newRunner(ctx, input.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, c.pipelineOptions(cmd, args, input))
	if err != nil {
		return err
	}
	if result.Report.NoData {
		c.printWarning("no data: no package declares a dependency")
		return nil
	}

	p := tea.NewProgram(NewExploreModel(result.Report), tea.WithContext(ctx), tea.WithOutput(c.Out))
	_, err = p.Run()
	return err
}

// =============================================================================
// ExploreModel - Interactive deepest-chain browser
// =============================================================================

// ExploreModel is the bubbletea model listing the deepest packages. The
// selected package's path is shown top-down below the list.
type ExploreModel struct {
	Report   *report.Report
	Cursor   int
	Offset   int
	Height   int
	Expanded bool
}

// NewExploreModel creates a browser over r's deepest packages.
func NewExploreModel(r *report.Report) ExploreModel {
	return ExploreModel{Report: r, Height: 10, Expanded: true}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Report.Deepest)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, the help line and the selected path.
		m.Height = msg.Height - (m.Report.MaxDepth + 10)
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Deepest level: %d", m.Report.MaxDepth)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle path  q quit"))
	b.WriteString("\n\n")

	deepest := m.Report.Deepest
	end := min(m.Offset+m.Height, len(deepest))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		d := deepest[i]
		top := "—"
		if n := len(d.Hierarchy); n > 0 {
			top = d.Hierarchy[n-1]
		}
		rows = append(rows, []string{cursor, d.ID, top})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Top-level").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(deepest))))
	b.WriteString("\n")

	if m.Expanded && m.Cursor < len(deepest) {
		b.WriteString("\n")
		b.WriteString(renderPath(deepest[m.Cursor]))
	}
	return b.String()
}

// renderPath draws a chain top-down, one level per line.
func renderPath(c report.Chain) string {
	var b strings.Builder
	for depth := len(c.Hierarchy); depth >= 0; depth-- {
		id := c.ID
		style := listSelectedStyle
		if depth > 0 {
			id = c.Hierarchy[depth-1]
			style = listNormalStyle
		}
		level := len(c.Hierarchy) - depth
		fmt.Fprintf(&b, "%s%s %s\n",
			strings.Repeat("  ", level),
			listDimStyle.Render(fmt.Sprintf("%d", level+1)),
			style.Render(id))
	}
	return b.String()
}
