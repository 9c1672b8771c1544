package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mctbnc/pkg/model"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableClassStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	tableEdgeStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	tableDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// parentTable lists every node of n with its states and parents.
func parentTable(n *model.Network) string {
	rows := make([][]string, 0, n.Size())
	for j, nd := range n.Nodes() {
		kind := "feature"
		if nd.Class {
			kind = "class"
		}
		var parents []string
		for _, p := range n.Parents(j) {
			parents = append(parents, n.Node(p).Name)
		}
		parentStr := "—"
		if len(parents) > 0 {
			parentStr = strings.Join(parents, ", ")
		}
		rows = append(rows, []string{nd.Name, kind, strconv.Itoa(len(nd.States)), parentStr})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Variable", "Kind", "States", "Parents").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if row < len(rows) && rows[row][1] == "class" && col == 0 {
				return tableClassStyle
			}
			if col == 3 && row < len(rows) && rows[row][3] == "—" {
				return tableDimStyle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// matrixTable renders the adjacency matrix of n. Row i, column j is marked
// when i is a parent of j.
func matrixTable(n *model.Network) string {
	names := n.Names()
	s := n.Structure()
	rows := make([][]string, n.Size())
	for i := range rows {
		row := make([]string, n.Size()+1)
		row[0] = names[i]
		for j := 0; j < n.Size(); j++ {
			if s.HasEdge(i, j) {
				row[j+1] = "●"
			} else {
				row[j+1] = "·"
			}
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, names...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1 || col == 0:
				return tableHeaderStyle
			case row < len(rows) && rows[row][col] == "●":
				return tableEdgeStyle.Align(lipgloss.Center)
			default:
				return tableDimStyle.Align(lipgloss.Center)
			}
		})
	return t.Render()
}
