package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// PackageTable renders registered packages. Child packages show their
// parent id.
func PackageTable(pkgs []zclload.PackageInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle).
		Headers("ID", "KIND", "PARENT", "VERSION", "PATH").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})

	for _, p := range pkgs {
		parent := ""
		if p.ParentID != nil {
			parent = strconv.FormatInt(*p.ParentID, 10)
		}
		t.Row(strconv.FormatInt(p.ID, 10), string(p.Kind), parent, p.Version, p.Path)
	}
	return t.String()
}
