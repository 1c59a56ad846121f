// Package fancy renders CLI output: colored labels and lipgloss trees.
package fancy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	colorBlue     = lipgloss.Color("39")
	colorMagenta  = lipgloss.Color("201")
	colorGreen    = lipgloss.Color("82")
	colorYellow   = lipgloss.Color("228")
	colorCyan     = lipgloss.Color("45")
	colorRed      = lipgloss.Color("196")
	colorGray     = lipgloss.Color("250")
	colorWhite    = lipgloss.Color("15")
	colorDarkGray = lipgloss.Color("240")
)

var (
	RootStyle     = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	HeaderStyle   = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	BranchStyle   = lipgloss.NewStyle().Foreground(colorDarkGray)
	ListenerStyle = lipgloss.NewStyle().Foreground(colorMagenta)
	RouteStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	AppStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	CountStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	ErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// Tree returns a new tree with the shared branch styling.
func Tree() *tree.Tree {
	return tree.New().
		EnumeratorStyle(BranchStyle).
		Enumerator(tree.RoundedEnumerator)
}

// Branch creates a section node titled with a header and an optional note.
func Branch(title, note string) *tree.Tree {
	root := HeaderStyle.Render(title)
	if note != "" {
		root = lipgloss.JoinHorizontal(lipgloss.Top, root, " ", InfoStyle.Render(note))
	}
	return Tree().Root(root)
}

func ListenerText(s string) string { return ListenerStyle.Render(s) }
func RouteText(s string) string    { return RouteStyle.Render(s) }
func AppText(s string) string      { return AppStyle.Render(s) }
func PathText(s string) string     { return InfoStyle.Render(s) }
func CountText(s string) string    { return CountStyle.Render(s) }
func ErrorText(s string) string    { return ErrorStyle.Render(s) }
func ValidText(s string) string    { return AppStyle.Render(s) }

// Truncate shortens s to at most n bytes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
