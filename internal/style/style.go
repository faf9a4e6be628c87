// Package style provides shared lipgloss styles for Nexus CLI output.
package style

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Core styles for CLI output.
var (
	Header  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	Step    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	Success = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	Warning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	Error   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // red
	Accent  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	Command = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))            // cyan
	Dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// colorEnabled reports whether styled output should be rendered.
// Respects NO_COLOR and falls back to plain text when stdout is not a terminal
// (piped output, CI logs).
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Render applies the style when color is enabled, otherwise returns the text as-is.
func Render(s lipgloss.Style, text string) string {
	if !colorEnabled() {
		return text
	}
	return s.Render(text)
}

// PrintSuccess prints a green checkmarked message.
func PrintSuccess(format string, args ...interface{}) {
	fmt.Println(Render(Success, "✓ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a yellow warning message to stderr.
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, Render(Warning, "Warning: "+fmt.Sprintf(format, args...)))
}

// PrintError prints a red error message to stderr.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, Render(Error, "Error: "+fmt.Sprintf(format, args...)))
}

// PrintStep prints a numbered setup step, e.g. "[2/5] Setting up...".
func PrintStep(n, total int, format string, args ...interface{}) {
	fmt.Printf("%s %s\n", Render(Step, fmt.Sprintf("[%d/%d]", n, total)), fmt.Sprintf(format, args...))
}

// Banner is the startup banner shown by nx setup.
const Banner = `
    ███╗   ███╗██╗   ██╗██╗  ████████╗██╗      █████╗  ██████╗ ███████╗███╗   ██╗████████╗
    ████╗ ████║██║   ██║██║  ╚══██╔══╝██║     ██╔══██╗██╔════╝ ██╔════╝████╗  ██║╚══██╔══╝
    ██╔████╔██║██║   ██║██║     ██║   ██║     ███████║██║  ███╗█████╗  ██╔██╗ ██║   ██║
    ██║╚██╔╝██║██║   ██║██║     ██║   ██║     ██╔══██║██║   ██║██╔══╝  ██║╚██╗██║   ██║
    ██║ ╚═╝ ██║╚██████╔╝███████╗██║   ███████╗██║  ██║╚██████╔╝███████╗██║ ╚████║   ██║
    ╚═╝     ╚═╝ ╚═════╝ ╚══════╝╚═╝   ╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝
    ====================== NEXUS =====================================================
`

// PrintBanner writes the Nexus banner and tagline.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, Render(Header, Banner))
	fmt.Fprintln(w, "This will set up your multi-agent collaboration environment.")
}
