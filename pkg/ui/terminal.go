package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔════════════════════════════════════════════════════════════╗
    ║ ██╗    ██╗ ██████╗ ██╗    ██╗    ██████╗ ██████╗  ██████╗  ║
    ║ ██║    ██║██╔═══██╗██║    ██║    ██╔══██╗██╔══██╗██╔═══██╗ ║
    ║ ██║ █╗ ██║██║   ██║██║ █╗ ██║    ██████╔╝██████╔╝██║   ██║ ║
    ║ ██║███╗██║██║   ██║██║███╗██║    ██╔═══╝ ██╔══██╗██║   ██║ ║
    ║ ╚███╔███╔╝╚██████╔╝╚███╔███╔╝    ██║     ██║  ██║╚██████╔╝ ║
    ║  ╚══╝╚══╝  ╚═════╝  ╚══╝╚══╝     ╚═╝     ╚═╝  ╚═╝ ╚═════╝  ║
    ║         CHARACTER COLLECTION & PROGRESSION EXPORTER        ║
    ╚════════════════════════════════════════════════════════════╝
`

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	quiet   bool
	noColor bool
)

// SetOutput redirects all terminal output. Tests use it to capture text.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetQuiet suppresses everything except errors.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// SetNoColor disables styling.
func SetNoColor(disabled bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disabled
}

// Color functions for terminal output
var (
	Cyan    = colorize(labelStyle)
	Yellow  = colorize(valueStyle)
	Red     = colorize(errorStyle)
	Green   = colorize(successStyle)
	Magenta = colorize(highlightStyle)
	Dim     = colorize(dimStyle)
)

// colorize returns a function that renders text with style unless colors
// are disabled.
func colorize(style lipgloss.Style) func(string) string {
	return func(text string) string {
		mu.Lock()
		plain := noColor
		mu.Unlock()
		if plain {
			return text
		}
		return style.Render(text)
	}
}

func write(always bool, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if quiet && !always {
		return
	}
	fmt.Fprintf(out, format, args...)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	write(false, "%s\n", colorize(logoStyle)(ASCIILogo))
}

// PrintError prints an error message in red. Errors are shown even in
// quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		write(true, "%s\n", Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		write(true, "%s\n", Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	write(false, "%s\n", Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	write(false, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		write(false, "%s\n", Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		write(false, "%s\n", Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	write(false, "%s\n", Magenta(msg))
}
