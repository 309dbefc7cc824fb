package cli

import (
	"fmt"
	"os"
)

// ANSI SGR sequences for terminal output. Color is skipped when stdout is
// not a terminal or NO_COLOR is set.
const (
	sgrReset  = "\x1b[0m"
	sgrGreen  = "\x1b[32m"
	sgrYellow = "\x1b[33m"
	sgrRed    = "\x1b[31m"
	sgrCyan   = "\x1b[36m"
	sgrDim    = "\x1b[2m"
)

// Status icons.
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

var colorEnabled = detectColor()

func detectColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// paint wraps s in the given SGR sequence when color is enabled.
func paint(sgr, s string) string {
	if !colorEnabled {
		return s
	}
	return sgr + s + sgrReset
}

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(paint(sgrGreen, iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(paint(sgrRed, iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(paint(sgrYellow, iconWarning) + " " + paint(sgrYellow, fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(paint(sgrDim, iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Println("  " + paint(sgrDim, fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + paint(sgrDim, iconArrow) + " " + path)
}

// severityColor maps a hint severity name to its display color.
func severityColor(severity string) string {
	switch severity {
	case "error":
		return sgrRed
	case "warning":
		return sgrYellow
	case "info":
		return sgrCyan
	default:
		return sgrDim
	}
}
