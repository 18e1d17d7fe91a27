package ui

import (
	"fmt"
	"sync"
)

// Color functions for terminal output
var (
	Cyan   = colorize("\033[36m%s\033[0m")
	Yellow = colorize("\033[33m%s\033[0m")
	Red    = colorize("\033[31m%s\033[0m")
	Green  = colorize("\033[32m%s\033[0m")
	Dim    = colorize("\033[2m%s\033[0m")
)

var (
	mu        sync.Mutex
	quietMode bool
	noColor   bool
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if IsNoColor() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// SetQuietMode suppresses all output except errors
func SetQuietMode(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is enabled
func IsQuietMode() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietMode
}

// SetNoColor disables ANSI colors in the output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
}

// IsNoColor reports whether colors are disabled
func IsNoColor() bool {
	mu.Lock()
	defer mu.Unlock()
	return noColor
}

// detail renders the optional argument, empty when absent or blank so the
// callers can pass "" without producing a dangling separator
func detail(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprintf("%v", args[0])
}

// PrintError prints an error message in red. Errors print even in quiet mode.
func PrintError(msg string, args ...interface{}) {
	if d := detail(args); d != "" {
		fmt.Println(Red(msg + ": " + d))
		return
	}
	fmt.Println(Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Println(Green(msg))
}

// PrintInfo prints a labeled info line
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if d := detail(args); d != "" {
		fmt.Println(Yellow(msg + ": " + d))
		return
	}
	fmt.Println(Yellow(msg))
}
