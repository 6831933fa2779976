package cmd

import (
	"fmt"
)

var (
	// ANSI Colors
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
)

// printSuccess prints a green check line for a completed step.
func printSuccess(label, detail string) {
	fmt.Printf("  %s✔%s %-15s %s%s\n", colorGreen, colorReset, label, colorGreen, detail+colorReset)
}

// printError prints a red cross line for a failed step.
func printError(label, detail string) {
	fmt.Printf("  %s✘%s %-15s %s%s\n", colorRed, colorReset, label, colorRed, detail+colorReset)
}
