package main

import "github.com/swd-probe/probe-tools/cmd"

// main is the entry point of the probe-tools CLI.
// It executes the root command which handles argument parsing and subcommand dispatch.
func main() {
	cmd.Execute()
}
