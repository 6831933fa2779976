package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/progs"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "Show the programs embed would generate, without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish("list", runList(cfg, args, cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// runList loads the same program set as embed and prints it as a table.
func runList(cfg *config.Config, files []string, w io.Writer) error {
	paths := append(append([]string{}, cfg.Embed.Programs...), files...)
	set, err := progs.LoadAll(paths, nil)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Identifier", "Size", "Source")

	total := 0
	for i, p := range set.Programs() {
		total += p.Size
		if err := table.Append(strconv.Itoa(i), p.Name, strconv.Itoa(p.Size), p.Path); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%d programs, %d bytes\n", set.Len(), total)
	return err
}
