package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/generator"
	"github.com/swd-probe/probe-tools/internal/progs"
)

var (
	embedOutDir  string
	embedNoBuild bool
)

// embedCmd represents the embed command.
var embedCmd = &cobra.Command{
	Use:   "embed [files...]",
	Short: "Generate target_progs.h and target_progs.c from program images",
	Long: `Reads every program image (raw binaries, or Intel HEX for .hex/.ihex files)
and writes a C header with one enumeration member per program plus a C source
holding the images as byte arrays and the size/code accessors.

Programs listed in the configuration come first, followed by the files given
on the command line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("out-dir") {
			cfg.Embed.OutDir = embedOutDir
		}
		buildID := uuid.NewString()
		if embedNoBuild {
			buildID = ""
		}
		return finish("embed", runEmbed(cfg, args, buildID, cmd.OutOrStdout()))
	},
}

func init() {
	embedCmd.Flags().StringVarP(&embedOutDir, "out-dir", "o", "target_src", "Directory receiving the generated files")
	embedCmd.Flags().BoolVar(&embedNoBuild, "no-build-id", false, "Do not stamp a build id into the generated files")
	rootCmd.AddCommand(embedCmd)
}

// runEmbed loads all programs and generates the C sources.
//
// Parameters:
//   - cfg: The loaded configuration, defaults applied.
//   - files: Program images given on the command line.
//   - buildID: Stamped into both files when not empty.
//   - out: Receives one "now working on" line per program, in load order.
//
// Returns:
//   - error: An error if loading, validation or writing fails.
func runEmbed(cfg *config.Config, files []string, buildID string, out io.Writer) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	paths := append(append([]string{}, cfg.Embed.Programs...), files...)
	set, err := progs.LoadAll(paths, func(path string) {
		fmt.Fprintf(out, "now working on %s\n", path)
	})
	if err != nil {
		return err
	}

	opts := generator.OptionsFromConfig(cfg.Embed)
	opts.BuildID = buildID
	if _, err := generator.Generate(set, opts); err != nil {
		return err
	}

	printSuccess("embed", fmt.Sprintf("%d programs -> %s", set.Len(), cfg.Embed.OutDir))
	return nil
}
