package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/smoke"
)

var smokeFlags config.SmokeConfig

// smokeCmd represents the smoke command.
var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Send a memory-read packet to a GDB server and print the raw replies",
	Long: `Connects to the probe's GDB server, sends a memory-read packet twice and
prints every received chunk as-is. Nothing is parsed or validated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if f.Changed("host") {
			cfg.Smoke.Host = smokeFlags.Host
		}
		if f.Changed("port") {
			cfg.Smoke.Port = smokeFlags.Port
		}
		if f.Changed("buffer") {
			cfg.Smoke.BufferSize = smokeFlags.BufferSize
		}
		if f.Changed("timeout") {
			cfg.Smoke.Timeout = smokeFlags.Timeout
		}
		if f.Changed("mem-addr") {
			cfg.Smoke.MemAddr = smokeFlags.MemAddr
		}
		if f.Changed("mem-len") {
			cfg.Smoke.MemLen = smokeFlags.MemLen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return finish("smoke", runSmoke(ctx, cfg, cmd.OutOrStdout()))
	},
}

func init() {
	f := smokeCmd.Flags()
	f.StringVar(&smokeFlags.Host, "host", "127.0.0.1", "GDB server host")
	f.IntVar(&smokeFlags.Port, "port", 3333, "GDB server port")
	f.IntVar(&smokeFlags.BufferSize, "buffer", 1024, "Maximum bytes per receive")
	f.StringVar(&smokeFlags.Timeout, "timeout", "5s", "Dial/send/receive timeout, 0 to wait forever")
	f.Uint64Var(&smokeFlags.MemAddr, "mem-addr", 0x10000000, "Start address of the memory read")
	f.Uint64Var(&smokeFlags.MemLen, "mem-len", 0x200, "Length of the memory read")
	rootCmd.AddCommand(smokeCmd)
}

// runSmoke validates the configuration and plays the smoke sequence.
func runSmoke(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	sc, err := smoke.ConfigFrom(cfg.Smoke)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "sending %s to %s:%d\n", sc.Packet, sc.Host, sc.Port)
	return smoke.Run(ctx, sc, out)
}
