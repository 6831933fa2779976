// Package smoke drives a GDB remote serial protocol server from the outside.
//
// The client is blind: it sends a fixed memory-read packet, prints whatever
// comes back and never parses, validates or retries.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/rsp"
)

var (
	// ErrConnect is returned when the target cannot be reached.
	ErrConnect = errors.New("connection failed")
	// ErrTimeout is returned when a send or receive exceeds the timeout.
	ErrTimeout = errors.New("timeout")
)

// Config describes one smoke test run.
type Config struct {
	Host       string
	Port       int
	BufferSize int
	// Timeout bounds the dial and each send and receive. Zero blocks forever.
	Timeout time.Duration
	// Packet is the framed packet sent on every send step.
	Packet []byte
}

// ConfigFrom builds a Config from the smoke section of the configuration.
// The packet is a memory read of cfg.MemLen bytes at cfg.MemAddr.
func ConfigFrom(cfg config.SmokeConfig) (Config, error) {
	timeout, err := config.ParseTimeout(cfg.Timeout)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		BufferSize: cfg.BufferSize,
		Timeout:    timeout,
		Packet:     rsp.Frame(rsp.MemoryRead(cfg.MemAddr, cfg.MemLen)),
	}, nil
}

type step int

const (
	send step = iota
	recv
)

// sequence is the fixed exchange: two sends, each followed by a receive,
// then two more blind receives.
var sequence = []step{send, recv, send, recv, recv, recv}

// Run connects to the target and plays the smoke sequence, printing every
// received chunk to out. A receive that hits end of stream prints an empty
// chunk. The connection is always closed before Run returns.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := net.Dialer{Timeout: cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", ErrConnect, addr, err)
	}
	defer conn.Close()
	slog.Debug("connected", "addr", addr)

	// Unblock pending I/O on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	buf := make([]byte, cfg.BufferSize)
	for i, s := range sequence {
		if cfg.Timeout > 0 {
			if err := conn.SetDeadline(time.Now().Add(cfg.Timeout)); err != nil {
				return err
			}
		}

		switch s {
		case send:
			if _, err := conn.Write(cfg.Packet); err != nil {
				return wrapIOError(ctx, "send", i, err)
			}
			slog.Debug("sent", "step", i, "packet", string(cfg.Packet))
		case recv:
			n, err := conn.Read(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				return wrapIOError(ctx, "receive", i, err)
			}
			slog.Debug("received", "step", i, "bytes", n)
			if _, err := fmt.Fprintf(out, "received data: %q\n", buf[:n]); err != nil {
				return err
			}
		}
	}
	return nil
}

func wrapIOError(ctx context.Context, op string, idx int, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%s (step %d): %w", op, idx, ErrTimeout)
	}
	return fmt.Errorf("%s (step %d): %w", op, idx, err)
}
