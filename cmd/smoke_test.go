package cmd

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
)

func TestRunSmoke(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		pkt := make([]byte, len("$m20000000,10#7c"))
		for i := 0; i < 2; i++ {
			if _, err := io.ReadFull(conn, pkt); err != nil {
				return
			}
			conn.Write([]byte("+"))
		}
	}()

	cfg := defaultConfig()
	cfg.Smoke.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.Smoke.MemAddr = 0x20000000
	cfg.Smoke.MemLen = 0x10

	var out bytes.Buffer
	if err := runSmoke(context.Background(), cfg, &out); err != nil {
		t.Fatalf("runSmoke failed: %v", err)
	}

	s := out.String()
	if !strings.HasPrefix(s, "sending $m20000000,10#7c to 127.0.0.1:") {
		t.Errorf("unexpected banner:\n%s", s)
	}
	if got := strings.Count(s, "received data: "); got != 4 {
		t.Errorf("expected 4 receives, got %d:\n%s", got, s)
	}
}

func TestRunSmoke_InvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Smoke.Timeout = "whenever"
	if err := runSmoke(context.Background(), cfg, io.Discard); err == nil {
		t.Fatal("expected validation error")
	}
}
