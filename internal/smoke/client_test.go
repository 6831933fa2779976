package smoke

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swd-probe/probe-tools/internal/config"
	"github.com/swd-probe/probe-tools/internal/rsp"
)

const wantPacket = "$m10000000,200#ac"

// stub accepts a single connection and hands it to handle.
func stub(t *testing.T, handle func(conn net.Conn)) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	a := ln.Addr().(*net.TCPAddr)
	return a.IP.String(), a.Port
}

func testConfig(t *testing.T, host string, port int) Config {
	t.Helper()
	c := config.Default()
	c.Smoke.Host = host
	c.Smoke.Port = port
	c.Smoke.Timeout = "2s"

	cfg, err := ConfigFrom(c.Smoke)
	require.NoError(t, err)
	return cfg
}

func TestConfigFrom_DefaultPacket(t *testing.T) {
	cfg := testConfig(t, "127.0.0.1", 3333)
	assert.Equal(t, wantPacket, string(cfg.Packet))
	assert.Equal(t, 1024, cfg.BufferSize)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestRun_EchoesStubBytesInOrder(t *testing.T) {
	data := rsp.Frame([]byte("01020304"))
	received := make(chan []string, 1)

	host, port := stub(t, func(conn net.Conn) {
		var got []string
		pkt := make([]byte, len(wantPacket))

		if _, err := io.ReadFull(conn, pkt); err != nil {
			return
		}
		got = append(got, string(pkt))
		conn.Write([]byte("+"))

		if _, err := io.ReadFull(conn, pkt); err != nil {
			return
		}
		got = append(got, string(pkt))
		conn.Write(append([]byte("+"), data...))
		received <- got
		// Closing makes the remaining receives hit end of stream.
	})

	var out bytes.Buffer
	err := Run(context.Background(), testConfig(t, host, port), &out)
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, []string{wantPacket, wantPacket}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("stub did not receive both packets")
	}

	want := fmt.Sprintf("received data: %q\nreceived data: %q\nreceived data: \"\"\nreceived data: \"\"\n",
		"+", append([]byte("+"), data...))
	assert.Equal(t, want, out.String())
}

func TestRun_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	err = Run(context.Background(), testConfig(t, "127.0.0.1", port), io.Discard)
	assert.ErrorIs(t, err, ErrConnect)
}

func TestRun_ReceiveTimeout(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	host, port := stub(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
		<-done
	})

	cfg := testConfig(t, host, port)
	cfg.Timeout = 100 * time.Millisecond

	var out bytes.Buffer
	err := Run(context.Background(), cfg, &out)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, out.String())
}

func TestRun_Cancel(t *testing.T) {
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	host, port := stub(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
		<-done
	})

	cfg := testConfig(t, host, port)
	cfg.Timeout = 0

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, cfg, io.Discard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
