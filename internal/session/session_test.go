package session

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeDevice is a loopback TCP stand-in for a processor: it records
// every received command and echoes it back with the '#' confirmation
// prefix, unless the command has been marked silent.
type fakeDevice struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	conns    []net.Conn
	received []string
	silent   map[string]bool
	accepts  int
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &fakeDevice{t: t, ln: ln, silent: map[string]bool{}}
	go d.acceptLoop()
	t.Cleanup(func() { _ = ln.Close(); d.dropConnections() })
	return d
}

func (d *fakeDevice) acceptLoop() {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.mu.Lock()
		d.conns = append(d.conns, conn)
		d.accepts++
		d.mu.Unlock()
		go d.serve(conn)
	}
}

func (d *fakeDevice) serve(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString('\r')
		if err != nil {
			return
		}
		cmd := strings.Trim(raw, "\r\n")
		if cmd == "" {
			continue
		}
		d.mu.Lock()
		d.received = append(d.received, cmd)
		silent := d.silent[strings.TrimPrefix(cmd, "!")]
		d.mu.Unlock()
		if !silent {
			_, _ = conn.Write([]byte("#" + strings.TrimPrefix(cmd, "!") + "\r"))
		}
	}
}

func (d *fakeDevice) hostPort() (string, int) {
	addr := d.ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func (d *fakeDevice) muteEcho(command string) {
	d.mu.Lock()
	d.silent[command] = true
	d.mu.Unlock()
}

// push writes an unsolicited event line on the most recent connection.
func (d *fakeDevice) push(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		d.t.Fatalf("push %q: no connection", line)
	}
	conn := d.conns[len(d.conns)-1]
	if _, err := conn.Write([]byte(line + "\r")); err != nil {
		d.t.Fatalf("push %q: %v", line, err)
	}
}

func (d *fakeDevice) dropConnections() {
	d.mu.Lock()
	conns := d.conns
	d.conns = nil
	d.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (d *fakeDevice) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.received))
	copy(out, d.received)
	return out
}

func (d *fakeDevice) acceptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepts
}

func newTestSession(t *testing.T, d *fakeDevice) *Session {
	t.Helper()
	host, port := d.hostPort()
	s := New(Config{
		Host:            host,
		Port:            port,
		ConnectTimeout:  time.Second,
		SendTimeout:     200 * time.Millisecond,
		MonitorInterval: time.Hour,
		ReconnectWait:   20 * time.Millisecond,
		ReconnectMax:    50 * time.Millisecond,
	}, nil)
	t.Cleanup(s.Disconnect)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectRunsSetupSequence(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := s.State(); got != StateConnected {
		t.Fatalf("state = %v, want %v", got, StateConnected)
	}

	// Verbosity first, then the default descriptor's status queries in
	// declaration order.
	want := []string{"!VERB(2)", "!VERB?", "!DEVICE?"}
	waitFor(t, "setup sequence", func() bool { return len(device.commands()) >= len(want) })
	got := device.commands()[:len(want)]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("setup command %d = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	before := len(device.commands())
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if after := len(device.commands()); after != before {
		t.Fatalf("second Connect resent setup: %d commands, had %d", after, before)
	}
	if device.acceptCount() != 1 {
		t.Fatalf("accepts = %d, want 1", device.acceptCount())
	}
}

func TestSendCommandWaitsForEcho(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	start := time.Now()
	if err := s.SendCommand(context.Background(), "VOL(-200)", false); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= s.cfg.SendTimeout {
		t.Fatalf("confirmed send took %v, at least the full timeout", elapsed)
	}
}

func TestSendCommandToleratesMissingEcho(t *testing.T) {
	device := newFakeDevice(t)
	device.muteEcho("POWERONMAIN")
	s := newTestSession(t, device)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	start := time.Now()
	if err := s.SendCommand(context.Background(), "POWERONMAIN", false); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if elapsed := time.Since(start); elapsed < s.cfg.SendTimeout {
		t.Fatalf("unconfirmed send returned after %v, before the %v timeout", elapsed, s.cfg.SendTimeout)
	}
}

func TestSendCommandWhileDisconnected(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	err := s.SendCommand(context.Background(), "VOL(-200)", false)
	if !IsProcessingError(err) {
		t.Fatalf("SendCommand while disconnected = %v, want processing error", err)
	}
}

func TestEventDispatchPreservesOrder(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	var mu sync.Mutex
	var events []string
	for _, name := range []string{"SRCCOUNT", "SRC"} {
		s.RegisterCallback(name, func(event string, params []string) {
			mu.Lock()
			events = append(events, event+"("+strings.Join(params, ",")+")")
			mu.Unlock()
		})
	}

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	device.push("!SRCCOUNT(2)")
	device.push(`!SRC(0)"HDMI"`)
	device.push(`!SRC(1)"TV"`)

	want := []string{"SRCCOUNT(2)", "SRC(0,HDMI)", "SRC(1,TV)"}
	waitFor(t, "event dispatch", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= len(want)
	})
	mu.Lock()
	defer mu.Unlock()
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, events[i], want[i], events)
		}
	}
}

func TestRawCallbackSeesEchoes(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	var mu sync.Mutex
	var lines []string
	s.RegisterRawCallback(func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, "raw echo line", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, line := range lines {
			if line == "#VERB(2)" {
				return true
			}
		}
		return false
	})
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	var mu sync.Mutex
	var got []string
	s.RegisterCallback("PWR", func(event string, params []string) {
		panic("bad handler")
	})
	s.RegisterCallback("PWR", func(event string, params []string) {
		mu.Lock()
		got = append(got, strings.Join(params, ","))
		mu.Unlock()
	})

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	device.push("!PWR(ON)")
	device.push("!PWR(OFF)")

	waitFor(t, "events after panic", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})
	mu.Lock()
	defer mu.Unlock()
	if got[0] != "ON" || got[1] != "OFF" {
		t.Fatalf("events = %v, want [ON OFF]", got)
	}
}

func TestReconnectAfterConnectionLoss(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	device.dropConnections()

	waitFor(t, "reconnection", func() bool {
		return s.Healthy() && device.acceptCount() >= 2
	})
	if device.acceptCount() != 2 {
		t.Fatalf("accepts = %d, want 2", device.acceptCount())
	}

	// The new connection replays the setup sequence.
	waitFor(t, "setup replay", func() bool {
		count := 0
		for _, cmd := range device.commands() {
			if cmd == "!VERB(2)" {
				count++
			}
		}
		return count >= 2
	})
}

func TestReconnectBackoffSpacing(t *testing.T) {
	device := newFakeDevice(t)
	host, port := device.hostPort()

	// Dialer that records attempt times and fails while the switch is on.
	var mu sync.Mutex
	var failing bool
	var attempts []time.Time
	var netDialer net.Dialer
	dialer := func(ctx context.Context, network, address string) (net.Conn, error) {
		mu.Lock()
		attempts = append(attempts, time.Now())
		fail := failing
		mu.Unlock()
		if fail {
			return nil, errors.New("dial refused")
		}
		return netDialer.DialContext(ctx, network, address)
	}

	s := New(Config{
		Host:            host,
		Port:            port,
		ConnectTimeout:  time.Second,
		SendTimeout:     50 * time.Millisecond,
		MonitorInterval: time.Hour,
		ReconnectWait:   40 * time.Millisecond,
		ReconnectMax:    160 * time.Millisecond,
		Dialer:          dialer,
	}, nil)
	t.Cleanup(s.Disconnect)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	mu.Lock()
	failing = true
	attempts = attempts[:0]
	mu.Unlock()
	device.dropConnections()

	waitFor(t, "failed reconnect attempts", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(attempts) >= 5
	})
	mu.Lock()
	times := append([]time.Time(nil), attempts[:5]...)
	failing = false
	mu.Unlock()

	// With wait 40ms doubling to a 160ms cap the gaps between attempts
	// run 40, 80, 160, 160. Scheduling adds noise, never shrinkage.
	gaps := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i].Sub(times[i-1]))
	}
	const slack = 25 * time.Millisecond
	for i := 1; i < len(gaps); i++ {
		if gaps[i] < gaps[i-1]-slack {
			t.Fatalf("backoff gap shrank: %v after %v (all: %v)", gaps[i], gaps[i-1], gaps)
		}
	}
	if last := gaps[len(gaps)-1]; last < s.cfg.ReconnectMax-slack {
		t.Fatalf("backoff never reached the cap: last gap %v, cap %v (all: %v)",
			last, s.cfg.ReconnectMax, gaps)
	}

	waitFor(t, "recovery once dialing works again", func() bool { return s.Healthy() })
}

func TestDisconnectDrainsInFlightCallbacks(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	started := make(chan struct{})
	var finished atomic.Bool
	s.RegisterCallback("PWR", func(event string, params []string) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	device.push("!PWR(ON)")

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("callback never started")
	}
	s.Disconnect()
	if !finished.Load() {
		t.Fatal("Disconnect returned while a callback was still running")
	}
}

func TestDisconnectCancelsReconnect(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Kill both the connection and the listener so reconnect attempts
	// keep failing, then make sure Disconnect stops the loop.
	_ = device.ln.Close()
	device.dropConnections()
	waitFor(t, "reconnecting state", func() bool { return s.State() == StateReconnecting })

	s.Disconnect()
	if got := s.State(); got != StateDisconnected {
		t.Fatalf("state after Disconnect = %v, want %v", got, StateDisconnected)
	}
	if s.Enabled() {
		t.Fatal("session still enabled after Disconnect")
	}
}

func TestConnectAgainAfterDisconnect(t *testing.T) {
	device := newFakeDevice(t)
	s := newTestSession(t, device)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	s.Disconnect()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect after Disconnect: %v", err)
	}
	if !s.Healthy() {
		t.Fatal("session not healthy after second Connect")
	}
}

func TestConnectRefusedIsNetworkError(t *testing.T) {
	// Grab a free port, then close the listener so dialing it is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	s := New(Config{Host: addr.IP.String(), Port: addr.Port, ConnectTimeout: time.Second}, nil)
	err = s.Connect(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("Connect to closed port = %v, want network error", err)
	}
	if s.State() != StateDisconnected {
		t.Fatalf("state = %v, want %v", s.State(), StateDisconnected)
	}
}

func TestConnectTimeoutIsTimeoutError(t *testing.T) {
	blockingDialer := func(ctx context.Context, network, address string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := New(Config{
		Host:           "192.0.2.1",
		Port:           84,
		ConnectTimeout: 20 * time.Millisecond,
		Dialer:         blockingDialer,
	}, nil)

	err := s.Connect(context.Background())
	if !IsTimeoutError(err) {
		t.Fatalf("Connect with blocking dialer = %v, want timeout error", err)
	}
}

func TestKeepAliveProbeAndDeadConnection(t *testing.T) {
	device := newFakeDevice(t)
	host, port := device.hostPort()
	s := New(Config{
		Host:            host,
		Port:            port,
		ConnectTimeout:  time.Second,
		SendTimeout:     50 * time.Millisecond,
		MonitorInterval: 60 * time.Millisecond,
		ReconnectWait:   20 * time.Millisecond,
		ReconnectMax:    50 * time.Millisecond,
	}, nil)
	t.Cleanup(s.Disconnect)

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Past one silent interval the monitor probes with the verbosity
	// query; the echo resets the silence clock and keeps the
	// connection alive.
	waitFor(t, "keep-alive probe", func() bool {
		count := 0
		for _, cmd := range device.commands() {
			if cmd == "!VERB?" {
				count++
			}
		}
		return count >= 2 // one from setup, one from the probe
	})
	if !s.Healthy() {
		t.Fatal("session unhealthy despite probe responses")
	}
}
