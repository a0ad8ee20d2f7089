package session

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/logging"
	"github.com/jsoutter/golyngdorf/internal/protocol"
)

// Timing defaults, overridable through Config.
const (
	DefaultConnectTimeout  = 2 * time.Second
	DefaultSendTimeout     = 2 * time.Second
	DefaultMonitorInterval = 90 * time.Second
	DefaultReconnectWait   = 500 * time.Millisecond
	DefaultReconnectMax    = 30 * time.Second

	reconnectScale    = 2.0
	dispatchQueueSize = 256
)

// State is the connection state of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// DialFunc opens the transport. It exists so tests can substitute a
// fake device for the default TCP dialer.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config carries the connection parameters for one device.
type Config struct {
	Host string
	Port int

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration
	// SendTimeout bounds the wait for a command confirmation echo.
	SendTimeout time.Duration
	// MonitorInterval is the keep-alive check period. Silence longer
	// than the interval provokes a probe query; silence longer than
	// twice the interval declares the connection dead.
	MonitorInterval time.Duration
	// ReconnectWait is the initial reconnection backoff; it doubles per
	// failed attempt up to ReconnectMax.
	ReconnectWait time.Duration
	ReconnectMax  time.Duration

	// Dialer defaults to a net.Dialer.
	Dialer DialFunc
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = protocol.DefaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.MonitorInterval == 0 {
		c.MonitorInterval = DefaultMonitorInterval
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = DefaultReconnectWait
	}
	if c.ReconnectMax == 0 {
		c.ReconnectMax = DefaultReconnectMax
	}
	if c.Dialer == nil {
		var d net.Dialer
		c.Dialer = d.DialContext
	}
	return c
}

// EventFunc handles one parsed event line.
type EventFunc func(event string, params []string)

// RawFunc observes every parsed line before event dispatch.
type RawFunc func(line string)

type dispatchItem struct {
	line string
	msg  protocol.Message
}

// Session is the protocol session for a single device. All methods are
// safe for concurrent use.
type Session struct {
	cfg Config
	log *zap.Logger

	descMu sync.RWMutex
	desc   *descriptor.Descriptor

	// connectMu serializes connect, disconnect and reconnect attempts.
	connectMu sync.Mutex
	// sendMu serializes sends so confirmation correlation by literal
	// command string stays unambiguous.
	sendMu sync.Mutex

	mu              sync.Mutex
	conn            net.Conn
	enabled         bool
	state           State
	monitorCancel   context.CancelFunc
	reconnectCancel context.CancelFunc
	reconnectDone   chan struct{}
	// dispatchDone is closed by the dispatcher once it has drained the
	// current connection's queue, so Disconnect can await callbacks.
	dispatchDone chan struct{}

	lastMessage atomic.Int64 // unix nanos of the last received line

	pendingMu sync.Mutex
	pending   map[string]chan struct{}

	cbMu      sync.RWMutex
	callbacks map[string][]EventFunc
	raw       []RawFunc
}

// New creates a session using the given protocol descriptor. The
// session starts disconnected; call Connect to bring it up.
func New(cfg Config, desc *descriptor.Descriptor) *Session {
	cfg = cfg.withDefaults()
	if desc == nil {
		desc = descriptor.Default()
	}
	return &Session{
		cfg:       cfg,
		log:       logging.GetLogger().With(zap.String("host", cfg.Host)),
		desc:      desc,
		pending:   map[string]chan struct{}{},
		callbacks: map[string][]EventFunc{},
	}
}

// Host returns the configured device host.
func (s *Session) Host() string { return s.cfg.Host }

// Descriptor returns the active protocol descriptor.
func (s *Session) Descriptor() *descriptor.Descriptor {
	s.descMu.RLock()
	defer s.descMu.RUnlock()
	return s.desc
}

// SetDescriptor swaps the active protocol descriptor. The device model
// owns this switch; it happens once the device announces its model.
func (s *Session) SetDescriptor(desc *descriptor.Descriptor) {
	s.descMu.Lock()
	s.desc = desc
	s.descMu.Unlock()
}

// Enabled reports whether the session should be connected (user intent).
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Healthy reports whether the transport is currently open.
func (s *Session) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RegisterCallback registers a handler for one wire event name.
func (s *Session) RegisterCallback(event string, fn EventFunc) {
	s.cbMu.Lock()
	s.callbacks[event] = append(s.callbacks[event], fn)
	s.cbMu.Unlock()
}

// RegisterRawCallback registers an observer for every parsed line.
func (s *Session) RegisterRawCallback(fn RawFunc) {
	s.cbMu.Lock()
	s.raw = append(s.raw, fn)
	s.cbMu.Unlock()
}

// Connect establishes the connection. It is idempotent: connecting an
// already-healthy session is a no-op. A failed attempt is reported as a
// timeout or network error and is not retried here; retrying is the
// reconnect loop's job once a connection has existed.
func (s *Session) Connect(ctx context.Context) error {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()
	if s.Healthy() {
		return nil
	}
	return s.establish(ctx)
}

// establish runs a single connection attempt and the initial command
// sequence. Callers hold connectMu.
func (s *Session) establish(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.setState(StateConnecting)
	s.log.Debug("establishing connection", zap.String("addr", addr))

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	conn, err := s.cfg.Dialer(dialCtx, "tcp", addr)
	if err != nil {
		s.setState(StateDisconnected)
		cerr := classifyConnError("connect", err)
		s.log.Debug("connection failed", zap.Error(cerr))
		return cerr
	}

	queue := make(chan dispatchItem, dispatchQueueSize)
	dispatchDone := make(chan struct{})
	s.mu.Lock()
	s.conn = conn
	s.enabled = true
	s.state = StateConnected
	s.lastMessage.Store(time.Now().UnixNano())
	s.dispatchDone = dispatchDone
	s.startMonitorLocked()
	s.mu.Unlock()

	go s.dispatchLoop(queue, dispatchDone)
	go s.readLoop(conn, queue)

	s.log.Debug("connection established")

	// Put the device into full status-reporting mode, then replay every
	// status query so the device model starts from a complete snapshot.
	desc := s.Descriptor()
	verbose, err := desc.Command(descriptor.CmdVerbose)
	if err != nil {
		return err
	}
	wire, err := verbose.Format(2)
	if err != nil {
		return err
	}
	if err := s.SendCommand(ctx, wire, true); err != nil {
		return err
	}
	for _, query := range desc.Queries() {
		if err := s.SendCommand(ctx, query, false); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect tears the session down: disables reconnection, stops the
// monitor, cancels an in-flight reconnect loop and waits for it, closes
// the transport, and waits for the dispatcher to finish delivering any
// lines already read. It takes the connect lock first, so a reconnect
// attempt that is mid-dial completes (bounded by ConnectTimeout) before
// teardown proceeds. Idempotent.
func (s *Session) Disconnect() {
	s.connectMu.Lock()
	s.mu.Lock()
	s.enabled = false
	s.state = StateDisconnected
	s.stopMonitorLocked()
	cancel := s.reconnectCancel
	done := s.reconnectDone
	dispatchDone := s.dispatchDone
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.connectMu.Unlock()

	if done != nil {
		<-done
	}
	if dispatchDone != nil {
		<-dispatchDone
	}
	s.log.Debug("disconnected")
}

// SendCommand writes one command and, unless skipConfirmation is set,
// waits for the device to echo it back. A missing echo is logged and
// tolerated; the command may still have been lost. Sends are serialized.
func (s *Session) SendCommand(ctx context.Context, command string, skipConfirmation bool) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	enabled := s.enabled
	s.mu.Unlock()
	if conn == nil || !enabled {
		return newProcessingError("send", "not connected: "+command)
	}

	var confirmed chan struct{}
	if !skipConfirmation {
		confirmed = make(chan struct{})
		s.pendingMu.Lock()
		s.pending[command] = confirmed
		s.pendingMu.Unlock()
		defer func() {
			s.pendingMu.Lock()
			delete(s.pending, command)
			s.pendingMu.Unlock()
		}()
	}

	logging.LogLineSent(s.cfg.Host, command)
	if _, err := conn.Write(protocol.Frame(command)); err != nil {
		return classifyConnError("send", err)
	}

	if confirmed == nil {
		return nil
	}
	timer := time.NewTimer(s.cfg.SendTimeout)
	defer timer.Stop()
	select {
	case <-confirmed:
		return nil
	case <-timer.C:
		s.log.Warn("timeout waiting for command confirmation", zap.String("command", command))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendCommands sends multiple commands in sequence, each completing its
// confirmation wait before the next is written.
func (s *Session) SendCommands(ctx context.Context, skipConfirmation bool, commands ...string) error {
	for _, command := range commands {
		if err := s.SendCommand(ctx, command, skipConfirmation); err != nil {
			return err
		}
	}
	return nil
}

// readLoop frames the transport's byte stream into lines and feeds the
// dispatcher. It owns the queue channel and closes it on exit so the
// dispatcher drains and stops.
func (s *Session) readLoop(conn net.Conn, queue chan dispatchItem) {
	defer close(queue)
	reader := bufio.NewReader(conn)
	for {
		raw, err := reader.ReadString(protocol.Terminator)
		if err != nil {
			s.log.Debug("read loop ended", zap.Error(err))
			break
		}
		line := strings.Trim(raw, "\r\n")
		if line == "" {
			continue
		}
		s.processLine(line, queue)
	}
	s.handleDisconnected(conn)
}

// processLine records liveness, resolves confirmations inline, and
// queues the parsed line for callback dispatch. Confirmation resolution
// must not wait on the dispatcher: a send blocked on its echo would
// otherwise deadlock behind a slow callback.
func (s *Session) processLine(line string, queue chan dispatchItem) {
	logging.LogLineReceived(s.cfg.Host, line)
	s.lastMessage.Store(time.Now().UnixNano())

	s.resolveConfirmation(line)

	msg, ok := protocol.Parse(line)
	if !ok {
		s.log.Debug("discarding malformed line", zap.String("line", line))
		return
	}
	queue <- dispatchItem{line: line, msg: msg}
}

// resolveConfirmation completes a pending send when the line is the
// echo of its exact command string. Resolving an absent or already
// resolved command is a no-op.
func (s *Session) resolveConfirmation(line string) {
	if len(line) < protocol.MinConfirmationLength || !protocol.IsEcho(line) {
		return
	}
	command := line[1:]
	s.pendingMu.Lock()
	confirmed, ok := s.pending[command]
	if ok {
		delete(s.pending, command)
	}
	s.pendingMu.Unlock()
	if ok {
		close(confirmed)
		s.log.Debug("command confirmed", zap.String("command", command))
	}
}

// dispatchLoop delivers queued lines to callbacks in arrival order,
// independently of the read loop so a slow callback cannot stall
// reception. It closes done after the read loop has closed the queue
// and every queued line has been delivered.
func (s *Session) dispatchLoop(queue chan dispatchItem, done chan struct{}) {
	defer close(done)
	for item := range queue {
		s.runCallbacks(item)
	}
}

func (s *Session) runCallbacks(item dispatchItem) {
	s.cbMu.RLock()
	raw := s.raw
	handlers := s.callbacks[item.msg.Event]
	s.cbMu.RUnlock()

	for _, fn := range raw {
		s.safeRaw(fn, item.line)
	}
	if !protocol.IsCommand(item.line) {
		return
	}
	for _, fn := range handlers {
		s.safeEvent(fn, item.msg)
	}
}

// A panicking callback is logged and isolated so one bad handler cannot
// take the session down or starve its peers.
func (s *Session) safeRaw(fn RawFunc, line string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("raw callback panicked", zap.Any("panic", r), zap.String("line", line))
		}
	}()
	fn(line)
}

func (s *Session) safeEvent(fn EventFunc, msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event callback panicked", zap.Any("panic", r), zap.String("event", msg.Event))
		}
	}()
	fn(msg.Event, msg.Params)
}

// handleDisconnected reacts to transport loss. Stale notifications for
// a previously replaced connection are ignored, which also makes the
// read-loop and monitor triggers converge on a single reconnect loop.
func (s *Session) handleDisconnected(conn net.Conn) {
	s.mu.Lock()
	if s.conn == nil || s.conn != conn {
		s.mu.Unlock()
		return
	}
	_ = s.conn.Close()
	s.conn = nil
	s.stopMonitorLocked()

	if !s.enabled {
		s.state = StateDisconnected
		s.mu.Unlock()
		return
	}
	if s.reconnectCancel != nil {
		s.state = StateReconnecting
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.reconnectCancel = cancel
	s.reconnectDone = done
	s.state = StateReconnecting
	s.mu.Unlock()

	s.log.Info("connection lost, reconnecting")
	go s.reconnectLoop(ctx, done)
}

// reconnectLoop retries the connection with exponential backoff until
// it succeeds, the session is disabled, or the loop is cancelled.
func (s *Session) reconnectLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.reconnectCancel = nil
		s.reconnectDone = nil
		s.mu.Unlock()
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.ReconnectWait
	bo.RandomizationFactor = 0
	bo.Multiplier = reconnectScale
	bo.MaxInterval = s.cfg.ReconnectMax
	bo.MaxElapsedTime = 0
	bo.Reset()

	for {
		if ctx.Err() != nil {
			return
		}
		s.connectMu.Lock()
		if !s.Enabled() || s.Healthy() {
			s.connectMu.Unlock()
			return
		}
		err := s.establish(ctx)
		s.connectMu.Unlock()
		if err == nil {
			s.log.Info("reconnected")
			return
		}
		s.log.Debug("reconnect attempt failed", zap.Error(err))
		s.setState(StateReconnecting)

		select {
		case <-ctx.Done():
			return
		case <-time.After(bo.NextBackOff()):
		}
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) lastMessageTime() time.Time {
	return time.Unix(0, s.lastMessage.Load())
}
