// Package session implements the protocol session against one Lyngdorf
// processor: a persistent TCP connection with line framing, command
// confirmation tracking, a keep-alive monitor, and automatic
// reconnection with exponential backoff.
//
// One Session talks to exactly one device. Incoming lines are parsed
// and dispatched, in arrival order, to callbacks registered per event
// name; a panicking callback is logged and isolated, never fatal to the
// session. Outgoing sends are serialized so that confirmation echoes
// (the device repeats accepted commands prefixed with '#') can be
// correlated by the literal command string.
//
// Lifecycle: Connect establishes the transport, configures device
// verbosity, and replays every status query of the active descriptor.
// If the transport drops while the session is enabled, a single
// reconnect loop re-establishes it with backoff; Disconnect cancels
// that loop, stops the monitor, and closes the transport.
package session
