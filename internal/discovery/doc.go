// Package discovery locates Lyngdorf processors on the local network
// via multicast DNS. Lyngdorf devices advertise their control interface
// as a "_lyngdorf._tcp" service; the scanner browses for that service
// type, resolves addresses, and extracts the device model from the
// advertisement so a model-specific protocol descriptor can be selected
// before connecting.
package discovery
