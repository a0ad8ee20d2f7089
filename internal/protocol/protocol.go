package protocol

// Wire protocol constants
const (
	// CommandPrefix marks outgoing commands and unsolicited device events
	CommandPrefix = '!'

	// EchoPrefix marks command confirmation echoes from the device
	EchoPrefix = '#'

	// Terminator ends every line in both directions
	Terminator = '\r'

	// MinMessageLength is the shortest line worth parsing (marker + two chars)
	MinMessageLength = 3

	// MinConfirmationLength is the shortest line accepted as a command echo
	MinConfirmationLength = 5

	// DefaultPort is the TCP control port Lyngdorf processors listen on
	DefaultPort = 84
)

// Message is a parsed protocol line: the event (or command) name and its
// parameters in wire order. A trailing quoted string, when present, is the
// last parameter.
type Message struct {
	Event  string
	Params []string
}

// Frame wraps a command string into its wire form: marker, text, terminator.
func Frame(command string) []byte {
	b := make([]byte, 0, len(command)+2)
	b = append(b, CommandPrefix)
	b = append(b, command...)
	b = append(b, Terminator)
	return b
}

// IsCommand reports whether the line carries the command/event marker.
func IsCommand(line string) bool {
	return len(line) > 0 && line[0] == CommandPrefix
}

// IsEcho reports whether the line carries the confirmation echo marker.
func IsEcho(line string) bool {
	return len(line) > 0 && line[0] == EchoPrefix
}
