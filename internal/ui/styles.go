package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette.
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // green - connected, power on
	ErrorColor   = lipgloss.Color("#FF5555") // red - errors, disconnected
	WarningColor = lipgloss.Color("#FFA500") // orange - reconnecting, muted
	MutedColor   = lipgloss.Color("#626262") // gray - labels, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // white - values
)

// Layout constants.
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	// TitleStyle is for the device header line.
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// SubtitleStyle is for the host/model line under the title.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// LabelStyle is for field labels ("Volume:").
	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(16)

	// ValueStyle is for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// UnknownStyle is for fields the device has not reported yet.
	UnknownStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// ConnectedStyle marks a healthy connection.
	ConnectedStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// ReconnectingStyle marks a connection being re-established.
	ReconnectingStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	// DisconnectedStyle marks a closed or failed connection.
	DisconnectedStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// ErrorMessageStyle is for error text.
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// HintStyle is for key hints in the interactive monitor.
	HintStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// HeaderBorderStyle returns the border style for the monitor header.
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// GetTerminalWidth returns the current terminal width, with fallback.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// GetTerminalSize returns the current terminal width and height.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}

// Printer writes styled content to a writer, os.Stdout by default.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the terminal width used by this printer.
func (p *Printer) Width() int { return p.width }

// Print writes content to the output.
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline.
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintError writes a styled error line.
func (p *Printer) PrintError(message string) {
	p.Println(ErrorMessageStyle.Render("✗ " + message))
}
