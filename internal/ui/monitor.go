package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/device"
	"github.com/jsoutter/golyngdorf/internal/session"
)

// stateChangedMsg signals that the device reported new state.
type stateChangedMsg struct{}

// MonitorModel is the interactive live view of one device. State
// change notifications are coalesced through a 1-buffered channel: a
// burst of events triggers a single repaint.
type MonitorModel struct {
	dev     *device.Device
	changes chan struct{}
	spin    spinner.Model
	width   int
	height  int
}

// NewMonitor builds the monitor model and hooks the device's
// notification callback up to it.
func NewMonitor(dev *device.Device) *MonitorModel {
	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)
	m := &MonitorModel{
		dev:     dev,
		changes: make(chan struct{}, 1),
		spin:    spin,
	}
	m.width, m.height = GetTerminalSize()
	dev.SetNotificationCallback(func(descriptor.QueryID) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m
}

// Init implements tea.Model.
func (m *MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForChange())
}

// Update implements tea.Model.
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		m.height = msg.Height
		return m, nil

	case stateChangedMsg:
		return m, m.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *MonitorModel) View() string {
	connState := m.dev.ConnectionState()

	var body string
	if connState == session.StateConnected {
		body = RenderStatus(m.dev.Host(), connState, m.dev.State())
	} else {
		body = m.spin.View() + " " +
			SubtitleStyle.Render(m.dev.Host()) + "  " +
			RenderConnectionState(connState) + "\n"
	}

	return HeaderBorderStyle(m.width).Render(body) + "\n" +
		HintStyle.Render("  q: quit") + "\n"
}

// waitForChange blocks until the next coalesced notification.
func (m *MonitorModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

// RunMonitor runs the interactive monitor until the user quits. The
// device must already be connecting or connected.
func RunMonitor(dev *device.Device) error {
	model := NewMonitor(dev)
	defer dev.SetNotificationCallback(nil)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
