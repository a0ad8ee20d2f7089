// Package ui renders lyngdorfctl's terminal output: lipgloss-styled
// status summaries for one-shot commands and an interactive Bubble Tea
// monitor that follows a device's state live.
package ui
