package ui

import (
	"fmt"
	"strings"

	"github.com/jsoutter/golyngdorf/internal/device"
	"github.com/jsoutter/golyngdorf/internal/session"
)

// RenderConnectionState renders a colored connection state word.
func RenderConnectionState(state session.State) string {
	switch state {
	case session.StateConnected:
		return ConnectedStyle.Render("connected")
	case session.StateConnecting:
		return ReconnectingStyle.Render("connecting")
	case session.StateReconnecting:
		return ReconnectingStyle.Render("reconnecting")
	default:
		return DisconnectedStyle.Render("disconnected")
	}
}

// RenderStatus renders the full device state as labeled lines.
func RenderStatus(host string, connState session.State, state device.State) string {
	var b strings.Builder

	title := "Lyngdorf"
	if state.Model != "" {
		title = "Lyngdorf " + string(state.Model)
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(host) + "  " + RenderConnectionState(connState))
	b.WriteString("\n\n")

	writeField(&b, "Power", onOff(state.Power))
	writeField(&b, "Volume", dbValue(state.Volume))
	writeField(&b, "Max volume", fmt.Sprintf("%.1f dB", state.MaxVolume))
	writeField(&b, "Muted", onOff(state.Muted))
	writeField(&b, "Source", stringValue(state.Source))
	writeField(&b, "Stream type", stringValue(state.StreamType))
	writeField(&b, "Voicing", stringValue(state.Voicing))
	writeField(&b, "Focus position", stringValue(state.FocusPosition))

	if state.Multichannel {
		writeField(&b, "Audio mode", stringValue(state.AudioMode))
		writeField(&b, "Audio input", stringValue(state.AudioInput))
		writeField(&b, "Audio type", stringValue(state.AudioType))
		writeField(&b, "Video input", stringValue(state.VideoInput))
		writeField(&b, "Video type", stringValue(state.VideoType))
		writeField(&b, "Video output", stringValue(state.VideoOutput))
		writeField(&b, "Lipsync", lipsyncValue(state))
		writeField(&b, "Loudness", onOff(state.Loudness))
		writeField(&b, "Bass trim", dbValue(state.BassTrim))
		writeField(&b, "Treble trim", dbValue(state.TrebleTrim))
		writeField(&b, "Center trim", dbValue(state.CenterTrim))
		writeField(&b, "Heights trim", dbValue(state.HeightsTrim))
		writeField(&b, "LFE trim", dbValue(state.LFETrim))
		writeField(&b, "Surrounds trim", dbValue(state.SurroundsTrim))
	}

	if len(state.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Sources:"))
		b.WriteString(ValueStyle.Render(strings.Join(state.Sources, ", ")))
		b.WriteString("\n")
	}
	if len(state.Voicings) > 0 {
		b.WriteString(LabelStyle.Render("Voicings:"))
		b.WriteString(ValueStyle.Render(strings.Join(state.Voicings, ", ")))
		b.WriteString("\n")
	}
	if len(state.AudioModes) > 0 {
		b.WriteString(LabelStyle.Render("Audio modes:"))
		b.WriteString(ValueStyle.Render(strings.Join(state.AudioModes, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label + ":"))
	b.WriteString(value)
	b.WriteString("\n")
}

func unknown() string {
	return UnknownStyle.Render("unknown")
}

func onOff(v *bool) string {
	switch {
	case v == nil:
		return unknown()
	case *v:
		return ConnectedStyle.Render("on")
	default:
		return ValueStyle.Render("off")
	}
}

func dbValue(v *float64) string {
	if v == nil {
		return unknown()
	}
	return ValueStyle.Render(fmt.Sprintf("%.1f dB", *v))
}

func stringValue(v *string) string {
	if v == nil {
		return unknown()
	}
	return ValueStyle.Render(*v)
}

func lipsyncValue(state device.State) string {
	if state.Lipsync == nil {
		return unknown()
	}
	return ValueStyle.Render(fmt.Sprintf("%d ms (range %d-%d)",
		*state.Lipsync, state.MinLipsync, state.MaxLipsync))
}
