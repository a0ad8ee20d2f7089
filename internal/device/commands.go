package device

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/session"
	"github.com/jsoutter/golyngdorf/internal/volume"
)

// sendCommand formats a command through the active descriptor and
// writes it. Unknown or mis-parameterized commands surface as
// validation errors without touching the connection.
func (d *Device) sendCommand(ctx context.Context, id descriptor.CommandID, skipConfirmation bool, args ...int) error {
	def, err := d.sess.Descriptor().Command(id)
	if err != nil {
		return session.NewValidationError("command", err.Error())
	}
	wire, err := def.Format(args...)
	if err != nil {
		return session.NewValidationError("command", err.Error())
	}
	return d.sess.SendCommand(ctx, wire, skipConfirmation)
}

// SendCommand sends a command by its identifier name ("VOLUME_UP",
// "MENU", ...). arg is required for parameterized commands and must be
// nil for the rest.
func (d *Device) SendCommand(ctx context.Context, name string, arg *int, skipConfirmation bool) error {
	def, err := d.sess.Descriptor().CommandByName(name)
	if err != nil {
		return session.NewValidationError("command", err.Error())
	}
	var args []int
	if arg != nil {
		args = append(args, *arg)
	}
	wire, err := def.Format(args...)
	if err != nil {
		return session.NewValidationError("command", err.Error())
	}
	return d.sess.SendCommand(ctx, wire, skipConfirmation)
}

// PowerOn turns the device on.
func (d *Device) PowerOn(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdPowerOn, false)
}

// PowerOff puts the device in standby.
func (d *Device) PowerOff(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdPowerOff, false)
}

// SetVolume sets the absolute volume in dB. The value must lie within
// [volume.MinDB, the device's reported maximum].
func (d *Device) SetVolume(ctx context.Context, db float64) error {
	d.mu.Lock()
	maxVolume := d.maxVolume
	d.mu.Unlock()
	if db < volume.MinDB || db > maxVolume {
		return session.NewValidationError("volume",
			fmt.Sprintf("volume %.1f dB outside [%.1f, %.1f]", db, volume.MinDB, maxVolume))
	}
	return d.sendCommand(ctx, descriptor.CmdVolume, false, wireTenths(db))
}

// SetVolumeLevel sets the volume from a normalized 0..1 level using the
// perceptual curve.
func (d *Device) SetVolumeLevel(ctx context.Context, level float64) error {
	d.mu.Lock()
	db := d.linearToDB(level)
	d.mu.Unlock()
	return d.SetVolume(ctx, db)
}

// VolumeUp nudges the volume up. Relative steps are fire-and-forget.
func (d *Device) VolumeUp(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdVolumeUp, true)
}

// VolumeDown nudges the volume down.
func (d *Device) VolumeDown(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdVolumeDown, true)
}

// SetMute mutes or unmutes the device.
func (d *Device) SetMute(ctx context.Context, mute bool) error {
	if mute {
		return d.sendCommand(ctx, descriptor.CmdMuteOn, false)
	}
	return d.sendCommand(ctx, descriptor.CmdMuteOff, false)
}

// SetSource selects an input source by name. An unknown name is a
// silent no-op; the device decides what names exist.
func (d *Device) SetSource(ctx context.Context, name string) error {
	return d.setOption(ctx, d.sources, name, descriptor.CmdSource, "source")
}

// SetVoicing selects a RoomPerfect voicing by name.
func (d *Device) SetVoicing(ctx context.Context, name string) error {
	return d.setOption(ctx, d.voicings, name, descriptor.CmdVoicing, "voicing")
}

// SetFocusPosition selects a RoomPerfect focus position by name.
func (d *Device) SetFocusPosition(ctx context.Context, name string) error {
	return d.setOption(ctx, d.focusPositions, name, descriptor.CmdFocusPosition, "focus position")
}

// SetAudioMode selects an audio processing mode by name.
func (d *Device) SetAudioMode(ctx context.Context, name string) error {
	return d.setOption(ctx, d.audioModes, name, descriptor.CmdAudioMode, "audio mode")
}

func (d *Device) setOption(ctx context.Context, list *OptionList, name string, id descriptor.CommandID, what string) error {
	d.mu.Lock()
	index, ok := list.ByName(name)
	d.mu.Unlock()
	if !ok {
		d.log.Debug("ignoring unknown option name",
			zap.String("kind", what), zap.String("name", name))
		return nil
	}
	return d.sendCommand(ctx, id, false, index)
}

// SetLipsync sets the lipsync delay in milliseconds, validated against
// the range the device reported.
func (d *Device) SetLipsync(ctx context.Context, ms int) error {
	d.mu.Lock()
	lo, hi := d.minLipsync, d.maxLipsync
	d.mu.Unlock()
	if ms < lo || ms > hi {
		return session.NewValidationError("lipsync",
			fmt.Sprintf("lipsync %d ms outside [%d, %d]", ms, lo, hi))
	}
	return d.sendCommand(ctx, descriptor.CmdLipsync, false, ms)
}

// Play sends the transport play command.
func (d *Device) Play(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdPlay, false)
}

// Next skips to the next track.
func (d *Device) Next(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdNext, false)
}

// Previous skips to the previous track.
func (d *Device) Previous(ctx context.Context) error {
	return d.sendCommand(ctx, descriptor.CmdPrevious, false)
}

// SetBassTrim sets the bass trim in dB within ±TrimRangeBassTreble.
func (d *Device) SetBassTrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdBassTrim, db, TrimRangeBassTreble)
}

// SetTrebleTrim sets the treble trim in dB within ±TrimRangeBassTreble.
func (d *Device) SetTrebleTrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdTrebleTrim, db, TrimRangeBassTreble)
}

// SetCenterTrim sets the center channel trim in dB within ±TrimRangeChannel.
func (d *Device) SetCenterTrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdCenterTrim, db, TrimRangeChannel)
}

// SetHeightsTrim sets the height channels trim in dB within ±TrimRangeChannel.
func (d *Device) SetHeightsTrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdHeightsTrim, db, TrimRangeChannel)
}

// SetLFETrim sets the LFE channel trim in dB within ±TrimRangeChannel.
func (d *Device) SetLFETrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdLFETrim, db, TrimRangeChannel)
}

// SetSurroundsTrim sets the surround channels trim in dB within ±TrimRangeChannel.
func (d *Device) SetSurroundsTrim(ctx context.Context, db float64) error {
	return d.setTrim(ctx, descriptor.CmdSurroundsTrim, db, TrimRangeChannel)
}

func (d *Device) setTrim(ctx context.Context, id descriptor.CommandID, db, limit float64) error {
	if math.Abs(db) > limit {
		return session.NewValidationError("trim",
			fmt.Sprintf("trim %.1f dB outside ±%.1f", db, limit))
	}
	return d.sendCommand(ctx, id, false, wireTenths(db))
}

// wireTenths encodes a dB value as the tenths-of-dB integer the wire
// protocol uses.
func wireTenths(db float64) int {
	return int(db * 10)
}
