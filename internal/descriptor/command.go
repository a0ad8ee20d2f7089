package descriptor

import (
	"fmt"
	"strings"
)

// CommandID identifies an abstract device command independent of the
// wire spelling used by a particular model.
type CommandID int

// Commands understood by at least one device family.
const (
	CmdVerbose CommandID = iota + 1
	CmdPowerOn
	CmdPowerOff
	CmdVolume
	CmdVolumeUp
	CmdVolumeDown
	CmdMuteOn
	CmdMuteOff
	CmdSourceButton
	CmdSource
	CmdSourceNext
	CmdSourcePrev
	CmdVoicing
	CmdVoicingNext
	CmdVoicingPrev
	CmdFocusPosition
	CmdFocusPositionNext
	CmdFocusPositionPrev
	CmdAudioModeButton
	CmdAudioMode
	CmdAudioModeNext
	CmdAudioModePrev
	CmdLipsync
	CmdLipsyncUp
	CmdLipsyncDown
	CmdDTSDialogUp
	CmdDTSDialogDown
	CmdPlay
	CmdNext
	CmdPrevious
	CmdBassTrim
	CmdBassTrimUp
	CmdBassTrimDown
	CmdTrebleTrim
	CmdTrebleTrimUp
	CmdTrebleTrimDown
	CmdCenterTrim
	CmdCenterTrimUp
	CmdCenterTrimDown
	CmdHeightsTrim
	CmdHeightsTrimUp
	CmdHeightsTrimDown
	CmdLFETrim
	CmdLFETrimUp
	CmdLFETrimDown
	CmdSurroundsTrim
	CmdSurroundsTrimUp
	CmdSurroundsTrimDown
	CmdCursorUp
	CmdCursorDown
	CmdCursorLeft
	CmdCursorRight
	CmdCursorEnter
	CmdDigit0
	CmdDigit1
	CmdDigit2
	CmdDigit3
	CmdDigit4
	CmdDigit5
	CmdDigit6
	CmdDigit7
	CmdDigit8
	CmdDigit9
	CmdMenu
	CmdInfo
	CmdSettings
	CmdBack
)

var commandNames = map[CommandID]string{
	CmdVerbose:           "VERBOSE",
	CmdPowerOn:           "POWER_ON",
	CmdPowerOff:          "POWER_OFF",
	CmdVolume:            "VOLUME",
	CmdVolumeUp:          "VOLUME_UP",
	CmdVolumeDown:        "VOLUME_DOWN",
	CmdMuteOn:            "MUTE_ON",
	CmdMuteOff:           "MUTE_OFF",
	CmdSourceButton:      "SOURCE_BUTTON",
	CmdSource:            "SOURCE",
	CmdSourceNext:        "SOURCE_NEXT",
	CmdSourcePrev:        "SOURCE_PREV",
	CmdVoicing:           "VOICING",
	CmdVoicingNext:       "VOICING_NEXT",
	CmdVoicingPrev:       "VOICING_PREV",
	CmdFocusPosition:     "FOCUS_POSITION",
	CmdFocusPositionNext: "FOCUS_POSITION_NEXT",
	CmdFocusPositionPrev: "FOCUS_POSITION_PREV",
	CmdAudioModeButton:   "AUDIO_MODE_BUTTON",
	CmdAudioMode:         "AUDIO_MODE",
	CmdAudioModeNext:     "AUDIO_MODE_NEXT",
	CmdAudioModePrev:     "AUDIO_MODE_PREV",
	CmdLipsync:           "LIPSYNC",
	CmdLipsyncUp:         "LIPSYNC_UP",
	CmdLipsyncDown:       "LIPSYNC_DOWN",
	CmdDTSDialogUp:       "DTS_DIALOG_UP",
	CmdDTSDialogDown:     "DTS_DIALOG_DOWN",
	CmdPlay:              "PLAY",
	CmdNext:              "NEXT",
	CmdPrevious:          "PREVIOUS",
	CmdBassTrim:          "BASS_TRIM",
	CmdBassTrimUp:        "BASS_TRIM_UP",
	CmdBassTrimDown:      "BASS_TRIM_DOWN",
	CmdTrebleTrim:        "TREBLE_TRIM",
	CmdTrebleTrimUp:      "TREBLE_TRIM_UP",
	CmdTrebleTrimDown:    "TREBLE_TRIM_DOWN",
	CmdCenterTrim:        "CENTER_TRIM",
	CmdCenterTrimUp:      "CENTER_TRIM_UP",
	CmdCenterTrimDown:    "CENTER_TRIM_DOWN",
	CmdHeightsTrim:       "HEIGHTS_TRIM",
	CmdHeightsTrimUp:     "HEIGHTS_TRIM_UP",
	CmdHeightsTrimDown:   "HEIGHTS_TRIM_DOWN",
	CmdLFETrim:           "LFE_TRIM",
	CmdLFETrimUp:         "LFE_TRIM_UP",
	CmdLFETrimDown:       "LFE_TRIM_DOWN",
	CmdSurroundsTrim:     "SURROUNDS_TRIM",
	CmdSurroundsTrimUp:   "SURROUNDS_TRIM_UP",
	CmdSurroundsTrimDown: "SURROUNDS_TRIM_DOWN",
	CmdCursorUp:          "CURSOR_UP",
	CmdCursorDown:        "CURSOR_DOWN",
	CmdCursorLeft:        "CURSOR_LEFT",
	CmdCursorRight:       "CURSOR_RIGHT",
	CmdCursorEnter:       "CURSOR_ENTER",
	CmdDigit0:            "DIGIT_0",
	CmdDigit1:            "DIGIT_1",
	CmdDigit2:            "DIGIT_2",
	CmdDigit3:            "DIGIT_3",
	CmdDigit4:            "DIGIT_4",
	CmdDigit5:            "DIGIT_5",
	CmdDigit6:            "DIGIT_6",
	CmdDigit7:            "DIGIT_7",
	CmdDigit8:            "DIGIT_8",
	CmdDigit9:            "DIGIT_9",
	CmdMenu:              "MENU",
	CmdInfo:              "INFO",
	CmdSettings:          "SETTINGS",
	CmdBack:              "BACK",
}

var commandIDs = func() map[string]CommandID {
	m := make(map[string]CommandID, len(commandNames))
	for id, name := range commandNames {
		m[name] = id
	}
	return m
}()

// String returns the identifier name, e.g. "VOLUME_UP".
func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CommandID(%d)", int(c))
}

// CommandIDByName resolves an identifier name (case-insensitive) to its
// CommandID.
func CommandIDByName(name string) (CommandID, bool) {
	id, ok := commandIDs[strings.ToUpper(name)]
	return id, ok
}

// CommandDefinition is the wire template for one command on one device
// family. Templates with a parameter contain a single %d placeholder.
type CommandDefinition struct {
	template  string
	parameter bool
}

// Def builds a parameterless command definition.
func Def(template string) CommandDefinition {
	return CommandDefinition{template: template}
}

// DefParam builds a command definition taking one integer parameter.
func DefParam(template string) CommandDefinition {
	return CommandDefinition{template: template, parameter: true}
}

// Parameter reports whether the command requires an argument.
func (d CommandDefinition) Parameter() bool { return d.parameter }

// Format renders the wire string. It fails when an argument is supplied
// to a parameterless command or omitted from a parameterized one.
func (d CommandDefinition) Format(args ...int) (string, error) {
	switch {
	case d.parameter && len(args) == 0:
		return "", fmt.Errorf("command %q requires an argument", d.template)
	case !d.parameter && len(args) > 0:
		return "", fmt.Errorf("command %q does not accept an argument", d.template)
	case len(args) > 1:
		return "", fmt.Errorf("command %q accepts at most one argument", d.template)
	}
	if d.parameter {
		return fmt.Sprintf(d.template, args[0]), nil
	}
	return d.template, nil
}
