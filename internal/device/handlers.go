package device

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
)

// handlerFunc mutates device state for one event and returns the
// notifications to emit. It runs with d.mu held; notifications are
// delivered after the lock is released.
type handlerFunc func(d *Device, event string, params []string) []descriptor.QueryID

// handlerTable maps wire event names to handlers. Both device families
// are covered; events a family never emits are simply never dispatched.
var handlerTable = map[string]handlerFunc{
	"DEVICE": (*Device).handleModel,

	"POWER": (*Device).handlePower,
	"PWR":   (*Device).handlePower,

	"VOL":     (*Device).handleVolume,
	"MUTE":    (*Device).handleMute,
	"MUTEON":  (*Device).handleMute,
	"MUTEOFF": (*Device).handleMute,
	"MAXVOL":  (*Device).handleMaxVolume,

	"SRCCOUNT":   (*Device).handleSourceCount,
	"SRC":        (*Device).handleSource,
	"SRCNAME":    (*Device).handleSource,
	"STREAMTYPE": (*Device).handleStreamType,

	// RoomPerfect voicings; the TDAI family spells these without the
	// RP prefix.
	"RPVOICOUNT": (*Device).handleVoicingCount,
	"RPVOI":      (*Device).handleVoicing,
	"VOICOUNT":   (*Device).handleVoicingCount,
	"VOINAME":    (*Device).handleVoicing,
	"VOI":        (*Device).handleVoicing,

	"RPFOCCOUNT": (*Device).handleFocusPositionCount,
	"RPFOC":      (*Device).handleFocusPosition,
	"RPCOUNT":    (*Device).handleFocusPositionCount,
	"RPNAME":     (*Device).handleFocusPosition,
	"RP":         (*Device).handleFocusPosition,

	"AUDIOSTATUS": (*Device).handleAudioType,

	"AUDMODECOUNT": (*Device).handleAudioModeCount,
	"AUDMODE":      (*Device).handleAudioMode,

	"AUDIN":       (*Device).handleAudioInput,
	"AUDTYPE":     (*Device).handleAudioType,
	"VIDIN":       (*Device).handleVideoInput,
	"VIDTYPE":     (*Device).handleVideoType,
	"HDMIMAINOUT": (*Device).handleVideoOutput,

	"LIPSYNCRANGE": (*Device).handleLipsyncRange,
	"LIPSYNC":      (*Device).handleLipsync,

	"DTSDIALOGAVAILABLE": (*Device).handleDTSDialogAvailable,
	"DTSDIALOG":          (*Device).handleDTSDialog,

	"LOUDNESS":   (*Device).handleLoudness,
	"TRIMBASS":   (*Device).handleBassTrim,
	"TRIMTREB":   (*Device).handleTrebleTrim,
	"TRIMTREBLE": (*Device).handleTrebleTrim,
	"TRIMCENTER": (*Device).handleCenterTrim,
	"TRIMHEIGHT": (*Device).handleHeightsTrim,
	"TRIMLFE":    (*Device).handleLFETrim,
	"TRIMSURRS":  (*Device).handleSurroundsTrim,
}

func (d *Device) registerHandlers() {
	for event, fn := range handlerTable {
		fn := fn
		d.sess.RegisterCallback(event, func(event string, params []string) {
			d.mu.Lock()
			changes := fn(d, event, params)
			d.mu.Unlock()
			d.runNotify(changes...)
		})
	}
}

// handleModel records the announced model and, if the generic
// descriptor is still active, swaps in the model-specific one. A model
// selected explicitly up front is never overridden.
func (d *Device) handleModel(event string, params []string) []descriptor.QueryID {
	d.model = ""
	if len(params) > 0 {
		if model, ok := descriptor.ModelByName(params[0]); ok {
			d.model = model
			if descriptor.IsDefault(d.sess.Descriptor()) {
				desc, err := descriptor.ForModel(model)
				if err == nil {
					d.sess.SetDescriptor(desc)
					d.log.Info("device model announced, descriptor activated",
						zap.String("model", string(model)))
				}
			}
		} else {
			d.log.Warn("unknown device model announced", zap.String("model", params[0]))
		}
	}
	return []descriptor.QueryID{descriptor.QueryDevice}
}

func (d *Device) handlePower(event string, params []string) []descriptor.QueryID {
	d.power = parseOnOff(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryPower}
}

func (d *Device) handleVolume(event string, params []string) []descriptor.QueryID {
	d.volumeDB = parseTenths(firstParam(params))
	d.volumeLevel = nil
	if d.volumeDB != nil {
		level := d.dbToLinear(*d.volumeDB)
		d.volumeLevel = &level
	}
	return []descriptor.QueryID{descriptor.QueryVolume}
}

// handleMute covers both the parameterized MUTE(x) event and the bare
// MUTEON/MUTEOFF events, whose state is carried in the event name.
func (d *Device) handleMute(event string, params []string) []descriptor.QueryID {
	value := firstParam(params)
	if value == "" {
		value = strings.TrimPrefix(event, "MUTE")
	}
	d.muted = parseOnOff(value)
	return []descriptor.QueryID{descriptor.QueryMute}
}

func (d *Device) handleMaxVolume(event string, params []string) []descriptor.QueryID {
	if mv := parseTenths(firstParam(params)); mv != nil {
		d.maxVolume = *mv
		d.alpha = d.computeAlpha(*mv)
	}
	return []descriptor.QueryID{descriptor.QueryMaxVolume}
}

func (d *Device) handleSourceCount(event string, params []string) []descriptor.QueryID {
	d.resizeOptionList(d.sources, params)
	return nil
}

func (d *Device) handleSource(event string, params []string) []descriptor.QueryID {
	return d.handleOptionEntry(d.sources, &d.source, params,
		descriptor.QuerySourceList, descriptor.QuerySource)
}

func (d *Device) handleStreamType(event string, params []string) []descriptor.QueryID {
	return d.setLookupField(&d.streamType, params,
		d.sess.Descriptor().StreamType, descriptor.QueryStreamType)
}

func (d *Device) handleVoicingCount(event string, params []string) []descriptor.QueryID {
	d.resizeOptionList(d.voicings, params)
	return nil
}

func (d *Device) handleVoicing(event string, params []string) []descriptor.QueryID {
	return d.handleOptionEntry(d.voicings, &d.voicing, params,
		descriptor.QueryVoicingList, descriptor.QueryVoicing)
}

func (d *Device) handleFocusPositionCount(event string, params []string) []descriptor.QueryID {
	d.resizeOptionList(d.focusPositions, params)
	return nil
}

func (d *Device) handleFocusPosition(event string, params []string) []descriptor.QueryID {
	return d.handleOptionEntry(d.focusPositions, &d.focusPosition, params,
		descriptor.QueryFocusPositionList, descriptor.QueryFocusPosition)
}

func (d *Device) handleAudioModeCount(event string, params []string) []descriptor.QueryID {
	d.resizeOptionList(d.audioModes, params)
	return nil
}

func (d *Device) handleAudioMode(event string, params []string) []descriptor.QueryID {
	return d.handleOptionEntry(d.audioModes, &d.audioMode, params,
		descriptor.QueryAudioModeList, descriptor.QueryAudioMode)
}

func (d *Device) handleAudioInput(event string, params []string) []descriptor.QueryID {
	return d.setLookupField(&d.audioInput, params,
		d.sess.Descriptor().AudioInput, descriptor.QueryAudioInput)
}

// handleAudioType joins all parameters: the device reports format,
// channel layout and sample rate as separate fields.
func (d *Device) handleAudioType(event string, params []string) []descriptor.QueryID {
	var value *string
	if len(params) > 0 {
		joined := strings.Join(params, ", ")
		value = &joined
	}
	return d.setStringField(&d.audioType, value, descriptor.QueryAudioType)
}

func (d *Device) handleVideoInput(event string, params []string) []descriptor.QueryID {
	return d.setLookupField(&d.videoInput, params,
		d.sess.Descriptor().VideoInput, descriptor.QueryVideoInput)
}

func (d *Device) handleVideoType(event string, params []string) []descriptor.QueryID {
	var value *string
	if len(params) > 0 {
		value = &params[0]
	}
	return d.setStringField(&d.videoType, value, descriptor.QueryVideoType)
}

func (d *Device) handleVideoOutput(event string, params []string) []descriptor.QueryID {
	return d.setLookupField(&d.videoOutput, params,
		d.sess.Descriptor().VideoOutput, descriptor.QueryVideoOutput)
}

func (d *Device) handleLipsyncRange(event string, params []string) []descriptor.QueryID {
	if len(params) == 2 {
		if lo, err := strconv.Atoi(params[0]); err == nil {
			d.minLipsync = lo
		}
		if hi, err := strconv.Atoi(params[1]); err == nil {
			d.maxLipsync = hi
		}
	}
	return []descriptor.QueryID{descriptor.QueryLipsyncRange}
}

func (d *Device) handleLipsync(event string, params []string) []descriptor.QueryID {
	d.lipsync = nil
	if v, err := strconv.Atoi(firstParam(params)); err == nil {
		d.lipsync = &v
	}
	return []descriptor.QueryID{descriptor.QueryLipsync}
}

func (d *Device) handleDTSDialogAvailable(event string, params []string) []descriptor.QueryID {
	d.dtsDialogAvailable = parseOnOff(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryDTSDialogAvailable}
}

func (d *Device) handleDTSDialog(event string, params []string) []descriptor.QueryID {
	d.dtsDialog = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryDTSDialog}
}

func (d *Device) handleLoudness(event string, params []string) []descriptor.QueryID {
	d.loudness = parseOnOff(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryLoudness}
}

func (d *Device) handleBassTrim(event string, params []string) []descriptor.QueryID {
	d.bassTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryBassTrim}
}

func (d *Device) handleTrebleTrim(event string, params []string) []descriptor.QueryID {
	d.trebleTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryTrebleTrim}
}

func (d *Device) handleCenterTrim(event string, params []string) []descriptor.QueryID {
	d.centerTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryCenterTrim}
}

func (d *Device) handleHeightsTrim(event string, params []string) []descriptor.QueryID {
	d.heightsTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryHeightsTrim}
}

func (d *Device) handleLFETrim(event string, params []string) []descriptor.QueryID {
	d.lfeTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QueryLFETrim}
}

func (d *Device) handleSurroundsTrim(event string, params []string) []descriptor.QueryID {
	d.surroundsTrim = parseTenths(firstParam(params))
	return []descriptor.QueryID{descriptor.QuerySurroundsTrim}
}

// resizeOptionList applies a count event: clear and re-cap the list.
func (d *Device) resizeOptionList(list *OptionList, params []string) {
	if len(params) == 0 {
		return
	}
	n, err := strconv.Atoi(params[0])
	if err != nil {
		d.log.Debug("discarding malformed option count", zap.String("value", params[0]))
		return
	}
	if err := list.SetCapacity(n); err != nil {
		d.log.Warn("rejected option count", zap.Error(err))
	}
}

// handleOptionEntry applies a named-entry event. While the list is
// filling, the entry is inserted and the fill completing emits the
// list-available notification; once full, the entry selects the current
// option by id. The current-option notification only fires on change.
func (d *Device) handleOptionEntry(list *OptionList, current **string, params []string, listQuery, itemQuery descriptor.QueryID) []descriptor.QueryID {
	if len(params) == 0 {
		return nil
	}
	id, err := strconv.Atoi(params[0])
	if err != nil {
		d.log.Debug("discarding malformed option entry", zap.String("value", params[0]))
		return nil
	}

	var changes []descriptor.QueryID
	old := derefString(*current)

	if list.Full() {
		*current = nil
		if v, ok := list.ByID(id); ok {
			*current = &v
		}
	} else {
		if len(params) < 2 {
			return nil
		}
		if err := list.Add(id, params[1]); err != nil {
			d.log.Warn("rejected option entry", zap.Error(err))
			return nil
		}
		if list.Full() {
			changes = append(changes, listQuery)
		}
	}

	if derefString(*current) != old {
		changes = append(changes, itemQuery)
	}
	return changes
}

// setLookupField decodes a numeric parameter through a descriptor
// enumeration and stores it, notifying only on change.
func (d *Device) setLookupField(field **string, params []string, lookup func(int) (string, bool), change descriptor.QueryID) []descriptor.QueryID {
	var value *string
	if len(params) > 0 {
		if key, err := strconv.Atoi(params[0]); err == nil {
			if name, ok := lookup(key); ok {
				value = &name
			}
		}
	}
	return d.setStringField(field, value, change)
}

func (d *Device) setStringField(field **string, value *string, change descriptor.QueryID) []descriptor.QueryID {
	old := derefString(*field)
	*field = value
	if derefString(*field) == old {
		return nil
	}
	return []descriptor.QueryID{change}
}

func firstParam(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return params[0]
}

// parseOnOff decodes the 1/0 and ON/OFF boolean spellings. Anything
// else is unknown, not false.
func parseOnOff(value string) *bool {
	var b bool
	switch value {
	case "1", "ON":
		b = true
	case "0", "OFF":
		b = false
	default:
		return nil
	}
	return &b
}

// parseTenths decodes a tenths-of-dB wire integer into float dB.
func parseTenths(value string) *float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	db := v / 10.0
	return &db
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
