package descriptor

import (
	"fmt"
	"strings"
)

// QueryID identifies an abstract status query.
type QueryID int

// Queries understood by at least one device family.
const (
	QueryVerbose QueryID = iota + 1
	QueryDevice
	QueryPower
	QueryVolume
	QueryMute
	QuerySourceList
	QuerySource
	QueryStreamType
	QueryVoicingList
	QueryVoicing
	QueryFocusPositionList
	QueryFocusPosition
	QueryAudioModeList
	QueryAudioMode
	QueryMaxVolume
	QueryAudioInput
	QueryAudioType
	QueryVideoInput
	QueryVideoType
	QueryVideoOutput
	QueryLipsyncRange
	QueryLipsync
	QueryDTSDialogAvailable
	QueryDTSDialog
	QueryLoudness
	QueryBassTrim
	QueryTrebleTrim
	QueryCenterTrim
	QueryHeightsTrim
	QueryLFETrim
	QuerySurroundsTrim
)

// DeviceModel is a supported Lyngdorf model as announced on the wire.
type DeviceModel string

// Supported device models.
const (
	MP40     DeviceModel = "MP-40"
	MP50     DeviceModel = "MP-50"
	MP60     DeviceModel = "MP-60"
	TDAI1120 DeviceModel = "TDAI-1120"
	TDAI2210 DeviceModel = "TDAI-2210"
	TDAI3400 DeviceModel = "TDAI-3400"
)

// ModelByName resolves a model string as announced by the device (or
// typed by a user) to a DeviceModel.
func ModelByName(name string) (DeviceModel, bool) {
	switch DeviceModel(strings.ToUpper(name)) {
	case MP40:
		return MP40, true
	case MP50:
		return MP50, true
	case MP60:
		return MP60, true
	case TDAI1120:
		return TDAI1120, true
	case TDAI2210:
		return TDAI2210, true
	case TDAI3400:
		return TDAI3400, true
	}
	return "", false
}

// UnsupportedModelError is returned when no descriptor exists for a
// model. It is fatal to the lookup, not to a running session.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported device model: %s", e.Model)
}

// queryEntry keeps the wire order of queries stable so that the
// connect-time query sequence is deterministic.
type queryEntry struct {
	id   QueryID
	wire string
}

// Descriptor is the immutable protocol table for one device family.
type Descriptor struct {
	commands     map[CommandID]CommandDefinition
	queries      []queryEntry
	queryIndex   map[QueryID]string
	streamTypes  map[int]string
	audioInputs  map[int]string
	videoInputs  map[int]string
	videoOutputs map[int]string
	multichannel bool
}

func newDescriptor(
	commands map[CommandID]CommandDefinition,
	queries []queryEntry,
	streamTypes map[int]string,
	multichannel bool,
	audioInputs, videoInputs, videoOutputs map[int]string,
) *Descriptor {
	idx := make(map[QueryID]string, len(queries))
	for _, q := range queries {
		idx[q.id] = q.wire
	}
	return &Descriptor{
		commands:     commands,
		queries:      queries,
		queryIndex:   idx,
		streamTypes:  streamTypes,
		audioInputs:  audioInputs,
		videoInputs:  videoInputs,
		videoOutputs: videoOutputs,
		multichannel: multichannel,
	}
}

// Command returns the definition for the given command identifier.
func (d *Descriptor) Command(id CommandID) (CommandDefinition, error) {
	def, ok := d.commands[id]
	if !ok {
		return CommandDefinition{}, fmt.Errorf("unknown command: %s", id)
	}
	return def, nil
}

// CommandByName resolves an identifier name (e.g. "VOLUME_UP") to its
// definition on this device family.
func (d *Descriptor) CommandByName(name string) (CommandDefinition, error) {
	id, ok := CommandIDByName(name)
	if !ok {
		return CommandDefinition{}, fmt.Errorf("unknown command name: %q", name)
	}
	return d.Command(id)
}

// Query returns the wire string for a query identifier.
func (d *Descriptor) Query(id QueryID) (string, bool) {
	wire, ok := d.queryIndex[id]
	return wire, ok
}

// Queries returns every query wire string in table order. The session
// sends these in sequence after connecting.
func (d *Descriptor) Queries() []string {
	out := make([]string, len(d.queries))
	for i, q := range d.queries {
		out[i] = q.wire
	}
	return out
}

// Multichannel reports whether the family decodes surround-processor
// fields (audio modes, video routing, lipsync, channel trims).
func (d *Descriptor) Multichannel() bool { return d.multichannel }

// StreamType decodes a numeric stream-type parameter. Unknown or
// intentionally blank entries return ok=false.
func (d *Descriptor) StreamType(key int) (string, bool) { return lookup(d.streamTypes, key) }

// AudioInput decodes a numeric audio-input parameter.
func (d *Descriptor) AudioInput(key int) (string, bool) { return lookup(d.audioInputs, key) }

// VideoInput decodes a numeric video-input parameter.
func (d *Descriptor) VideoInput(key int) (string, bool) { return lookup(d.videoInputs, key) }

// VideoOutput decodes a numeric video-output parameter.
func (d *Descriptor) VideoOutput(key int) (string, bool) { return lookup(d.videoOutputs, key) }

func lookup(m map[int]string, key int) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Default returns the minimal common descriptor used until the device
// announces its model.
func Default() *Descriptor { return defaultDescriptor }

// IsDefault reports whether d is the shared common descriptor.
func IsDefault(d *Descriptor) bool { return d == defaultDescriptor }

// ForModel returns the descriptor for a supported model.
func ForModel(model DeviceModel) (*Descriptor, error) {
	d, ok := deviceDescriptors[model]
	if !ok {
		return nil, &UnsupportedModelError{Model: string(model)}
	}
	return d, nil
}
