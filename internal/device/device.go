package device

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jsoutter/golyngdorf/internal/descriptor"
	"github.com/jsoutter/golyngdorf/internal/logging"
	"github.com/jsoutter/golyngdorf/internal/session"
	"github.com/jsoutter/golyngdorf/internal/volume"
)

// Trim and lipsync bounds, in dB and milliseconds.
const (
	TrimRangeBassTreble = 12.0
	TrimRangeChannel    = 10.0
	DefaultMinLipsync   = 0
	DefaultMaxLipsync   = 500
)

// Session is the protocol-session surface the device model needs. It is
// satisfied by *session.Session; tests substitute a fake.
type Session interface {
	Connect(ctx context.Context) error
	Disconnect()
	Healthy() bool
	State() session.State
	Host() string
	RegisterCallback(event string, fn session.EventFunc)
	SendCommand(ctx context.Context, command string, skipConfirmation bool) error
	Descriptor() *descriptor.Descriptor
	SetDescriptor(desc *descriptor.Descriptor)
}

// NotifyFunc receives the field that changed, identified by its status
// query. List-completion notifications use the list query identifiers.
type NotifyFunc func(change descriptor.QueryID)

// State is a point-in-time snapshot of every device field. Pointer
// fields are nil until the device has reported a value.
type State struct {
	Model        descriptor.DeviceModel
	Multichannel bool

	Power       *bool
	Volume      *float64 // dB
	VolumeLevel *float64 // normalized 0..1
	Muted       *bool
	MaxVolume   float64 // dB

	Sources    []string
	Source     *string
	StreamType *string

	Voicings       []string
	Voicing        *string
	FocusPositions []string
	FocusPosition  *string

	AudioModes  []string
	AudioMode   *string
	AudioInput  *string
	AudioType   *string
	VideoInput  *string
	VideoType   *string
	VideoOutput *string

	MinLipsync         int
	MaxLipsync         int
	Lipsync            *int
	DTSDialogAvailable *bool
	DTSDialog          *float64
	Loudness           *bool

	BassTrim      *float64
	TrebleTrim    *float64
	CenterTrim    *float64
	HeightsTrim   *float64
	LFETrim       *float64
	SurroundsTrim *float64
}

// Device is the stateful model of one processor.
type Device struct {
	sess Session
	log  *zap.Logger

	mu     sync.Mutex
	notify NotifyFunc

	model descriptor.DeviceModel

	power       *bool
	volumeDB    *float64
	volumeLevel *float64
	muted       *bool
	maxVolume   float64
	alpha       float64

	sources    *OptionList
	source     *string
	streamType *string

	voicings       *OptionList
	voicing        *string
	focusPositions *OptionList
	focusPosition  *string

	audioModes  *OptionList
	audioMode   *string
	audioInput  *string
	audioType   *string
	videoInput  *string
	videoType   *string
	videoOutput *string

	minLipsync         int
	maxLipsync         int
	lipsync            *int
	dtsDialogAvailable *bool
	dtsDialog          *float64
	loudness           *bool

	bassTrim      *float64
	trebleTrim    *float64
	centerTrim    *float64
	heightsTrim   *float64
	lfeTrim       *float64
	surroundsTrim *float64
}

// New builds a device model on top of a session and registers its event
// handlers. The session still has to be connected by the caller.
func New(sess Session) *Device {
	d := &Device{
		sess:           sess,
		log:            logging.GetLogger().With(zap.String("host", sess.Host())),
		maxVolume:      volume.DefaultMaxDB,
		alpha:          volume.ComputeAlpha(volume.DefaultMaxDB),
		sources:        NewOptionList(),
		voicings:       NewOptionList(),
		focusPositions: NewOptionList(),
		audioModes:     NewOptionList(),
		minLipsync:     DefaultMinLipsync,
		maxLipsync:     DefaultMaxLipsync,
	}
	d.registerHandlers()
	return d
}

// SelectModel activates the descriptor for a known model up front,
// instead of waiting for the device to announce itself.
func (d *Device) SelectModel(model descriptor.DeviceModel) error {
	desc, err := descriptor.ForModel(model)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.model = model
	d.mu.Unlock()
	d.sess.SetDescriptor(desc)
	return nil
}

// Connect brings the underlying session up.
func (d *Device) Connect(ctx context.Context) error {
	return d.sess.Connect(ctx)
}

// Disconnect tears the underlying session down.
func (d *Device) Disconnect() {
	d.sess.Disconnect()
}

// Available reports whether the device connection is currently healthy.
func (d *Device) Available() bool {
	return d.sess.Healthy()
}

// ConnectionState returns the underlying session state.
func (d *Device) ConnectionState() session.State {
	return d.sess.State()
}

// Host returns the device host.
func (d *Device) Host() string {
	return d.sess.Host()
}

// Multichannel reports whether the active descriptor decodes
// surround-processor fields.
func (d *Device) Multichannel() bool {
	return d.sess.Descriptor().Multichannel()
}

// SetNotificationCallback installs the single change callback. Pass nil
// to unsubscribe. The callback runs on the session's dispatch goroutine
// and must not block.
func (d *Device) SetNotificationCallback(fn NotifyFunc) {
	d.mu.Lock()
	d.notify = fn
	d.mu.Unlock()
}

// State returns a snapshot of every field.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Model:        d.model,
		Multichannel: d.sess.Descriptor().Multichannel(),

		Power:       copyBool(d.power),
		Volume:      copyFloat(d.volumeDB),
		VolumeLevel: copyFloat(d.volumeLevel),
		Muted:       copyBool(d.muted),
		MaxVolume:   d.maxVolume,

		Sources:    d.sources.All(),
		Source:     copyString(d.source),
		StreamType: copyString(d.streamType),

		Voicings:       d.voicings.All(),
		Voicing:        copyString(d.voicing),
		FocusPositions: d.focusPositions.All(),
		FocusPosition:  copyString(d.focusPosition),

		AudioModes:  d.audioModes.All(),
		AudioMode:   copyString(d.audioMode),
		AudioInput:  copyString(d.audioInput),
		AudioType:   copyString(d.audioType),
		VideoInput:  copyString(d.videoInput),
		VideoType:   copyString(d.videoType),
		VideoOutput: copyString(d.videoOutput),

		MinLipsync:         d.minLipsync,
		MaxLipsync:         d.maxLipsync,
		Lipsync:            copyInt(d.lipsync),
		DTSDialogAvailable: copyBool(d.dtsDialogAvailable),
		DTSDialog:          copyFloat(d.dtsDialog),
		Loudness:           copyBool(d.loudness),

		BassTrim:      copyFloat(d.bassTrim),
		TrebleTrim:    copyFloat(d.trebleTrim),
		CenterTrim:    copyFloat(d.centerTrim),
		HeightsTrim:   copyFloat(d.heightsTrim),
		LFETrim:       copyFloat(d.lfeTrim),
		SurroundsTrim: copyFloat(d.surroundsTrim),
	}
}

// runNotify invokes the notification callback for each change. Callers
// must not hold d.mu.
func (d *Device) runNotify(changes ...descriptor.QueryID) {
	d.mu.Lock()
	notify := d.notify
	d.mu.Unlock()
	if notify == nil {
		return
	}
	for _, change := range changes {
		notify(change)
	}
}

// dbToLinear converts using the current curve. Callers hold d.mu.
func (d *Device) dbToLinear(db float64) float64 {
	return volume.DBToLinear(db, d.maxVolume, d.alpha)
}

// linearToDB converts using the current curve. Callers hold d.mu.
func (d *Device) linearToDB(level float64) float64 {
	return volume.LinearToDB(level, d.maxVolume, d.alpha)
}

func (d *Device) computeAlpha(maxDB float64) float64 {
	return volume.ComputeAlpha(maxDB)
}

func copyBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
