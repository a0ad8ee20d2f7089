package descriptor

import (
	"errors"
	"testing"
)

func TestCommandDefinitionFormat(t *testing.T) {
	tests := []struct {
		name    string
		def     CommandDefinition
		args    []int
		want    string
		wantErr bool
	}{
		{"parameterless", Def("MUTEON"), nil, "MUTEON", false},
		{"with parameter", DefParam("VOL(%d)"), []int{-200}, "VOL(-200)", false},
		{"missing required argument", DefParam("VOL(%d)"), nil, "", true},
		{"unexpected argument", Def("MUTEON"), []int{1}, "", true},
		{"too many arguments", DefParam("VOL(%d)"), []int{1, 2}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.def.Format(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForModel(t *testing.T) {
	for _, model := range []DeviceModel{MP40, MP50, MP60, TDAI1120, TDAI2210, TDAI3400} {
		if _, err := ForModel(model); err != nil {
			t.Errorf("ForModel(%s) unexpected error: %v", model, err)
		}
	}

	_, err := ForModel("CD-1")
	var unsupported *UnsupportedModelError
	if !errors.As(err, &unsupported) {
		t.Fatalf("ForModel(CD-1) error = %v, want UnsupportedModelError", err)
	}
	if unsupported.Model != "CD-1" {
		t.Errorf("UnsupportedModelError.Model = %q, want %q", unsupported.Model, "CD-1")
	}
}

func TestModelByName(t *testing.T) {
	if m, ok := ModelByName("mp-60"); !ok || m != MP60 {
		t.Errorf("ModelByName(mp-60) = %v, %v", m, ok)
	}
	if _, ok := ModelByName("CD-1"); ok {
		t.Error("ModelByName(CD-1) should not resolve")
	}
}

func TestFamilyCommandSpellings(t *testing.T) {
	mp, _ := ForModel(MP60)
	tdai, _ := ForModel(TDAI3400)

	mpOn, err := mp.Command(CmdPowerOn)
	if err != nil {
		t.Fatal(err)
	}
	tdaiOn, err := tdai.Command(CmdPowerOn)
	if err != nil {
		t.Fatal(err)
	}

	mpWire, _ := mpOn.Format()
	tdaiWire, _ := tdaiOn.Format()
	if mpWire != "POWERONMAIN" || tdaiWire != "ON" {
		t.Errorf("power-on spellings = %q / %q, want POWERONMAIN / ON", mpWire, tdaiWire)
	}

	// The common descriptor knows no power commands at all.
	if _, err := Default().Command(CmdPowerOn); err == nil {
		t.Error("default descriptor should not know POWER_ON")
	}
}

func TestQueriesOrderStartsWithVerbose(t *testing.T) {
	for _, d := range []*Descriptor{Default(), mpDescriptor} {
		qs := d.Queries()
		if len(qs) < 2 || qs[0] != "VERB?" || qs[1] != "DEVICE?" {
			t.Errorf("Queries() = %v, want VERB? then DEVICE? first", qs[:2])
		}
	}
}

func TestEnumerationLookups(t *testing.T) {
	mp, _ := ForModel(MP60)

	if v, ok := mp.StreamType(6); !ok || v != "Roon ready" {
		t.Errorf("StreamType(6) = %q, %v", v, ok)
	}
	if _, ok := mp.StreamType(0); ok {
		t.Error("StreamType(0) is a blank placeholder, want ok=false")
	}
	if _, ok := mp.StreamType(99); ok {
		t.Error("StreamType(99) unknown, want ok=false")
	}
	if v, ok := mp.VideoOutput(3); !ok || v != "HDBT Out" {
		t.Errorf("VideoOutput(3) = %q, %v", v, ok)
	}

	tdai, _ := ForModel(TDAI1120)
	if v, ok := tdai.StreamType(8); !ok || v != "GoogleCast" {
		t.Errorf("TDAI-1120 StreamType(8) = %q, %v", v, ok)
	}
	if tdai.Multichannel() {
		t.Error("TDAI descriptors must not be multichannel")
	}
	if !mp.Multichannel() {
		t.Error("MP descriptors must be multichannel")
	}
}

func TestCommandIDRoundTrip(t *testing.T) {
	id, ok := CommandIDByName("volume_up")
	if !ok || id != CmdVolumeUp {
		t.Fatalf("CommandIDByName(volume_up) = %v, %v", id, ok)
	}
	if id.String() != "VOLUME_UP" {
		t.Errorf("String() = %q", id.String())
	}
}
