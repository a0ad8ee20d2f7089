package descriptor

// Wire tables transcribed from the Lyngdorf external control manuals.
// MP-series surround processors and TDAI integrated amplifiers spell
// most commands differently; the common tables carry only what both
// families accept.

var commonCommands = map[CommandID]CommandDefinition{
	CmdVerbose:  DefParam("VERB(%d)"),
	CmdVolume:   DefParam("VOL(%d)"),
	CmdMuteOn:   Def("MUTEON"),
	CmdMuteOff:  Def("MUTEOFF"),
	CmdSource:   DefParam("SRC(%d)"),
	CmdPlay:     Def("PLAY"),
	CmdPrevious: Def("PREV"),
	CmdNext:     Def("NEXT"),
}

var mpCommands = merge(commonCommands, map[CommandID]CommandDefinition{
	CmdPowerOn:           Def("POWERONMAIN"),
	CmdPowerOff:          Def("POWEROFFMAIN"),
	CmdVolumeUp:          Def("VOL+"),
	CmdVolumeDown:        Def("VOL-"),
	CmdSourceButton:      Def("SRCBTN"),
	CmdSourceNext:        Def("SRC+"),
	CmdSourcePrev:        Def("SRC-"),
	CmdVoicing:           DefParam("RPVOI(%d)"),
	CmdVoicingNext:       Def("RPVOI+"),
	CmdVoicingPrev:       Def("RPVOI-"),
	CmdFocusPosition:     DefParam("RPFOC(%d)"),
	CmdFocusPositionNext: Def("RPFOC+"),
	CmdFocusPositionPrev: Def("RPFOC-"),
	CmdAudioModeButton:   Def("AUDIO"),
	CmdAudioMode:         DefParam("AUDMODE(%d)"),
	CmdAudioModeNext:     Def("AUDMODE+"),
	CmdAudioModePrev:     Def("AUDMODE-"),
	CmdLipsync:           DefParam("LIPSYNC(%d)"),
	CmdLipsyncUp:         Def("LIPSYNC+"),
	CmdLipsyncDown:       Def("LIPSYNC-"),
	CmdDTSDialogUp:       Def("DTSDIALOGUP"),
	CmdDTSDialogDown:     Def("DTSDIALOGDN"),
	CmdBassTrim:          DefParam("TRIMBASS(%d)"),
	CmdBassTrimUp:        Def("TRIMBASS+"),
	CmdBassTrimDown:      Def("TRIMBASS-"),
	CmdTrebleTrim:        DefParam("TRIMTREB(%d)"),
	CmdTrebleTrimUp:      Def("TRIMTREB+"),
	CmdTrebleTrimDown:    Def("TRIMTREB-"),
	CmdCenterTrim:        DefParam("TRIMCENTER(%d)"),
	CmdCenterTrimUp:      Def("TRIMCENTER+"),
	CmdCenterTrimDown:    Def("TRIMCENTER-"),
	CmdHeightsTrim:       DefParam("TRIMHEIGHT(%d)"),
	CmdHeightsTrimUp:     Def("TRIMHEIGHT+"),
	CmdHeightsTrimDown:   Def("TRIMHEIGHT-"),
	CmdLFETrim:           DefParam("TRIMLFE(%d)"),
	CmdLFETrimUp:         Def("TRIMLFE+"),
	CmdLFETrimDown:       Def("TRIMLFE-"),
	CmdSurroundsTrim:     DefParam("TRIMSURRS(%d)"),
	CmdSurroundsTrimUp:   Def("TRIMSURRS+"),
	CmdSurroundsTrimDown: Def("TRIMSURRS-"),
	CmdCursorUp:          Def("DIRU"),
	CmdCursorDown:        Def("DIRD"),
	CmdCursorLeft:        Def("DIRL"),
	CmdCursorRight:       Def("DIRR"),
	CmdCursorEnter:       Def("ENTER"),
	CmdDigit0:            Def("NUM(0)"),
	CmdDigit1:            Def("NUM(1)"),
	CmdDigit2:            Def("NUM(2)"),
	CmdDigit3:            Def("NUM(3)"),
	CmdDigit4:            Def("NUM(4)"),
	CmdDigit5:            Def("NUM(5)"),
	CmdDigit6:            Def("NUM(6)"),
	CmdDigit7:            Def("NUM(7)"),
	CmdDigit8:            Def("NUM(8)"),
	CmdDigit9:            Def("NUM(9)"),
	CmdMenu:              Def("MENU"),
	CmdInfo:              Def("INFO"),
	CmdSettings:          Def("SETUP"),
	CmdBack:              Def("BACK"),
})

var tdaiCommands = merge(commonCommands, map[CommandID]CommandDefinition{
	CmdPowerOn:           Def("ON"),
	CmdPowerOff:          Def("OFF"),
	CmdVolumeUp:          Def("VOLUP"),
	CmdVolumeDown:        Def("VOLDN"),
	CmdSourceNext:        Def("SRCUP"),
	CmdSourcePrev:        Def("SRCDN"),
	CmdVoicing:           DefParam("VOI(%d)"),
	CmdVoicingNext:       Def("VOIUP"),
	CmdVoicingPrev:       Def("VOIDN"),
	CmdFocusPosition:     DefParam("RP(%d)"),
	CmdFocusPositionNext: Def("RPUP"),
	CmdFocusPositionPrev: Def("RPDN"),
})

var commonQueries = []queryEntry{
	{QueryVerbose, "VERB?"},
	{QueryDevice, "DEVICE?"},
}

var mpQueries = append(commonQueries[:len(commonQueries):len(commonQueries)], []queryEntry{
	{QueryPower, "POWER?"},
	{QueryMaxVolume, "MAXVOL?"},
	{QueryVolume, "VOL?"},
	{QueryMute, "MUTE?"},
	{QuerySourceList, "SRCS?"},
	{QuerySource, "SRC?"},
	{QueryStreamType, "STREAMTYPE?"},
	{QueryVoicingList, "RPVOIS?"},
	{QueryVoicing, "RPVOI?"},
	{QueryFocusPositionList, "RPFOCS?"},
	{QueryFocusPosition, "RPFOC?"},
	{QueryAudioModeList, "AUDMODEL?"},
	{QueryAudioMode, "AUDMODE?"},
	{QueryAudioInput, "AUDIN?"},
	{QueryAudioType, "AUDTYPE?"},
	{QueryVideoInput, "VIDIN?"},
	{QueryVideoType, "VIDTYPE?"},
	{QueryVideoOutput, "HDMIMAINOUT?"},
	{QueryLipsyncRange, "LIPSYNCRANGE?"},
	{QueryLipsync, "LIPSYNC?"},
	{QueryDTSDialogAvailable, "DTSDIALOGAVAILABLE?"},
	{QueryDTSDialog, "DTSDIALOG?"},
	{QueryLoudness, "LOUDNESS?"},
	{QueryBassTrim, "TRIMBASS?"},
	{QueryTrebleTrim, "TRIMTREB?"},
	{QueryCenterTrim, "TRIMCENTER?"},
	{QueryHeightsTrim, "TRIMHEIGHT?"},
	{QueryLFETrim, "TRIMLFE?"},
	{QuerySurroundsTrim, "TRIMSURRS?"},
}...)

var tdaiQueries = append(commonQueries[:len(commonQueries):len(commonQueries)], []queryEntry{
	{QueryPower, "PWR?"},
	{QueryVolume, "VOL?"},
	{QueryMute, "MUTE?"},
	{QuerySourceList, "SRCLIST?"},
	{QuerySource, "SRCNAME?"},
	{QueryStreamType, "STREAMTYPE?"},
	{QueryAudioType, "AUDIOSTATUS?"},
	{QueryVoicingList, "VOILIST?"},
	{QueryVoicing, "VOINAME?"},
	{QueryFocusPositionList, "RPLIST?"},
	{QueryFocusPosition, "RPNAME?"},
}...)

// Entries mapping to "" are placeholders the device can report but that
// carry no displayable name.

var mpStreamTypes = map[int]string{
	0: "", 1: "vTuner", 2: "Spotify", 3: "AirPlay", 4: "UPnP",
	5: "Storage", 6: "Roon ready", 7: "TIDAL", 8: "airable",
	9: "Artist Connection", 10: "Qobuz",
}

var tdai1120StreamTypes = map[int]string{
	0: "", 1: "vTuner", 2: "Spotify", 3: "Airplay", 4: "uPnP",
	5: "USB File", 6: "Roon Ready", 7: "Bluetooth", 8: "GoogleCast",
	9: "TIDAL", 10: "airable", 11: "Qobuz",
}

var tdai3400StreamTypes = map[int]string{
	0: "", 1: "vTuner", 2: "Spotify", 3: "Airplay", 4: "uPnP",
	5: "USB File", 6: "Roon Ready", 7: "Bluetooth", 8: "TIDAL",
	9: "airable", 10: "Qobuz",
}

var mpAudioInputs = map[int]string{
	0:  "",
	1:  "HDMI",
	3:  "Spdif 1 (Opt.)",
	4:  "Spdif 2 (Opt.)",
	5:  "Spdif 3 (Opt.)",
	6:  "Spdif 4 (Opt.)",
	7:  "Spdif 5 (AES)",
	8:  "Spdif 6 (Coax)",
	9:  "Spdif 7 (Coax)",
	10: "Spdif 8 (Coax)",
	11: "Internal Player",
	12: "USB",
	20: "16-Channel (AES module)",
	21: "16-Channel 2.0 (AES module)",
	22: "16-Channel 5.1 (AES module)",
	23: "16-Channel 7.1 (AES module)",
	24: "Audio Return Channel",
	35: "vTuner",
	36: "TIDAL",
	37: "Spotify",
	38: "AirPlay",
	39: "Roon Ready",
	40: "DLNA",
	41: "Storage",
	42: "airable",
	43: "Artist Connection",
	44: "Qobuz",
}

var mpVideoInputs = map[int]string{
	0: "", 1: "HDMI 1", 2: "HDMI 2", 3: "HDMI 3", 4: "HDMI 4",
	5: "HDMI 5", 6: "HDMI 6", 7: "HDMI 7", 8: "HDMI 8", 9: "Internal",
}

var mpVideoOutputs = map[int]string{
	0: "", 1: "HDMI Out 1", 2: "HDMI Out 2", 3: "HDBT Out",
}

var defaultDescriptor = newDescriptor(commonCommands, commonQueries, nil, false, nil, nil, nil)

var mpDescriptor = newDescriptor(
	mpCommands, mpQueries, mpStreamTypes, true,
	mpAudioInputs, mpVideoInputs, mpVideoOutputs,
)

var deviceDescriptors = map[DeviceModel]*Descriptor{
	MP40:     mpDescriptor,
	MP50:     mpDescriptor,
	MP60:     mpDescriptor,
	TDAI1120: newDescriptor(tdaiCommands, tdaiQueries, tdai1120StreamTypes, false, nil, nil, nil),
	TDAI2210: newDescriptor(tdaiCommands, tdaiQueries, tdai1120StreamTypes, false, nil, nil, nil),
	TDAI3400: newDescriptor(tdaiCommands, tdaiQueries, tdai3400StreamTypes, false, nil, nil, nil),
}

func merge(base, overlay map[CommandID]CommandDefinition) map[CommandID]CommandDefinition {
	out := make(map[CommandID]CommandDefinition, len(base)+len(overlay))
	for id, def := range base {
		out[id] = def
	}
	for id, def := range overlay {
		out[id] = def
	}
	return out
}
