// Package device maintains a stateful model of one Lyngdorf processor
// on top of a protocol session. Incoming status events update typed
// fields (volume in dB, option lists for sources, voicings, focus
// positions and audio modes, audio/video routing, channel trims), and a
// single coalesced notification callback tells the embedding
// application which field changed.
//
// Outgoing operations validate their input against known device bounds
// before formatting a wire command through the active descriptor;
// setting a named option that the device never announced is a silent
// no-op.
package device
