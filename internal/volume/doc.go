// Package volume converts between the Lyngdorf native volume scale
// (decibels, -99.9 dB up to the device-reported maximum) and the
// normalized 0..1 scale used by UI sliders.
//
// The mapping is logarithmic with a curve exponent (alpha) that flattens
// the low end so the usable part of the range occupies most of the
// slider. Alpha is derived from the device's maximum volume alone, so
// the curve adapts when the device reports a new MAXVOL.
package volume
