// Package descriptor holds the static per-model protocol tables for
// Lyngdorf processors.
//
// A Descriptor maps abstract command and query identifiers to their
// wire strings for one device family, together with the enumeration
// tables (stream types, audio/video inputs, video outputs) needed to
// decode numeric status parameters. MP-series processors and TDAI
// amplifiers share a common core but differ in most command spellings,
// so each family gets its own tables; a minimal common descriptor is
// used until the device announces its model.
//
// Descriptors are immutable after package init and safe to share
// between sessions.
package descriptor
