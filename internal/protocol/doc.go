// Package protocol implements the Lyngdorf text control protocol.
//
// Lyngdorf processors speak a line-oriented ASCII protocol over TCP
// (default port 84). Every line is terminated by a carriage return and
// starts with one of two marker characters:
//   - '!' for commands sent to the device and for unsolicited status
//     events sent by it
//   - '#' for echoes the device sends back to confirm a received command
//
// An event line has the shape
//
//	!NAME[?][(param1,param2,...)]["trailing string"]
//
// for example !VOL(-200), !SRC(2,"TV"), or !DEVICE(MP-60). Parameters
// may be double-quoted, in which case embedded commas are preserved
// verbatim. A trailing quoted string outside the parentheses is
// appended as an extra parameter.
//
// Parsing is stateless; lines that do not match the grammar are
// rejected rather than partially parsed.
package protocol
