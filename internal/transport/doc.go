// Package transport owns the datagram exchange with an SSRP browser.
//
// Ownership boundary:
// - udp socket lifecycle and receive deadlines
// - circuit breaking per browser target
//
// One call sends one datagram and returns one datagram. Reassembly and
// retries are not performed here.
package transport
