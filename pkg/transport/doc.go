// Package transport defines the byte-stream transport interfaces used by the
// link manager and provides implementations (tcp, quic, ws, winpipe, mem).
//
// Key concepts:
//   - Transport: creates Sockets bound to a peer's service identity and
//     listens for inbound Conns of a specific Kind.
//   - Socket: an outbound endpoint. Creating one never blocks; Connect blocks
//     until the stream is established; Close unblocks a pending Connect, Read
//     or Write with an error. Close is the only way to abort a hung Connect.
//   - Conn: an established, reliable, in-order byte stream.
package transport
