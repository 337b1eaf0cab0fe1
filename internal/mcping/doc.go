// Package mcping implements the Minecraft Java Edition Server List Ping
// protocol: the status handshake a vanilla client performs when it draws the
// multiplayer server list.
//
// # Protocol
//
// A status exchange is three packets over a plain TCP connection: a handshake
// (protocol version, address, next state = status), an empty status request,
// and a UTF-8 JSON status response. Packets are framed with VarInt length
// prefixes. An optional ping/pong round trip with an int64 token follows and
// gives a more honest latency figure than timing the status exchange.
//
// # Addresses
//
// Addresses accept an optional ":port" suffix (IPv6 literals in brackets).
// When there is no explicit port, the conventional _minecraft._tcp SRV record
// is consulted before falling back to the default port 25565.
//
// # Text Model
//
// The status description ("MOTD") arrives either as a bare string or as a
// chat component tree, both of which may embed legacy formatting codes
// ("§a", "§l", ...). Message normalizes the three forms; Spans flattens a
// message into styled runs for rendering and Plain strips styling entirely.
package mcping
