// Package server connects the bot to the outside world.
//
// Two transports are provided and selected by configuration:
//
// # Stdio
//
// Stdio reads one JSON-encoded chat message per line from stdin and
// writes one JSON reply envelope per handled command to stdout. It is
// meant for chat adapters that spawn the daemon as a child process and
// speak line-delimited JSON over the pipe:
//
//	{"id":"m1","group_id":"g42","sender":"alice","text":"/mc lobby"}
//
// Lines that fail to parse are logged and skipped so one malformed
// message cannot wedge the pipe.
//
// # HTTP
//
// HTTP accepts the same message shape as a JSON body on
// POST /api/v1/message and answers with the reply envelope, or 204 when
// the message is not a bot command. A bearer token can be required.
// GET /healthz reports process health and GET /metrics exposes the
// Prometheus registry.
//
// # Envelopes
//
// Replies are wrapped in an Envelope carrying a fresh id and the id of
// the message being answered, so adapters can correlate asynchronous
// deliveries.
package server
