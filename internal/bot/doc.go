// Package bot turns chat messages into registry operations and status
// cards.
//
// A transport feeds each incoming Message to Bot.Handle and delivers
// the returned Reply, if any, back to the chat group. Handle recognizes
// these commands (with the configured prefix, "/" by default):
//
//	/mchelp                                command summary
//	/mc [name|id|host]                     status card(s)
//	/mcadd <name> <host> [force]           save a server
//	/mcdel <name|id>                       remove a server
//	/mcup <name|id> [new_name] [new_host]  rename or re-host
//	/mclist                                list saved servers
//
// Messages that are not commands produce a nil Reply. Expected problems
// (bad arguments, duplicate names, unknown servers, unreachable hosts)
// come back as friendly text replies; only genuinely unexpected
// failures are logged and answered with a generic apology.
package bot
