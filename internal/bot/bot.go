package bot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/internal/mcping"
	"github.com/craftwatch/craftwatch/internal/metrics"
	"github.com/craftwatch/craftwatch/internal/registry"
	"github.com/craftwatch/craftwatch/internal/render"
)

// Pinger queries a server's status. *mcping.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context, addr string) (*mcping.Status, error)
}

// Deps are the collaborators a Bot needs. Store, Pinger, and Renderer
// are required; Cache, Metrics, and Log may be nil.
type Deps struct {
	Store    *registry.Store
	Pinger   Pinger
	Cache    *mcping.StatusCache
	Renderer *render.Renderer
	Metrics  *metrics.Collector
	Log      *zap.Logger

	// Prefix is the command prefix, "/" when empty.
	Prefix string
}

// Bot handles chat commands.
type Bot struct {
	store    *registry.Store
	pinger   Pinger
	cache    *mcping.StatusCache
	renderer *render.Renderer
	metrics  *metrics.Collector
	log      *zap.Logger
	prefix   string
}

// New builds a Bot from its dependencies.
func New(deps Deps) *Bot {
	logger := deps.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := deps.Prefix
	if prefix == "" {
		prefix = "/"
	}
	return &Bot{
		store:    deps.Store,
		pinger:   deps.Pinger,
		cache:    deps.Cache,
		renderer: deps.Renderer,
		metrics:  deps.Metrics,
		log:      logger,
		prefix:   prefix,
	}
}

// Handle processes one chat message. It returns nil when the message is
// not a command addressed to the bot; otherwise it always returns a
// reply, mapping expected failures to friendly text.
func (b *Bot) Handle(ctx context.Context, msg *Message) *Reply {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, b.prefix) {
		return nil
	}
	fields := strings.Fields(text[len(b.prefix):])
	if len(fields) == 0 {
		return nil
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	reply, err := b.dispatch(ctx, command, args, msg)
	if err != nil {
		return b.errorReply(command, msg, err)
	}
	if reply != nil {
		b.metrics.ObserveCommand(command, "ok")
	}
	return reply
}

// dispatch routes a parsed command to its handler. Unknown commands
// that still look like ours get a hint; everything else is ignored.
func (b *Bot) dispatch(ctx context.Context, command string, args []string, msg *Message) (*Reply, error) {
	switch command {
	case "mchelp":
		return b.helpReply(), nil
	case "mc":
		return b.status(ctx, msg.GroupID, args)
	case "mcadd":
		return b.add(msg.GroupID, args)
	case "mcdel":
		return b.del(msg.GroupID, args)
	case "mcup":
		return b.update(msg.GroupID, args)
	case "mclist":
		return b.list(msg.GroupID, args)
	default:
		if strings.HasPrefix(command, "mc") {
			return nil, usagef("Unknown command %s%s. %smchelp lists what I understand.",
				b.prefix, command, b.prefix)
		}
		return nil, nil
	}
}

// usageError marks argument mistakes whose message goes straight back
// to the chat.
type usageError struct {
	text string
}

func (e *usageError) Error() string { return e.text }

func usagef(format string, args ...interface{}) error {
	return &usageError{text: fmt.Sprintf(format, args...)}
}

// errorReply converts a handler error into a chat reply. Expected
// failures become specific text; anything else is logged and answered
// generically.
func (b *Bot) errorReply(command string, msg *Message, err error) *Reply {
	var ue *usageError

	outcome := "rejected"
	var reply *Reply
	switch {
	case errors.As(err, &ue):
		reply = replyText("%s", ue.text)
	case errors.Is(err, registry.ErrNameTaken):
		reply = replyText("That name is already taken. %smcadd <name> <host> force replaces the saved entry.", b.prefix)
	case errors.Is(err, registry.ErrNotFound):
		reply = replyText("No saved server matches that name or id. %smclist shows what this group has.", b.prefix)
	case errors.Is(err, registry.ErrInvalidName):
		reply = replyText("Names are 1 to 32 characters with no spaces or slashes, and can't be all digits.")
	case errors.Is(err, registry.ErrInvalidHost):
		reply = replyText("That doesn't look like a server address. Use host, host:port, or an IP.")
	case errors.Is(err, registry.ErrNoChange):
		reply = replyText("Nothing to change. Give a new name, a new host, or both (\"-\" keeps a value).")
	default:
		b.log.Error("command failed",
			zap.String("command", command),
			zap.String("group", msg.GroupID),
			zap.String("sender", msg.Sender),
			zap.Error(err))
		b.metrics.ObserveCommand(command, "error")
		return replyText("Something went wrong handling that command.")
	}

	b.metrics.ObserveCommand(command, outcome)
	return reply
}

// shortReason condenses a ping failure for chat output.
func shortReason(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.As(err, &dnsErr):
		return "unknown host"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return "unreachable"
}
