package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/internal/mcping"
	"github.com/craftwatch/craftwatch/internal/registry"
)

// === Status Commands ===

func (b *Bot) status(ctx context.Context, group string, args []string) (*Reply, error) {
	switch len(args) {
	case 0:
		return b.statusAll(ctx, group)
	case 1:
		return b.statusOne(ctx, group, args[0])
	default:
		return nil, usagef("Usage: %smc [name|id|host]", b.prefix)
	}
}

// statusOne answers for a single server. The key is resolved against the
// group registry first; a key that matches nothing but parses as an
// address is pinged directly without being saved.
func (b *Bot) statusOne(ctx context.Context, group, key string) (*Reply, error) {
	rec, err := b.store.Resolve(group, key)
	switch {
	case err == nil:
		return &Reply{Segments: []Segment{b.statusRecord(ctx, group, rec)}}, nil
	case errors.Is(err, registry.ErrNotFound):
		if _, aerr := mcping.ParseAddr(key); aerr != nil {
			return nil, err
		}
		st, perr := b.pingHost(ctx, key)
		if perr != nil {
			return replyText("%s did not answer: %s.", key, shortReason(perr)), nil
		}
		return &Reply{Segments: []Segment{b.cardOrSummary(st, key)}}, nil
	default:
		return nil, err
	}
}

func (b *Bot) statusAll(ctx context.Context, group string) (*Reply, error) {
	recs, err := b.store.List(group)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return b.emptyHint(), nil
	}
	reply := &Reply{Segments: make([]Segment, 0, len(recs))}
	for _, rec := range recs {
		reply.Segments = append(reply.Segments, b.statusRecord(ctx, group, rec))
	}
	return reply, nil
}

// statusRecord pings a saved server, keeps its reachability bookkeeping
// current, and produces one reply segment.
func (b *Bot) statusRecord(ctx context.Context, group string, rec *registry.Record) Segment {
	st, err := b.pingHost(ctx, rec.Host)
	if perr := b.store.RecordPing(group, rec.ID, err == nil, time.Now()); perr != nil {
		b.log.Warn("failed to record ping outcome",
			zap.String("group", group),
			zap.String("id", rec.ID),
			zap.Error(perr))
	}
	if err != nil {
		return TextSegment(fmt.Sprintf("%s (%s) did not answer: %s.", rec.Name, rec.Host, shortReason(err)))
	}
	return b.cardOrSummary(st, rec.Name)
}

// === Registry Commands ===

func (b *Bot) add(group string, args []string) (*Reply, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, usagef("Usage: %smcadd <name> <host> [force]", b.prefix)
	}
	force := false
	if len(args) == 3 {
		if !strings.EqualFold(args[2], "force") {
			return nil, usagef("Usage: %smcadd <name> <host> [force]", b.prefix)
		}
		force = true
	}
	rec, err := b.store.Add(group, args[0], args[1], force)
	if err != nil {
		return nil, err
	}
	return replyText("Saved %s (id %s) -> %s", rec.Name, rec.ID, rec.Host), nil
}

func (b *Bot) del(group string, args []string) (*Reply, error) {
	if len(args) != 1 {
		return nil, usagef("Usage: %smcdel <name|id>", b.prefix)
	}
	rec, err := b.store.Delete(group, args[0])
	if err != nil {
		return nil, err
	}
	return replyText("Removed %s (id %s).", rec.Name, rec.ID), nil
}

func (b *Bot) update(group string, args []string) (*Reply, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, usagef("Usage: %smcup <name|id> [new_name] [new_host]", b.prefix)
	}
	newHost := ""
	if len(args) == 3 {
		newHost = args[2]
	}
	rec, err := b.store.Update(group, args[0], args[1], newHost)
	if err != nil {
		return nil, err
	}
	return replyText("Updated: %s. %s -> %s", rec.ID, rec.Name, rec.Host), nil
}

func (b *Bot) list(group string, args []string) (*Reply, error) {
	if len(args) != 0 {
		return nil, usagef("Usage: %smclist", b.prefix)
	}
	recs, err := b.store.List(group)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return b.emptyHint(), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved servers (%d):", len(recs))
	for _, r := range recs {
		fmt.Fprintf(&sb, "\n%s. %s %s", r.ID, r.Name, r.Host)
		if r.FailedCount > 0 {
			fmt.Fprintf(&sb, " [%d failed]", r.FailedCount)
		}
		if r.LastSuccessTime != nil {
			fmt.Fprintf(&sb, ", last seen %s", r.LastSuccessTime.Format("2006-01-02 15:04"))
		}
	}
	return replyText("%s", sb.String()), nil
}

func (b *Bot) helpReply() *Reply {
	p := b.prefix
	return replyText(`Minecraft server status commands:
%[1]smc - status cards for every saved server
%[1]smc <name|id|host> - status for one server or address
%[1]smcadd <name> <host> [force] - save a server under a name
%[1]smcdel <name|id> - remove a saved server
%[1]smcup <name|id> [new_name] [new_host] - rename or re-host ("-" keeps a value)
%[1]smclist - list this group's saved servers
%[1]smchelp - this message`, p)
}

func (b *Bot) emptyHint() *Reply {
	return replyText("No servers saved yet. %smcadd <name> <host> saves one.", b.prefix)
}

// === Helpers ===

// pingHost answers from the status cache when it can and records cache
// and ping metrics either way.
func (b *Bot) pingHost(ctx context.Context, host string) (*mcping.Status, error) {
	if b.cache != nil {
		if st, ok := b.cache.Get(host); ok {
			b.metrics.ObserveCacheHit()
			return st, nil
		}
		b.metrics.ObserveCacheMiss()
	}
	start := time.Now()
	st, err := b.pinger.Ping(ctx, host)
	b.metrics.ObservePing(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		b.cache.Put(host, st)
	}
	return st, nil
}

// cardOrSummary renders the status card, degrading to a one-line text
// summary if drawing fails.
func (b *Bot) cardOrSummary(st *mcping.Status, title string) Segment {
	start := time.Now()
	res, err := b.renderer.Card(st, title)
	if err != nil {
		b.log.Error("failed to render status card", zap.String("title", title), zap.Error(err))
		return TextSegment(summaryLine(st, title))
	}
	b.metrics.ObserveRender(time.Since(start))
	return ImageSegment(res)
}

func summaryLine(st *mcping.Status, title string) string {
	version := st.Version.Name
	if version == "" {
		version = "unknown version"
	}
	return fmt.Sprintf("%s: %d/%d online, %s, %dms",
		title, st.Players.Online, st.Players.Max, version, st.Latency.Milliseconds())
}
