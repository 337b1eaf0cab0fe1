package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/internal/bot"
)

// Stdio runs the bot over a line-delimited JSON pipe.
type Stdio struct {
	Bot *bot.Bot
	Log *zap.Logger

	// In and Out default to os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer
}

// NewStdio builds a stdio transport bound to the process pipes.
func NewStdio(b *bot.Bot, log *zap.Logger) *Stdio {
	return &Stdio{Bot: b, Log: log, In: os.Stdin, Out: os.Stdout}
}

// Run reads messages until EOF or context cancellation. Malformed lines
// are logged and skipped; only transport-level failures end the loop.
func (s *Stdio) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.In)
	// Increase buffer size for large messages.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.Out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg bot.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.Log.Warn("failed to parse message", zap.Error(err))
			continue
		}

		reply := s.Bot.Handle(ctx, &msg)
		if reply == nil {
			continue
		}
		if err := encoder.Encode(newEnvelope(&msg, reply)); err != nil {
			s.Log.Error("failed to encode reply", zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}
