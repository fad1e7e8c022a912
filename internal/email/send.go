package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 5 * time.Second

// SendAsync delivers message in the background. The send outlives the
// caller's request but is bounded by its own timeout.
func SendAsync(ctx context.Context, sender EmailSender, recipient string, message Message, logger *zerolog.Logger) {
	if sender == nil {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || message.Subject == "" || message.Body == "" {
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, sendTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("subject", message.Subject).Msg("Failed to send email")
		}
	}()
}

// SendAll delivers message to each recipient in turn and returns how many
// sends succeeded. Failures are logged and do not stop the batch.
func SendAll(ctx context.Context, sender EmailSender, recipients []string, message Message, logger *zerolog.Logger) int {
	if sender == nil {
		return 0
	}

	sent := 0
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := sender.Send(sendCtx, recipient, message.Subject, message.Body)
		cancel()
		if err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("subject", message.Subject).Msg("Failed to send email")
			}
			continue
		}
		sent++
	}
	return sent
}
