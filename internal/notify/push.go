package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is a push payload. Data values are strings, as push providers require.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Client delivers a message to one device token.
type Client interface {
	Send(ctx context.Context, token string, msg Message) error
}

type Result struct {
	Attempted int
	Succeeded int
}

// Any reports whether at least one token received the message.
func (r Result) Any() bool { return r.Succeeded > 0 }

// Gateway fans a message out to tokens one by one; a failed token never stops the batch.
type Gateway struct {
	client Client
	log    logrus.FieldLogger
}

func NewGateway(client Client, log logrus.FieldLogger) *Gateway {
	return &Gateway{client: client, log: log}
}

func (g *Gateway) Send(ctx context.Context, msg Message, tokens []string) Result {
	var res Result
	for _, tok := range dedupe(tokens) {
		res.Attempted++
		if err := g.client.Send(ctx, tok, msg); err != nil {
			g.log.WithError(err).
				WithField("token_suffix", suffix(tok)).
				Warn("push delivery failed")
			continue
		}
		res.Succeeded++
	}
	return res
}

// suffix keeps device tokens out of logs while still telling them apart.
func suffix(tok string) string {
	if len(tok) <= 6 {
		return tok
	}
	return "..." + tok[len(tok)-6:]
}
