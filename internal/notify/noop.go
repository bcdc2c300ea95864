package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// NoopClient logs instead of sending. Used when no push provider is configured.
type NoopClient struct {
	log logrus.FieldLogger
}

func NewNoopClient(log logrus.FieldLogger) *NoopClient {
	return &NoopClient{log: log}
}

func (c *NoopClient) Send(_ context.Context, token string, msg Message) error {
	c.log.WithFields(logrus.Fields{
		"token_suffix": suffix(token),
		"title":        msg.Title,
	}).Debug("push skipped, noop provider")
	return nil
}
