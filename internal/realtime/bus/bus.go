// Package bus fans realtime messages out to every service instance.
package bus

import (
	"context"

	"github.com/hphuyvu-stack/inclusing/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
