package logging

import (
	"os"

	"github.com/arloliu/shapley/types"
)

// NopLogger implements a no-op logger that discards all messages.
//
// Used as the default when no logger is injected, so components never need
// nil checks before logging.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message but still exits, preserving Fatal semantics.
func (n *NopLogger) Fatal(_ string, _ ...any) {
	os.Exit(1) //nolint:revive // Fatal should exit the program
}
