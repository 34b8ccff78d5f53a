// Package export renders usage reports to external formats.
package export

import (
	"context"
	"time"

	"github.com/goodtune/screenpulse/internal/usage"
)

// Sink writes a finished report somewhere. Implementations are
// one-shot; a second Write produces a second document.
type Sink interface {
	Write(ctx context.Context, title string, generatedAt time.Time, rows []usage.ReportRow) error
}
