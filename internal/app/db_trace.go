package app

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
	"go.mongodb.org/mongo-driver/v2/event"
)

const maxTracedStatementLength = 512

var statementWhitespaceRegex = regexp.MustCompile(`\s+`)

// formatStatementForTrace flattens a SQL query or a rendered mongo command
// onto one line and caps its length without splitting a UTF-8 sequence.
func formatStatementForTrace(statement string) string {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return statement
	}

	normalized := statementWhitespaceRegex.ReplaceAllString(statement, " ")
	if len(normalized) <= maxTracedStatementLength {
		return normalized
	}

	cut := maxTracedStatementLength
	for cut > 0 && !utf8.RuneStart(normalized[cut]) {
		cut--
	}
	return normalized[:cut] + "..."
}

// commandLogMonitor writes each mongo command at debug level, correlated
// with the request span through ctx.
func commandLogMonitor(logger *logging.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if !logger.Enabled(logging.LevelDebug) {
				return
			}
			logger.DebugContext(ctx, "mongo command",
				"command", evt.CommandName,
				"database", evt.DatabaseName,
				"request_id", evt.RequestID,
				"statement", formatStatementForTrace(evt.Command.String()),
			)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			logger.WarnContext(ctx, "mongo command failed",
				"command", evt.CommandName,
				"request_id", evt.RequestID,
				"duration", evt.Duration,
			)
		},
	}
}

// chainCommandMonitors fans driver events out to every non-nil monitor in
// order. The driver accepts a single monitor per client.
func chainCommandMonitors(monitors ...*event.CommandMonitor) *event.CommandMonitor {
	active := make([]*event.CommandMonitor, 0, len(monitors))
	for _, m := range monitors {
		if m != nil {
			active = append(active, m)
		}
	}

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			for _, m := range active {
				if m.Started != nil {
					m.Started(ctx, evt)
				}
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			for _, m := range active {
				if m.Succeeded != nil {
					m.Succeeded(ctx, evt)
				}
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			for _, m := range active {
				if m.Failed != nil {
					m.Failed(ctx, evt)
				}
			}
		},
	}
}
