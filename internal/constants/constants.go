// Package constants defines the constants used across the application.
package constants

import (
	"log/slog"
	"time"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "uspacy-update"

	// WebhookTokenEnv is the environment variable consulted when the webhook token flag is not set.
	WebhookTokenEnv = "USPACY_WEBHOOK_TOKEN"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultRequestTimeout bounds every outbound HTTP call.
	DefaultRequestTimeout = 30 * time.Second

	// WebhookRunPath is the incoming-webhook prefix all API paths hang off of.
	WebhookRunPath = "/company/v1/incoming_webhooks/run"

	// SearchPageSize caps how many candidate entities a search request returns.
	SearchPageSize = 20
)
