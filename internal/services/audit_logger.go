package services

import (
	"context"
	"log/slog"
	"time"

	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"

	"github.com/google/uuid"
)

type contextKey string

// CorrelationIDKey carries the request trace ID into service calls.
const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID returns a context tagged with the request trace ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// AuditLogger writes bulk-data events to the structured log and, when a
// repository is configured, to the audit_logs table.
type AuditLogger struct {
	logger *slog.Logger
	repo   repositories.AuditLogRepositoryInterface
}

func NewAuditLogger(logger *slog.Logger, repo repositories.AuditLogRepositoryInterface) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger,
		repo:   repo,
	}
}

func (al *AuditLogger) LogTransactionsImported(ctx context.Context, userID uuid.UUID, format string, successCount, errorCount int, durationMs int64) {
	al.logger.InfoContext(ctx, "transactions imported",
		slog.String("event_type", models.AuditActionTransactionsImport),
		slog.String("user_id", userID.String()),
		slog.String("format", format),
		slog.Int("success_count", successCount),
		slog.Int("error_count", errorCount),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)

	al.persist(ctx, userID, models.AuditActionTransactionsImport, "transactions", "", map[string]interface{}{
		"format":        format,
		"success_count": successCount,
		"error_count":   errorCount,
		"duration_ms":   durationMs,
	})
}

func (al *AuditLogger) LogImportRejected(ctx context.Context, userID uuid.UUID, format, reason string) {
	al.logger.WarnContext(ctx, "import rejected",
		slog.String("event_type", "import_rejected"),
		slog.String("user_id", userID.String()),
		slog.String("format", format),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransactionsCleared(ctx context.Context, userID uuid.UUID, deleted int64) {
	al.logger.InfoContext(ctx, "transactions cleared",
		slog.String("event_type", models.AuditActionTransactionsCleared),
		slog.String("user_id", userID.String()),
		slog.Int64("deleted", deleted),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)

	al.persist(ctx, userID, models.AuditActionTransactionsCleared, "transactions", "", map[string]interface{}{
		"deleted": deleted,
	})
}

func (al *AuditLogger) LogDemoSeeded(ctx context.Context, userID uuid.UUID, created int) {
	al.logger.InfoContext(ctx, "demo data seeded",
		slog.String("event_type", models.AuditActionDemoSeeded),
		slog.String("user_id", userID.String()),
		slog.Int("created", created),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)

	al.persist(ctx, userID, models.AuditActionDemoSeeded, "transactions", "", map[string]interface{}{
		"created": created,
	})
}

func (al *AuditLogger) LogBudgetConfigured(ctx context.Context, userID uuid.UUID, subscriptions int) {
	al.logger.InfoContext(ctx, "budget configured",
		slog.String("event_type", models.AuditActionBudgetConfigured),
		slog.String("user_id", userID.String()),
		slog.Int("subscriptions", subscriptions),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)

	al.persist(ctx, userID, models.AuditActionBudgetConfigured, "budget_profile", userID.String(), map[string]interface{}{
		"subscriptions": subscriptions,
	})
}

func (al *AuditLogger) LogGoalCompleted(ctx context.Context, userID, goalID uuid.UUID, name string) {
	al.logger.InfoContext(ctx, "goal completed",
		slog.String("event_type", models.AuditActionGoalCompleted),
		slog.String("user_id", userID.String()),
		slog.String("goal_id", goalID.String()),
		slog.String("goal_name", name),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)

	al.persist(ctx, userID, models.AuditActionGoalCompleted, "goal", goalID.String(), map[string]interface{}{
		"name": name,
	})
}

// persist stores the event; failures are logged and never reach the caller.
func (al *AuditLogger) persist(ctx context.Context, userID uuid.UUID, action, resource, resourceID string, metadata map[string]interface{}) {
	if al.repo == nil {
		return
	}

	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   models.JSONMap(metadata),
	}
	if id := getCorrelationID(ctx); id != "" {
		entry.SetMetadata("correlation_id", id)
	}

	if err := al.repo.Create(ctx, entry); err != nil {
		al.logger.WarnContext(ctx, "failed to persist audit event",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return correlationID
	}

	return ""
}
