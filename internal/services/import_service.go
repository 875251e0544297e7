package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
)

type importService struct {
	transactions TransactionServiceInterface
	ofx          *OFXImporter
	policy       ImportPolicy
	audit        AuditLoggerInterface
	metrics      MetricsRecorderInterface
	logger       *slog.Logger

	locks userLocks
}

// userLocks allows one import at a time per user. An entry lives only while
// an import holds or waits for it.
type userLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID uuid.UUID) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[uuid.UUID]*userLock)
	}
	entry, ok := l.entries[userID]
	if !ok {
		entry = &userLock{}
		l.entries[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// NewImportService creates the statement import service.
func NewImportService(
	transactions TransactionServiceInterface,
	categories CategoryServiceInterface,
	audit AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) ImportServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &importService{
		transactions: transactions,
		ofx:          NewOFXImporter(categories, logger),
		policy:       DefaultImportPolicy(),
		audit:        audit,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *importService) ImportCSV(ctx context.Context, userID uuid.UUID, content string) (*models.ImportResult, error) {
	return s.run(ctx, userID, models.ImportFormatCSV, func() (*models.ImportResult, error) {
		return ParseTransactionsCSV(content, s.policy)
	})
}

func (s *importService) ImportOFX(ctx context.Context, userID uuid.UUID, content []byte) (*models.ImportResult, error) {
	return s.run(ctx, userID, models.ImportFormatOFX, func() (*models.ImportResult, error) {
		return s.ofx.Parse(content)
	})
}

// ImportFile picks the parser from the file extension, falling back to
// sniffing the content for an OFX header.
func (s *importService) ImportFile(ctx context.Context, userID uuid.UUID, filename string, content []byte) (*models.ImportResult, error) {
	switch DetectImportFormat(filename, content) {
	case models.ImportFormatCSV:
		return s.ImportCSV(ctx, userID, string(content))
	case models.ImportFormatOFX:
		return s.ImportOFX(ctx, userID, content)
	default:
		if s.audit != nil {
			s.audit.LogImportRejected(ctx, userID, filepath.Ext(filename), ErrUnsupportedFormat.Error())
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DetectImportFormat returns the import format for a file, or "" when none fits.
func DetectImportFormat(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return models.ImportFormatCSV
	case ".ofx", ".qfx":
		return models.ImportFormatOFX
	case "", ".txt":
		if LooksLikeOFX(content) {
			return models.ImportFormatOFX
		}
		if filepath.Ext(filename) == "" && len(content) > 0 {
			return models.ImportFormatCSV
		}
	}
	return ""
}

func (s *importService) run(ctx context.Context, userID uuid.UUID, format string, parse func() (*models.ImportResult, error)) (*models.ImportResult, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	start := time.Now()

	result, err := parse()
	if err != nil {
		s.reject(ctx, userID, format, err)
		return nil, err
	}

	// Keep the file's row order when listing newest first by created_at.
	base := time.Now()
	for i := range result.Transactions {
		result.Transactions[i].CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		result.Transactions[i].UpdatedAt = result.Transactions[i].CreatedAt
	}

	if len(result.Transactions) > 0 {
		if err := s.transactions.AddImported(ctx, userID, result.Transactions); err != nil {
			s.reject(ctx, userID, format, err)
			return nil, err
		}
	}

	result.Insights = CalculateInsights(result.Transactions)
	result.Message = importMessage(result)

	duration := time.Since(start)
	if s.audit != nil {
		s.audit.LogTransactionsImported(ctx, userID, format, result.SuccessCount, result.ErrorCount, duration.Milliseconds())
	}
	if s.metrics != nil {
		s.metrics.IncrementCounter("import_completed", map[string]string{"format": format, "status": "success"})
		s.metrics.RecordGauge("import_rows", float64(result.SuccessCount), map[string]string{"format": format, "outcome": "success"})
		s.metrics.RecordGauge("import_rows", float64(result.ErrorCount), map[string]string{"format": format, "outcome": "error"})
		s.metrics.RecordProcessingTime("import", duration)
	}

	s.logger.InfoContext(ctx, "import completed",
		"user_id", userID,
		"format", format,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount,
		"duration_ms", duration.Milliseconds())

	return result, nil
}

func (s *importService) reject(ctx context.Context, userID uuid.UUID, format string, err error) {
	if s.audit != nil {
		s.audit.LogImportRejected(ctx, userID, format, err.Error())
	}
	if s.metrics != nil {
		status := "rejected"
		if !isImportInputError(err) {
			status = "failed"
		}
		s.metrics.IncrementCounter("import_completed", map[string]string{"format": format, "status": status})
	}
}

func isImportInputError(err error) bool {
	var missing *MissingColumnsError
	return errors.Is(err, ErrNoDataRows) ||
		errors.Is(err, ErrMalformedStatement) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.As(err, &missing)
}

func importMessage(result *models.ImportResult) string {
	msg := fmt.Sprintf("Imported %d %s", result.SuccessCount, plural(result.SuccessCount, "transaction", "transactions"))
	if result.ErrorCount > 0 {
		msg += fmt.Sprintf(" (%d %s skipped)", result.ErrorCount, plural(result.ErrorCount, "row", "rows"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
