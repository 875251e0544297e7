package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"pocket-budget/internal/models"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var (
	ErrNoDataRows        = errors.New("CSV file must contain a header row and at least one data row")
	ErrUnsupportedFormat = errors.New("unsupported import file format")
)

// MissingColumnsError is returned when the header lacks a required column.
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV must include date, name, and amount columns (missing: %s). Found: %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

// ImportPolicy holds the substitutions applied to incomplete rows.
//
//	field     condition               substitute
//	date      missing or unparsable   Now() as YYYY-MM-DD
//	category  missing or blank        DefaultCategory ("Other")
//	name      missing or blank        DefaultName ("Unknown")
//	icon      category not in table   models.FallbackIcon
//	amount    unparsable              row skipped and counted as an error
//	amount    beyond decimal(15,2)    row skipped and counted as an error
//	category  over 50 characters      row skipped and counted as an error
//	name      over 255 characters     truncated
type ImportPolicy struct {
	Now             func() time.Time
	DefaultCategory string
	DefaultName     string
}

// FallbackRule describes one entry of the policy table.
type FallbackRule struct {
	Field      string `json:"field"`
	Condition  string `json:"condition"`
	Substitute string `json:"substitute"`
}

// DefaultImportPolicy returns the policy used by the import endpoint.
func DefaultImportPolicy() ImportPolicy {
	return ImportPolicy{
		Now:             time.Now,
		DefaultCategory: models.CategoryOther,
		DefaultName:     "Unknown",
	}
}

// Rules lists the policy as data so callers can display it.
func (p ImportPolicy) Rules() []FallbackRule {
	return []FallbackRule{
		{Field: "date", Condition: "missing or unparsable", Substitute: "today"},
		{Field: "category", Condition: "missing or blank", Substitute: p.DefaultCategory},
		{Field: "name", Condition: "missing or blank", Substitute: p.DefaultName},
		{Field: "icon", Condition: "category not in icon table", Substitute: models.FallbackIcon},
		{Field: "amount", Condition: "not a finite number", Substitute: "row skipped"},
		{Field: "amount", Condition: "outside the storable range", Substitute: "row skipped"},
		{Field: "category", Condition: "longer than 50 characters", Substitute: "row skipped"},
		{Field: "name", Condition: "longer than 255 characters", Substitute: "truncated"},
	}
}

func (p ImportPolicy) today() string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().Format(models.DateLayout)
}

type csvColumns struct {
	date, name, amount, category int
}

// ParseTransactionsCSV turns loosely structured CSV text into transactions.
// Malformed rows are skipped and reported; only a missing header or missing
// required columns fail the whole import.
func ParseTransactionsCSV(content string, policy ImportPolicy) (*models.ImportResult, error) {
	lines := nonBlankLines(content)
	if len(lines) < 2 {
		return nil, ErrNoDataRows
	}

	header, err := splitCSVLine(lines[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(header[i])
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		Format:       models.ImportFormatCSV,
		Transactions: make([]models.Transaction, 0, len(lines)-1),
	}

	for i, line := range lines[1:] {
		rowNum := i + 2
		fields, err := splitCSVLine(line)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		txn, err := buildRow(fields, cols, policy)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		result.Transactions = append(result.Transactions, txn)
		result.SuccessCount++
	}

	return result, nil
}

func buildRow(fields []string, cols csvColumns, policy ImportPolicy) (models.Transaction, error) {
	if len(fields) < 3 {
		return models.Transaction{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	rawAmount := field(fields, cols.amount)
	amount, err := parseLooseAmount(rawAmount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q", rawAmount)
	}

	name := field(fields, cols.name)
	if name == "" {
		name = policy.DefaultName
	}

	category := field(fields, cols.category)
	if category == "" {
		category = policy.DefaultCategory
	}

	txn := models.Transaction{
		Date:     normalizeImportDate(field(fields, cols.date), policy),
		Name:     models.TruncateName(name),
		Category: category,
		Amount:   amount,
		Icon:     models.IconForCategory(category),
		Source:   models.TransactionSourceCSV,
	}
	if err := txn.CheckStorageLimits(); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// locateColumns finds each column by substring; the first matching header wins.
func locateColumns(header []string) (csvColumns, error) {
	cols := csvColumns{
		date:     findColumn(header, "date"),
		name:     findColumn(header, "name", "description", "merchant"),
		amount:   findColumn(header, "amount", "price", "total"),
		category: findColumn(header, "category", "type"),
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.name < 0 {
		missing = append(missing, "name")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, &MissingColumnsError{Missing: missing, Found: header}
	}
	return cols, nil
}

func findColumn(header []string, candidates ...string) int {
	for i, h := range header {
		for _, c := range candidates {
			if strings.Contains(h, c) {
				return i
			}
		}
	}
	return -1
}

func nonBlankLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitCSVLine reads one record. Quoted fields may contain commas.
func splitCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		fields[i] = stripQuotes(strings.TrimSpace(f))
	}
	return fields, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// parseLooseAmount keeps only digits, '.' and '-' so "₹1,250.00" and
// "$ -12.50" both parse.
func parseLooseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

func normalizeImportDate(raw string, policy ImportPolicy) string {
	if raw == "" {
		return policy.today()
	}
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return policy.today()
	}
	return parsed.Format(models.DateLayout)
}
