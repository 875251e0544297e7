package services

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"pocket-budget/internal/models"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var ErrMalformedStatement = errors.New("statement file could not be parsed")

var (
	ofxSeverityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	ofxOpenTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var ofxNamePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"UPI/",
}

// OFXImporter reads bank and credit card statements in OFX or QFX format.
type OFXImporter struct {
	categories CategoryServiceInterface
	logger     *slog.Logger
}

func NewOFXImporter(categories CategoryServiceInterface, logger *slog.Logger) *OFXImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OFXImporter{categories: categories, logger: logger}
}

// LooksLikeOFX reports whether content starts with an OFX header.
func LooksLikeOFX(content []byte) bool {
	head := bytes.TrimLeft(content, " \t\r\n\ufeff")
	if len(head) > 256 {
		head = head[:256]
	}
	upper := bytes.ToUpper(head)
	return bytes.HasPrefix(upper, []byte("OFXHEADER")) ||
		bytes.HasPrefix(upper, []byte("<?XML")) && bytes.Contains(upper, []byte("OFX")) ||
		bytes.HasPrefix(upper, []byte("<OFX>"))
}

// Parse converts every statement transaction to a budget transaction. OFX
// already signs debits negative, so amounts are kept as-is.
func (p *OFXImporter) Parse(content []byte) (*models.ImportResult, error) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStatement, err)
	}

	result := &models.ImportResult{
		Format:       models.ImportFormatOFX,
		Transactions: []models.Transaction{},
	}

	var bankStmts, cardStmts int
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			p.appendTransactions(result, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			cardStmts++
			p.appendTransactions(result, stmt.BankTranList.Transactions)
		}
	}

	p.logger.Info("parsed OFX statement",
		"transactions", result.SuccessCount,
		"errors", result.ErrorCount,
		"bank_statements", bankStmts,
		"card_statements", cardStmts)

	return result, nil
}

func (p *OFXImporter) appendTransactions(result *models.ImportResult, list []ofxgo.Transaction) {
	for i := range list {
		txn, err := p.convert(&list[i])
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Transaction %s: %v", list[i].FiTID, err))
			continue
		}
		result.Transactions = append(result.Transactions, txn)
		result.SuccessCount++
	}
}

func (p *OFXImporter) convert(tx *ofxgo.Transaction) (models.Transaction, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}
	if tx.DtPosted.IsZero() {
		return models.Transaction{}, errors.New("missing posted date")
	}

	name := ofxPayeeName(tx)
	if name == "" {
		name = DefaultImportPolicy().DefaultName
	}

	txn := models.Transaction{
		Date:   tx.DtPosted.UTC().Format(models.DateLayout),
		Name:   models.TruncateName(name),
		Amount: amount,
		Source: models.TransactionSourceOFX,
	}
	if p.categories != nil {
		p.categories.Categorize(&txn)
	}
	if txn.Category == "" {
		txn.Category = models.CategoryOther
		txn.Icon = models.IconForCategory(txn.Category)
	}
	if err := txn.CheckStorageLimits(); err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

// preprocessOFX repairs the formatting slips banks commonly ship.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n\ufeff")
	content = ofxSeverityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return ofxOpenTagPattern.ReplaceAllString(content, "$1>")
}

func ofxPayeeName(tx *ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range ofxNamePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// "03/14 MERCHANT" style date prefixes
	if len(name) > 6 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE", "TRANSFER":
		return true
	}
	return false
}
