package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
)

// TransactionHandler serves the transactions page: listing, manual entry,
// deletion, statement import and the derived views.
type TransactionHandler struct {
	transactions   services.TransactionServiceInterface
	imports        services.ImportServiceInterface
	insights       services.InsightsServiceInterface
	statements     services.StatementServiceInterface
	formatter      *services.CurrencyFormatter
	maxImportBytes int64
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactions services.TransactionServiceInterface,
	imports services.ImportServiceInterface,
	insights services.InsightsServiceInterface,
	statements services.StatementServiceInterface,
	formatter *services.CurrencyFormatter,
	maxImportBytes int64,
) *TransactionHandler {
	if formatter == nil {
		formatter = services.NewCurrencyFormatter(services.DefaultCurrency)
	}
	return &TransactionHandler{
		transactions:   transactions,
		imports:        imports,
		insights:       insights,
		statements:     statements,
		formatter:      formatter,
		maxImportBytes: maxImportBytes,
	}
}

// ListTransactions returns the user's transactions, newest date first
// @Summary List transactions
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param source query string false "manual, csv, ofx or demo"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} dto.ListTransactionsResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", repositories.DefaultListLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > repositories.MaxListLimit {
		limit = repositories.MaxListLimit
	}
	filters.Offset = offset
	filters.Limit = limit

	transactions, total, err := h.transactions.ListTransactions(c.Request().Context(), userID, filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	items := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, h.toTransactionResponse(&transactions[i]))
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: items,
		Pagination: dto.PaginationInfo{
			Offset:  offset,
			Limit:   limit,
			Total:   total,
			HasMore: int64(offset+len(items)) < total,
		},
	})
}

// CreateTransaction stores a manually entered transaction
// @Summary Add transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=dto.TransactionResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or TRANSACTION_002"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := h.transactions.AddTransaction(c.Request().Context(), userID, &req)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrInvalidAmount):
			return SendError(c, errors.TransactionInvalidAmount)
		case stderrors.Is(err, services.ErrInvalidDate):
			return SendError(c, errors.ValidationInvalidDate)
		case stderrors.Is(err, services.ErrNameRequired):
			return SendError(c, errors.ValidationRequiredField, errors.WithDetails("name is required"))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    h.toTransactionResponse(transaction),
		Message: "Transaction added",
	})
}

// DeleteTransaction removes one of the user's transactions
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return SendError(c, errors.TransactionInvalidID)
	}

	if err := h.transactions.DeleteTransaction(c.Request().Context(), userID, transactionID); err != nil {
		if stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return SendError(c, errors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ClearTransactions deletes every transaction of the user
// @Summary Clear all transactions
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.ClearTransactionsResponse}
// @Router /transactions [delete]
func (h *TransactionHandler) ClearTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	deleted, err := h.transactions.ClearTransactions(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.ClearTransactionsResponse{Deleted: deleted},
		Message: "All transactions cleared",
	})
}

// ImportTransactions imports a CSV or OFX/QFX statement sent as multipart "file"
// @Summary Import statement
// @Tags Transactions
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file (.csv, .ofx, .qfx)"
// @Success 201 {object} SuccessResponse{data=models.ImportResult}
// @Failure 400 {object} errors.ErrorResponse "IMPORT_003 or IMPORT_005"
// @Failure 413 {object} errors.ErrorResponse "IMPORT_004"
// @Failure 422 {object} errors.ErrorResponse "IMPORT_001, IMPORT_002 or IMPORT_006"
// @Router /transactions/import [post]
func (h *TransactionHandler) ImportTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return SendError(c, errors.ImportMissingFile)
	}
	if h.maxImportBytes > 0 && fileHeader.Size > h.maxImportBytes {
		return SendError(c, errors.ImportFileTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return SendError(c, errors.ImportMissingFile, errors.WithDetails("Uploaded file could not be read"))
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxImportBytes > 0 {
		reader = io.LimitReader(file, h.maxImportBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return SendSystemError(c, err)
	}
	if h.maxImportBytes > 0 && int64(len(content)) > h.maxImportBytes {
		return SendError(c, errors.ImportFileTooLarge)
	}

	result, err := h.imports.ImportFile(c.Request().Context(), userID, fileHeader.Filename, content)
	if err != nil {
		var missing *services.MissingColumnsError
		switch {
		case stderrors.As(err, &missing):
			resp := errors.NewMissingColumnsError(missing.Missing, missing.Found, getTraceID(c))
			return c.JSON(resp.GetHTTPStatus(), resp)
		case stderrors.Is(err, services.ErrNoDataRows):
			return SendError(c, errors.ImportNoDataRows)
		case stderrors.Is(err, services.ErrUnsupportedFormat):
			return SendError(c, errors.ImportUnsupportedFormat,
				errors.WithDetails("Supported formats: .csv, .ofx, .qfx"))
		case stderrors.Is(err, services.ErrMalformedStatement):
			return SendError(c, errors.ImportMalformedStatement)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    result,
		Message: result.Message,
	})
}

// GetInsights computes spending insights over the filtered transactions
// @Summary Spending insights
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} SuccessResponse{data=models.Insights,meta=dto.InsightsDisplay}
// @Router /transactions/insights [get]
func (h *TransactionHandler) GetInsights(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	insights, err := h.insights.GetInsights(c.Request().Context(), userID, filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: insights,
		Meta: h.insightsDisplay(insights),
	})
}

// GetMonthlyStatement groups a calendar year of transactions by month
// @Summary Monthly statement
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {object} SuccessResponse{data=models.YearStatement}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004"
// @Router /transactions/monthly [get]
func (h *TransactionHandler) GetMonthlyStatement(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	year := getIntParam(c, "year", 0)
	if c.QueryParam("year") != "" && year == 0 {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("year must be a number"))
	}

	statement, err := h.statements.GetYearStatement(c.Request().Context(), userID, year)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidYear) {
			return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: statement})
}

// ListCategories returns the categories offered by the manual-entry form
// @Summary Transaction categories
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]dto.CategoryOption}
// @Router /transactions/categories [get]
func (h *TransactionHandler) ListCategories(c echo.Context) error {
	categories := models.AllCategories()
	options := make([]dto.CategoryOption, 0, len(categories))
	for _, name := range categories {
		options = append(options, dto.CategoryOption{Name: name, Icon: models.IconForCategory(name)})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: options})
}

func (h *TransactionHandler) toTransactionResponse(t *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            t.ID,
		Date:          t.Date,
		Name:          t.Name,
		Category:      t.Category,
		Amount:        t.Amount.StringFixed(2),
		AmountDisplay: h.formatter.Format(t.Amount, ""),
		Icon:          t.Icon,
		Source:        t.Source,
		CreatedAt:     t.CreatedAt,
	}
}

func (h *TransactionHandler) insightsDisplay(in *models.Insights) dto.InsightsDisplay {
	return dto.InsightsDisplay{
		Currency:       h.formatter.ResolveCode(""),
		TotalSpent:     h.formatter.Format(in.TotalSpent, ""),
		TotalIncome:    h.formatter.Format(in.TotalIncome, ""),
		AverageDaily:   h.formatter.Format(in.AverageDaily, ""),
		TopCategory:    in.TopCategory.Category,
		LargestExpense: h.formatter.Format(in.LargestExpense.Amount, ""),
	}
}

func parseTransactionFilters(c echo.Context) (models.TransactionFilters, error) {
	filters := models.TransactionFilters{
		Category: strings.TrimSpace(c.QueryParam("category")),
		FromDate: strings.TrimSpace(c.QueryParam("from")),
		ToDate:   strings.TrimSpace(c.QueryParam("to")),
		Source:   strings.TrimSpace(c.QueryParam("source")),
	}

	if filters.FromDate != "" && !models.IsISODate(filters.FromDate) {
		return filters, stderrors.New("from must be a date in YYYY-MM-DD format")
	}
	if filters.ToDate != "" && !models.IsISODate(filters.ToDate) {
		return filters, stderrors.New("to must be a date in YYYY-MM-DD format")
	}
	if filters.FromDate != "" && filters.ToDate != "" && filters.FromDate > filters.ToDate {
		return filters, stderrors.New("from must not be after to")
	}
	if filters.Source != "" && !models.IsValidTransactionSource(filters.Source) {
		return filters, stderrors.New("source must be one of: manual, csv, ofx, demo")
	}

	return filters, nil
}
