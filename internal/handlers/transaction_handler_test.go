package handlers

import (
	"bytes"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"
	"pocket-budget/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransactionHandler(t *testing.T) {
	suite.Run(t, new(TransactionHandlerSuite))
}

type TransactionHandlerSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	transactions *service_mocks.MockTransactionServiceInterface
	imports      *service_mocks.MockImportServiceInterface
	insights     *service_mocks.MockInsightsServiceInterface
	statements   *service_mocks.MockStatementServiceInterface
	handler      *TransactionHandler
	e            *echo.Echo
	userID       uuid.UUID
}

const testMaxImportBytes = 1024

func (s *TransactionHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.transactions = service_mocks.NewMockTransactionServiceInterface(s.ctrl)
	s.imports = service_mocks.NewMockImportServiceInterface(s.ctrl)
	s.insights = service_mocks.NewMockInsightsServiceInterface(s.ctrl)
	s.statements = service_mocks.NewMockStatementServiceInterface(s.ctrl)
	s.handler = NewTransactionHandler(s.transactions, s.imports, s.insights, s.statements,
		services.NewCurrencyFormatter("USD"), testMaxImportBytes)
	s.e = newTestEcho()
	s.userID = uuid.New()
}

func (s *TransactionHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransactionHandlerSuite) context(method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(s.e, method, target, body)
	return withUser(c, s.userID), rec
}

func (s *TransactionHandlerSuite) requireErrorCode(rec *httptest.ResponseRecorder, status int, code errors.ErrorCode) ErrorResponse {
	s.Equal(status, rec.Code)
	body, err := decodeErrorBody(rec)
	s.Require().NoError(err)
	s.Equal(string(code), body.Error.Code)
	return body
}

func (s *TransactionHandlerSuite) sampleTransaction() models.Transaction {
	return models.Transaction{
		ID:        uuid.New(),
		UserID:    s.userID,
		Date:      "2024-03-14",
		Name:      "Swiggy order",
		Category:  models.CategoryFood,
		Amount:    decimal.RequireFromString("-12.5"),
		Icon:      models.IconForCategory(models.CategoryFood),
		Source:    models.TransactionSourceManual,
		CreatedAt: time.Date(2024, 3, 14, 19, 0, 0, 0, time.UTC),
	}
}

func (s *TransactionHandlerSuite) TestListTransactions_DefaultsAndMapping() {
	txn := s.sampleTransaction()
	s.transactions.EXPECT().
		ListTransactions(gomock.Any(), s.userID, models.TransactionFilters{Offset: 0, Limit: repositories.DefaultListLimit}).
		Return([]models.Transaction{txn}, int64(1), nil)

	c, rec := s.context(http.MethodGet, "/api/v1/transactions", nil)
	s.NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTransactionsResponse
	s.Require().NoError(jsonUnmarshal(rec, &resp))
	s.Require().Len(resp.Transactions, 1)
	s.Equal("-12.50", resp.Transactions[0].Amount)
	s.Equal("-$12.50", resp.Transactions[0].AmountDisplay)
	s.Equal(txn.ID, resp.Transactions[0].ID)
	s.Equal(dto.PaginationInfo{Offset: 0, Limit: repositories.DefaultListLimit, Total: 1, HasMore: false}, resp.Pagination)
}

func (s *TransactionHandlerSuite) TestListTransactions_FiltersAndPaging() {
	s.transactions.EXPECT().
		ListTransactions(gomock.Any(), s.userID, models.TransactionFilters{
			Category: "Food",
			FromDate: "2024-01-01",
			ToDate:   "2024-01-31",
			Source:   "csv",
			Offset:   10,
			Limit:    repositories.MaxListLimit,
		}).
		Return([]models.Transaction{s.sampleTransaction()}, int64(25), nil)

	c, rec := s.context(http.MethodGet, "/api/v1/transactions?category=Food&from=2024-01-01&to=2024-01-31&source=csv&offset=10&limit=9999", nil)
	s.NoError(s.handler.ListTransactions(c))

	var resp dto.ListTransactionsResponse
	s.Require().NoError(jsonUnmarshal(rec, &resp))
	s.True(resp.Pagination.HasMore)
	s.Equal(repositories.MaxListLimit, resp.Pagination.Limit)
}

func (s *TransactionHandlerSuite) TestListTransactions_EmptyIsArray() {
	s.transactions.EXPECT().ListTransactions(gomock.Any(), s.userID, gomock.Any()).Return(nil, int64(0), nil)

	c, rec := s.context(http.MethodGet, "/api/v1/transactions", nil)
	s.NoError(s.handler.ListTransactions(c))
	s.Contains(rec.Body.String(), `"transactions":[]`)
}

func (s *TransactionHandlerSuite) TestListTransactions_BadFilters() {
	for _, query := range []string{
		"from=14-03-2024",
		"to=2024-02-30",
		"from=2024-02-01&to=2024-01-01",
		"source=bank",
	} {
		s.Run(query, func() {
			c, rec := s.context(http.MethodGet, "/api/v1/transactions?"+query, nil)
			s.NoError(s.handler.ListTransactions(c))
			s.requireErrorCode(rec, http.StatusBadRequest, errors.ValidationGeneral)
		})
	}
}

func (s *TransactionHandlerSuite) TestCreateTransaction() {
	s.Run("created", func() {
		txn := s.sampleTransaction()
		s.transactions.EXPECT().
			AddTransaction(gomock.Any(), s.userID, &dto.CreateTransactionRequest{
				Date: "2024-03-14", Name: "Swiggy order", Amount: "-12.50",
			}).
			Return(&txn, nil)

		c, rec := s.context(http.MethodPost, "/api/v1/transactions", map[string]string{
			"date": "2024-03-14", "name": "Swiggy order", "amount": "-12.50",
		})
		s.NoError(s.handler.CreateTransaction(c))
		s.Equal(http.StatusCreated, rec.Code)

		var got dto.TransactionResponse
		resp, err := successBody(rec, &got)
		s.Require().NoError(err)
		s.Equal("Transaction added", resp.Message)
		s.Equal(models.CategoryFood, got.Category)
	})

	s.Run("zero amount rejected by validation", func() {
		c, _ := s.context(http.MethodPost, "/api/v1/transactions", map[string]string{
			"date": "2024-03-14", "name": "Nothing", "amount": "0.00",
		})
		s.Error(s.handler.CreateTransaction(c))
	})

	for _, tc := range []struct {
		err    error
		status int
		code   errors.ErrorCode
	}{
		{services.ErrInvalidAmount, http.StatusBadRequest, errors.TransactionInvalidAmount},
		{services.ErrInvalidDate, http.StatusBadRequest, errors.ValidationInvalidDate},
		{services.ErrNameRequired, http.StatusBadRequest, errors.ValidationRequiredField},
		{stderrors.New("insert failed"), http.StatusInternalServerError, errors.SystemInternalError},
	} {
		s.Run(tc.err.Error(), func() {
			s.transactions.EXPECT().AddTransaction(gomock.Any(), s.userID, gomock.Any()).Return(nil, tc.err)

			c, rec := s.context(http.MethodPost, "/api/v1/transactions", map[string]string{
				"date": "2024-03-14", "name": "Coffee", "amount": "-3.20",
			})
			s.NoError(s.handler.CreateTransaction(c))
			s.requireErrorCode(rec, tc.status, tc.code)
		})
	}
}

func (s *TransactionHandlerSuite) TestDeleteTransaction() {
	id := uuid.New()

	s.Run("deleted", func() {
		s.transactions.EXPECT().DeleteTransaction(gomock.Any(), s.userID, id).Return(nil)

		c, rec := s.context(http.MethodDelete, "/", nil)
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		s.NoError(s.handler.DeleteTransaction(c))
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("not found", func() {
		s.transactions.EXPECT().DeleteTransaction(gomock.Any(), s.userID, id).Return(repositories.ErrTransactionNotFound)

		c, rec := s.context(http.MethodDelete, "/", nil)
		c.SetParamNames("id")
		c.SetParamValues(id.String())
		s.NoError(s.handler.DeleteTransaction(c))
		s.requireErrorCode(rec, http.StatusNotFound, errors.TransactionNotFound)
	})

	s.Run("bad id", func() {
		c, rec := s.context(http.MethodDelete, "/", nil)
		c.SetParamNames("id")
		c.SetParamValues("42")
		s.NoError(s.handler.DeleteTransaction(c))
		s.requireErrorCode(rec, http.StatusBadRequest, errors.TransactionInvalidID)
	})
}

func (s *TransactionHandlerSuite) TestClearTransactions() {
	s.transactions.EXPECT().ClearTransactions(gomock.Any(), s.userID).Return(int64(37), nil)

	c, rec := s.context(http.MethodDelete, "/api/v1/transactions", nil)
	s.NoError(s.handler.ClearTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var got dto.ClearTransactionsResponse
	_, err := successBody(rec, &got)
	s.Require().NoError(err)
	s.Equal(int64(37), got.Deleted)
}

func (s *TransactionHandlerSuite) uploadContext(filename string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		s.Require().NoError(err)
		_, err = part.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/import", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")
	return withUser(c, s.userID), rec
}

func (s *TransactionHandlerSuite) TestImportTransactions_Success() {
	csv := []byte("Date,Description,Amount\n2024-01-02,Uber,-250\n")
	s.imports.EXPECT().ImportFile(gomock.Any(), s.userID, "january.csv", csv).Return(&models.ImportResult{
		Format:       models.ImportFormatCSV,
		SuccessCount: 1,
		Transactions: []models.Transaction{s.sampleTransaction()},
		Message:      "Imported 1 transactions",
	}, nil)

	c, rec := s.uploadContext("january.csv", csv)
	s.NoError(s.handler.ImportTransactions(c))
	s.Equal(http.StatusCreated, rec.Code)

	var result models.ImportResult
	resp, err := successBody(rec, &result)
	s.Require().NoError(err)
	s.Equal("Imported 1 transactions", resp.Message)
	s.Equal(1, result.SuccessCount)
}

func (s *TransactionHandlerSuite) TestImportTransactions_MissingFile() {
	c, rec := s.uploadContext("", nil)
	s.NoError(s.handler.ImportTransactions(c))
	s.requireErrorCode(rec, http.StatusBadRequest, errors.ImportMissingFile)
}

func (s *TransactionHandlerSuite) TestImportTransactions_TooLarge() {
	c, rec := s.uploadContext("huge.csv", bytes.Repeat([]byte("x"), testMaxImportBytes+1))
	s.NoError(s.handler.ImportTransactions(c))
	s.requireErrorCode(rec, http.StatusRequestEntityTooLarge, errors.ImportFileTooLarge)
}

func (s *TransactionHandlerSuite) TestImportTransactions_MissingColumns() {
	s.imports.EXPECT().ImportFile(gomock.Any(), s.userID, "bad.csv", gomock.Any()).
		Return(nil, &services.MissingColumnsError{Missing: []string{"amount"}, Found: []string{"Date", "Description"}})

	c, rec := s.uploadContext("bad.csv", []byte("Date,Description\n2024-01-02,Uber\n"))
	s.NoError(s.handler.ImportTransactions(c))
	body := s.requireErrorCode(rec, http.StatusUnprocessableEntity, errors.ImportMissingColumns)
	s.Contains(body.Error.Message, "amount")
	s.Contains(body.Error.Message, "Date, Description")
}

func (s *TransactionHandlerSuite) TestImportTransactions_ServiceErrors() {
	for _, tc := range []struct {
		err    error
		status int
		code   errors.ErrorCode
	}{
		{services.ErrNoDataRows, http.StatusUnprocessableEntity, errors.ImportNoDataRows},
		{services.ErrUnsupportedFormat, http.StatusBadRequest, errors.ImportUnsupportedFormat},
		{services.ErrMalformedStatement, http.StatusUnprocessableEntity, errors.ImportMalformedStatement},
		{stderrors.New("disk full"), http.StatusInternalServerError, errors.SystemInternalError},
	} {
		s.Run(tc.err.Error(), func() {
			s.imports.EXPECT().ImportFile(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).Return(nil, tc.err)

			c, rec := s.uploadContext("statement.qfx", []byte("OFXHEADER:100"))
			s.NoError(s.handler.ImportTransactions(c))
			s.requireErrorCode(rec, tc.status, tc.code)
		})
	}
}

func (s *TransactionHandlerSuite) TestGetInsights() {
	insights := &models.Insights{
		TotalSpent:     decimal.RequireFromString("1250.5"),
		TotalIncome:    decimal.RequireFromString("3000"),
		AverageDaily:   decimal.RequireFromString("41.68"),
		TopCategory:    models.TopCategory{Category: models.CategoryRent, Amount: decimal.NewFromInt(900)},
		LargestExpense: models.LargestExpense{Name: "Rent", Amount: decimal.NewFromInt(900)},
		Trend:          models.TrendStable,
	}
	s.insights.EXPECT().
		GetInsights(gomock.Any(), s.userID, models.TransactionFilters{Category: "Rent"}).
		Return(insights, nil)

	c, rec := s.context(http.MethodGet, "/api/v1/transactions/insights?category=Rent", nil)
	s.NoError(s.handler.GetInsights(c))
	s.Equal(http.StatusOK, rec.Code)

	resp, err := successBody(rec, &models.Insights{})
	s.Require().NoError(err)
	meta, ok := resp.Meta.(map[string]interface{})
	s.Require().True(ok)
	s.Equal("USD", meta["currency"])
	s.Equal("$1,250.50", meta["totalSpent"])
	s.Equal("$3,000.00", meta["totalIncome"])
	s.Equal(models.CategoryRent, meta["topCategory"])
}

func (s *TransactionHandlerSuite) TestGetMonthlyStatement() {
	s.Run("explicit year", func() {
		s.statements.EXPECT().GetYearStatement(gomock.Any(), s.userID, 2023).
			Return(&models.YearStatement{Year: 2023, Months: make([]models.MonthlyStatement, 12)}, nil)

		c, rec := s.context(http.MethodGet, "/api/v1/transactions/monthly?year=2023", nil)
		s.NoError(s.handler.GetMonthlyStatement(c))
		s.Equal(http.StatusOK, rec.Code)

		var got models.YearStatement
		_, err := successBody(rec, &got)
		s.Require().NoError(err)
		s.Equal(2023, got.Year)
		s.Len(got.Months, 12)
	})

	s.Run("default year", func() {
		s.statements.EXPECT().GetYearStatement(gomock.Any(), s.userID, 0).Return(&models.YearStatement{Year: 2024}, nil)

		c, rec := s.context(http.MethodGet, "/api/v1/transactions/monthly", nil)
		s.NoError(s.handler.GetMonthlyStatement(c))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("not a number", func() {
		c, rec := s.context(http.MethodGet, "/api/v1/transactions/monthly?year=last", nil)
		s.NoError(s.handler.GetMonthlyStatement(c))
		s.requireErrorCode(rec, http.StatusBadRequest, errors.ValidationInvalidFormat)
	})

	s.Run("out of range", func() {
		s.statements.EXPECT().GetYearStatement(gomock.Any(), s.userID, 1800).Return(nil, services.ErrInvalidYear)

		c, rec := s.context(http.MethodGet, "/api/v1/transactions/monthly?year=1800", nil)
		s.NoError(s.handler.GetMonthlyStatement(c))
		s.requireErrorCode(rec, http.StatusBadRequest, errors.ValidationOutOfRange)
	})
}

func (s *TransactionHandlerSuite) TestListCategories() {
	c, rec := s.context(http.MethodGet, "/api/v1/transactions/categories", nil)
	s.NoError(s.handler.ListCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	var options []dto.CategoryOption
	_, err := successBody(rec, &options)
	s.Require().NoError(err)
	s.Len(options, len(models.AllCategories()))
	for _, opt := range options {
		s.NotEmpty(opt.Icon, opt.Name)
	}
}

func (s *TransactionHandlerSuite) TestRequiresUser() {
	c, rec := newJSONContext(s.e, http.MethodGet, "/api/v1/transactions", nil)
	s.NoError(s.handler.ListTransactions(c))
	s.True(strings.Contains(rec.Body.String(), string(errors.AuthMissingToken)))
}
