package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"pocket-budget/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CSVImporterTestSuite struct {
	suite.Suite
	policy ImportPolicy
}

func TestCSVImporterSuite(t *testing.T) {
	suite.Run(t, new(CSVImporterTestSuite))
}

func (s *CSVImporterTestSuite) SetupTest() {
	s.policy = DefaultImportPolicy()
	s.policy.Now = func() time.Time {
		return time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	}
}

func (s *CSVImporterTestSuite) TestWellFormedThreeRows() {
	content := "date,name,amount,category\n" +
		"2024-01-01,Swiggy,-450,Food\n" +
		"2024-01-02,Salary,50000,Income\n" +
		"2024-01-03,Uber,-220.50,Transport\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)

	s.Equal(3, result.SuccessCount)
	s.Equal(0, result.ErrorCount)
	s.Empty(result.Errors)
	s.Require().Len(result.Transactions, 3)
	s.Equal(models.ImportFormatCSV, result.Format)

	first := result.Transactions[0]
	s.Equal("2024-01-01", first.Date)
	s.Equal("Swiggy", first.Name)
	s.Equal("Food", first.Category)
	s.Equal(models.IconForCategory("Food"), first.Icon)
	s.Equal(models.TransactionSourceCSV, first.Source)
	s.True(first.Amount.Equal(decimal.NewFromInt(-450)))
	s.True(result.Transactions[2].Amount.Equal(decimal.RequireFromString("-220.50")))
}

func (s *CSVImporterTestSuite) TestNonNumericAmountIsSkipped() {
	content := "date,name,amount\n" +
		"2024-01-01,Coffee,-120\n" +
		"2024-01-02,Broken,abc\n" +
		"2024-01-03,Lunch,-300\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)

	s.Equal(2, result.SuccessCount)
	s.Equal(1, result.ErrorCount)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "Row 3")
	s.Equal("Lunch", result.Transactions[1].Name)
}

func (s *CSVImporterTestSuite) TestTooFewLines() {
	for _, content := range []string{"", "   \n\n", "date,name,amount\n\n"} {
		_, err := ParseTransactionsCSV(content, s.policy)
		s.ErrorIs(err, ErrNoDataRows)
	}
}

func (s *CSVImporterTestSuite) TestMissingColumnsNamesFoundHeaders() {
	_, err := ParseTransactionsCSV("Posted,Payee,Value\n2024-01-01,x,1\n", s.policy)

	var missing *MissingColumnsError
	s.Require().True(errors.As(err, &missing))
	s.Equal([]string{"date", "name", "amount"}, missing.Missing)
	s.Equal([]string{"posted", "payee", "value"}, missing.Found)
	s.Contains(err.Error(), "posted, payee, value")
}

func (s *CSVImporterTestSuite) TestHeaderSynonymsAndOrder() {
	content := "Type,Total Price,Transaction Date,Merchant Description\n" +
		"Shopping,\"₹1,299.00\",2024-02-10,Myntra\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Require().Len(result.Transactions, 1)

	got := result.Transactions[0]
	s.Equal("Myntra", got.Name)
	s.Equal("Shopping", got.Category)
	s.Equal("2024-02-10", got.Date)
	s.True(got.Amount.Equal(decimal.NewFromInt(1299)))
}

func (s *CSVImporterTestSuite) TestQuotedCommasKeepAlignment() {
	content := "date,description,amount,category\n" +
		"2024-03-01,\"Dinner, with friends\",-1800,Food\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Require().Len(result.Transactions, 1)
	s.Equal("Dinner, with friends", result.Transactions[0].Name)
	s.Equal("Food", result.Transactions[0].Category)
}

func (s *CSVImporterTestSuite) TestFallbackPolicy() {
	content := "date,name,amount,category\n" +
		"not a date,,-50,\n" +
		"2024-04-01,Gift,-75,Presents\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Require().Len(result.Transactions, 2)

	fallback := result.Transactions[0]
	s.Equal("2024-07-15", fallback.Date)
	s.Equal("Unknown", fallback.Name)
	s.Equal(models.CategoryOther, fallback.Category)

	unmapped := result.Transactions[1]
	s.Equal("Presents", unmapped.Category)
	s.Equal(models.FallbackIcon, unmapped.Icon)
}

func (s *CSVImporterTestSuite) TestDateFormatsNormalized() {
	content := "date,name,amount\n" +
		"03/15/2024,A,-1\n" +
		"2024-03-16T09:30:00Z,B,-1\n" +
		"\"March 17, 2024\",C,-1\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Require().Len(result.Transactions, 3)
	s.Equal("2024-03-15", result.Transactions[0].Date)
	s.Equal("2024-03-16", result.Transactions[1].Date)
	s.Equal("2024-03-17", result.Transactions[2].Date)
}

func (s *CSVImporterTestSuite) TestShortRowsAreCounted() {
	content := "date,name,amount\n" +
		"2024-01-01,only two\n" +
		"2024-01-02,Fine,-10\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Equal(1, result.SuccessCount)
	s.Equal(1, result.ErrorCount)
	s.Contains(result.Errors[0], "Row 2")
}

func (s *CSVImporterTestSuite) TestCRLFAndBlankLines() {
	content := "date,name,amount\r\n\r\n2024-01-01,A,-1\r\n\r\n2024-01-02,B,2\r\n"

	result, err := ParseTransactionsCSV(content, s.policy)
	s.Require().NoError(err)
	s.Equal(2, result.SuccessCount)
}

func (s *CSVImporterTestSuite) TestRandomRowsAllImported() {
	faker := gofakeit.New(7)
	var b strings.Builder
	b.WriteString("date,name,amount,category\n")

	const rows = 50
	for i := 0; i < rows; i++ {
		date := faker.DateRange(mustDate("2023-01-01"), mustDate("2023-12-31")).Format(models.DateLayout)
		amount := faker.Price(-5000, 5000)
		fmt.Fprintf(&b, "%s,\"%s\",%.2f,%s\n", date, faker.Company(), amount, faker.RandomString(models.AllCategories()))
	}

	result, err := ParseTransactionsCSV(b.String(), s.policy)
	s.Require().NoError(err)
	s.Equal(rows, result.SuccessCount)
	s.Zero(result.ErrorCount)
	for _, txn := range result.Transactions {
		s.True(models.IsISODate(txn.Date), txn.Date)
		s.NotEqual(models.FallbackIcon, txn.Icon)
	}
}

func (s *CSVImporterTestSuite) TestPolicyRulesListed() {
	rules := s.policy.Rules()
	s.Len(rules, 8)
	s.Equal("date", rules[0].Field)
	s.Equal(models.CategoryOther, rules[1].Substitute)
}

func (s *CSVImporterTestSuite) TestParseLooseAmount() {
	cases := map[string]string{
		"₹1,250.00": "1250",
		"$ -12.50":  "-12.5",
		"  300 ":    "300",
	}
	for raw, want := range cases {
		got, err := parseLooseAmount(raw)
		s.Require().NoError(err, raw)
		s.True(got.Equal(decimal.RequireFromString(want)), raw)
	}

	for _, raw := range []string{"", "abc", "1.2.3", "--5"} {
		_, err := parseLooseAmount(raw)
		s.Error(err, raw)
	}
}
