package repositories

import (
	"context"
	"testing"

	"pocket-budget/internal/database"
	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db    *database.DB
	repo  TransactionRepositoryInterface
	ctx   context.Context
	user  *models.User
	other *models.User
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.ctx = context.Background()
	s.user = database.CreateTestUser(s.T(), s.db, "owner@example.com")
	s.other = database.CreateTestUser(s.T(), s.db, "other@example.com")
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *TransactionRepositorySuite) newTxn(userID uuid.UUID, date, name, category string, amount int64) models.Transaction {
	return models.Transaction{
		UserID:   userID,
		Date:     date,
		Name:     name,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
	}
}

func (s *TransactionRepositorySuite) TestCreate_AssignsDefaults() {
	txn := s.newTxn(s.user.ID, "2024-05-01", "Zomato", "Food", -350)

	s.Require().NoError(s.repo.Create(s.ctx, &txn))

	s.NotEqual(uuid.Nil, txn.ID)
	s.Equal("🍔", txn.Icon)
	s.Equal(models.TransactionSourceManual, txn.Source)
}

func (s *TransactionRepositorySuite) TestCreate_RejectsInvalidDate() {
	txn := s.newTxn(s.user.ID, "May 1st", "Zomato", "Food", -350)

	err := s.repo.Create(s.ctx, &txn)

	s.ErrorIs(err, models.ErrInvalidTransactionDate)
}

func (s *TransactionRepositorySuite) TestCreateBatch_AllOrNothing() {
	batch := []models.Transaction{
		s.newTxn(s.user.ID, "2024-05-01", "Salary", "Income", 50000),
		s.newTxn(s.user.ID, "not-a-date", "Broken", "Other", -1),
	}

	err := s.repo.CreateBatch(s.ctx, batch)
	s.Error(err)

	count, err := s.repo.CountByUser(s.ctx, s.user.ID)
	s.NoError(err)
	s.Zero(count, "a failed batch must not leave partial rows behind")
}

func (s *TransactionRepositorySuite) TestList_ScopedSortedAndFiltered() {
	batch := []models.Transaction{
		s.newTxn(s.user.ID, "2024-05-01", "Salary", "Income", 50000),
		s.newTxn(s.user.ID, "2024-05-03", "Uber", "Transport", -180),
		s.newTxn(s.user.ID, "2024-05-02", "Dominos", "Food", -600),
		s.newTxn(s.other.ID, "2024-05-02", "Someone else", "Food", -1),
	}
	s.Require().NoError(s.repo.CreateBatch(s.ctx, batch))

	all, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Equal([]string{"2024-05-03", "2024-05-02", "2024-05-01"}, []string{all[0].Date, all[1].Date, all[2].Date})

	food, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Category: "food"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Dominos", food[0].Name)

	ranged, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, FromDate: "2024-05-02", ToDate: "2024-05-02"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("Dominos", ranged[0].Name)

	page, total, err := s.repo.List(s.ctx, models.TransactionFilters{UserID: s.user.ID, Offset: 1, Limit: 1})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(page, 1)
	s.Equal("2024-05-02", page[0].Date)
}

func (s *TransactionRepositorySuite) TestDeleteForUser_OnlyOwner() {
	txn := s.newTxn(s.user.ID, "2024-05-01", "Rent", "Rent", -15000)
	s.Require().NoError(s.repo.Create(s.ctx, &txn))

	err := s.repo.DeleteForUser(s.ctx, s.other.ID, txn.ID)
	s.ErrorIs(err, ErrTransactionNotFound)

	s.NoError(s.repo.DeleteForUser(s.ctx, s.user.ID, txn.ID))

	_, err = s.repo.GetByIDForUser(s.ctx, s.user.ID, txn.ID)
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestDeleteAllForUser() {
	s.Require().NoError(s.repo.CreateBatch(s.ctx, []models.Transaction{
		s.newTxn(s.user.ID, "2024-05-01", "A", "Food", -1),
		s.newTxn(s.user.ID, "2024-05-02", "B", "Food", -2),
		s.newTxn(s.other.ID, "2024-05-02", "C", "Food", -3),
	}))

	removed, err := s.repo.DeleteAllForUser(s.ctx, s.user.ID)
	s.NoError(err)
	s.Equal(int64(2), removed)

	remaining, err := s.repo.ListAllByUser(s.ctx, s.other.ID)
	s.NoError(err)
	s.Len(remaining, 1)
}
