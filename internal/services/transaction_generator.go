package services

import (
	"sort"
	"sync"
	"time"

	"pocket-budget/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	salaryDay       = 1
	billWindowStart = 3
	billWindowEnd   = 10
)

type demoMerchant struct {
	Name     string
	Category string
}

type transactionGenerator struct {
	mu           sync.Mutex
	faker        *gofakeit.Faker
	merchantPool []demoMerchant
}

// NewTransactionGenerator creates a generator seeded from the clock
func NewTransactionGenerator() TransactionGeneratorInterface {
	return NewSeededTransactionGenerator(uint64(time.Now().UnixNano()))
}

// NewSeededTransactionGenerator creates a generator whose output is
// reproducible for a given seed.
func NewSeededTransactionGenerator(seed uint64) TransactionGeneratorInterface {
	return &transactionGenerator{
		faker:        gofakeit.New(seed),
		merchantPool: initializeMerchantPool(),
	}
}

func initializeMerchantPool() []demoMerchant {
	return []demoMerchant{
		// Food delivery and dining
		{"Swiggy", models.CategoryFood},
		{"Zomato", models.CategoryFood},
		{"Domino's Pizza", models.CategoryFood},
		{"Starbucks", models.CategoryFood},
		{"Haldiram's", models.CategoryFood},
		{"Chai Point", models.CategoryFood},

		// Groceries
		{"BigBasket", models.CategoryGroceries},
		{"Blinkit", models.CategoryGroceries},
		{"DMart", models.CategoryGroceries},
		{"Zepto", models.CategoryGroceries},
		{"Reliance Fresh", models.CategoryGroceries},

		// Transport
		{"Uber", models.CategoryTransport},
		{"Ola", models.CategoryTransport},
		{"Rapido", models.CategoryTransport},
		{"Indian Oil", models.CategoryTransport},
		{"Delhi Metro", models.CategoryTransport},

		// Shopping
		{"Amazon", models.CategoryShopping},
		{"Flipkart", models.CategoryShopping},
		{"Myntra", models.CategoryShopping},
		{"Nykaa", models.CategoryShopping},
		{"Croma", models.CategoryShopping},

		// Entertainment
		{"BookMyShow", models.CategoryEntertainment},
		{"PVR Cinemas", models.CategoryEntertainment},
		{"Steam", models.CategoryEntertainment},

		// Health
		{"Apollo Pharmacy", models.CategoryHealth},
		{"PharmEasy", models.CategoryHealth},
		{"Cult.fit", models.CategoryHealth},

		// Education and travel
		{"Udemy", models.CategoryEducation},
		{"Coursera", models.CategoryEducation},
		{"MakeMyTrip", models.CategoryTravel},
		{"IRCTC", models.CategoryTravel},
		{"IndiGo", models.CategoryTravel},
	}
}

// GenerateAmount returns a positive amount typical for category.
func (g *transactionGenerator) GenerateAmount(category string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.amountLocked(category)
}

func (g *transactionGenerator) amountLocked(category string) decimal.Decimal {
	minValue, maxValue := amountRange(category)
	return decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(2)
}

func amountRange(category string) (float64, float64) {
	ranges := map[string][2]float64{
		models.CategoryFood:          {80, 900},
		models.CategoryGroceries:     {150, 3500},
		models.CategoryTransport:     {50, 1200},
		models.CategoryShopping:      {300, 8000},
		models.CategoryEntertainment: {150, 1500},
		models.CategoryBills:         {400, 3000},
		models.CategoryHealth:        {100, 2500},
		models.CategoryEducation:     {400, 5000},
		models.CategoryTravel:        {1500, 15000},
		models.CategoryRent:          {12000, 35000},
		models.CategorySalary:        {45000, 120000},
	}

	if r, ok := ranges[category]; ok {
		return r[0], r[1]
	}
	return 100, 1000
}

// GenerateHistory produces count expenses on random days in [start, end],
// sorted by date.
func (g *transactionGenerator) GenerateHistory(userID uuid.UUID, start, end time.Time, count int) []models.Transaction {
	if count <= 0 || end.Before(start) {
		return []models.Transaction{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	txns := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		merchant := g.merchantPool[g.faker.IntN(len(g.merchantPool))]
		day := g.faker.DateRange(start, end)
		txns = append(txns, demoTransaction(userID, day, merchant.Name, merchant.Category, g.amountLocked(merchant.Category).Neg()))
	}

	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date < txns[j].Date })
	return txns
}

// GenerateSalaries produces one salary credit on the first of every month in range.
func (g *transactionGenerator) GenerateSalaries(userID uuid.UUID, start, end time.Time) []models.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	employer := g.faker.Company()
	base := g.amountLocked(models.CategorySalary).Round(-3)

	var txns []models.Transaction
	for month := firstOfMonth(start); !month.After(end); month = month.AddDate(0, 1, 0) {
		payday := time.Date(month.Year(), month.Month(), salaryDay, 0, 0, 0, 0, time.UTC)
		if payday.Before(start) {
			continue
		}
		txns = append(txns, demoTransaction(userID, payday, "Salary - "+employer, models.CategorySalary, base))
	}
	return txns
}

// GenerateBills produces rent and utility payments early in every month.
func (g *transactionGenerator) GenerateBills(userID uuid.UUID, start, end time.Time) []models.Transaction {
	bills := []demoMerchant{
		{"House Rent", models.CategoryRent},
		{"Electricity Bill", models.CategoryBills},
		{"Airtel Broadband", models.CategoryBills},
		{"Jio Recharge", models.CategoryBills},
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rent := g.amountLocked(models.CategoryRent).Round(-2)

	var txns []models.Transaction
	for month := firstOfMonth(start); !month.After(end); month = month.AddDate(0, 1, 0) {
		for _, bill := range bills {
			day := time.Date(month.Year(), month.Month(), g.faker.IntRange(billWindowStart, billWindowEnd), 0, 0, 0, 0, time.UTC)
			if day.Before(start) || day.After(end) {
				continue
			}
			amount := rent
			if bill.Category != models.CategoryRent {
				amount = g.amountLocked(bill.Category)
			}
			txns = append(txns, demoTransaction(userID, day, bill.Name, bill.Category, amount.Neg()))
		}
	}
	return txns
}

func demoTransaction(userID uuid.UUID, day time.Time, name, category string, amount decimal.Decimal) models.Transaction {
	return models.Transaction{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     day.Format(models.DateLayout),
		Name:     name,
		Category: category,
		Icon:     models.IconForCategory(category),
		Amount:   amount,
		Source:   models.TransactionSourceDemo,
	}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
