package services

import (
	"strings"
	"time"

	"pocket-budget/internal/models"

	"github.com/shopspring/decimal"
)

// achievementRule is one catalog entry. measure returns the observed value and
// the value needed to unlock it.
type achievementRule struct {
	id          string
	name        string
	description string
	icon        string
	measure     func(st *achievementStats) (value, target float64)
}

type monthTotals struct {
	income decimal.Decimal
	spent  decimal.Decimal
}

// achievementStats is computed once per evaluation and shared by every rule.
type achievementStats struct {
	count             int
	incomeCount       int
	manualCount       int
	importedCount     int
	distinctDates     int
	expenseCategories int
	categories        int
	largestMagnitude  decimal.Decimal
	totalIncome       decimal.Decimal
	totalSpent        decimal.Decimal
	months            map[string]*monthTotals
	currentMonth      string
}

var achievementCatalog = []achievementRule{
	{"first_step", "First Step", "Record your first transaction", "👣", func(st *achievementStats) (float64, float64) {
		return float64(st.count), 1
	}},
	{"getting_started", "Getting Started", "Record 10 transactions", "📝", func(st *achievementStats) (float64, float64) {
		return float64(st.count), 10
	}},
	{"half_century", "Half Century", "Record 50 transactions", "🏏", func(st *achievementStats) (float64, float64) {
		return float64(st.count), 50
	}},
	{"centurion", "Centurion", "Record 100 transactions", "💯", func(st *achievementStats) (float64, float64) {
		return float64(st.count), 100
	}},
	{"consistent_tracker", "Consistent Tracker", "Log transactions on 7 different days", "📅", func(st *achievementStats) (float64, float64) {
		return float64(st.distinctDates), 7
	}},
	{"month_of_tracking", "Month of Tracking", "Log transactions on 30 different days", "🗓️", func(st *achievementStats) (float64, float64) {
		return float64(st.distinctDates), 30
	}},
	{"big_ticket", "Big Ticket", "Record a single transaction of 10,000 or more", "💎", func(st *achievementStats) (float64, float64) {
		return st.largestMagnitude.InexactFloat64(), 10000
	}},
	{"super_saver", "Super Saver", "Save at least 50% of this month's income", "🏦", func(st *achievementStats) (float64, float64) {
		m, ok := st.months[st.currentMonth]
		if !ok {
			return 0, 50
		}
		return percentSaved(m.income, m.spent), 50
	}},
	{"payday", "Payday", "Record your first income", "💰", func(st *achievementStats) (float64, float64) {
		return float64(st.incomeCount), 1
	}},
	{"steady_income", "Steady Income", "Record 3 incomes", "📈", func(st *achievementStats) (float64, float64) {
		return float64(st.incomeCount), 3
	}},
	{"category_explorer", "Category Explorer", "Spend in 5 different categories", "🧭", func(st *achievementStats) (float64, float64) {
		return float64(st.expenseCategories), 5
	}},
	{"well_rounded", "Well Rounded", "Use 10 different categories", "🌈", func(st *achievementStats) (float64, float64) {
		return float64(st.categories), 10
	}},
	{"regular", "Regular", "Track transactions in 3 different months", "🔁", func(st *achievementStats) (float64, float64) {
		return float64(len(st.months)), 3
	}},
	{"year_round", "Year Round", "Track transactions in 12 different months", "🎆", func(st *achievementStats) (float64, float64) {
		return float64(len(st.months)), 12
	}},
	{"in_the_green", "In the Green", "Finish a month with more income than spending", "🟢", func(st *achievementStats) (float64, float64) {
		return float64(st.positiveMonths()), 1
	}},
	{"saving_streak", "Saving Streak", "Finish 3 months with more income than spending", "🔥", func(st *achievementStats) (float64, float64) {
		return float64(st.positiveMonths()), 3
	}},
	{"statement_importer", "Statement Importer", "Import transactions from a statement file", "📥", func(st *achievementStats) (float64, float64) {
		return float64(st.importedCount), 1
	}},
	{"hands_on", "Hands On", "Enter 20 transactions by hand", "✍️", func(st *achievementStats) (float64, float64) {
		return float64(st.manualCount), 20
	}},
	{"high_earner", "High Earner", "Earn 1,00,000 in total", "🤑", func(st *achievementStats) (float64, float64) {
		return st.totalIncome.InexactFloat64(), 100000
	}},
	{"budget_master", "Budget Master", "Keep an overall savings rate of 20% or more", "👑", func(st *achievementStats) (float64, float64) {
		return percentSaved(st.totalIncome, st.totalSpent), 20
	}},
}

// AchievementCount is the size of the fixed catalog.
func AchievementCount() int {
	return len(achievementCatalog)
}

// EvaluateAchievements evaluates every catalog rule against txns. It is pure;
// now only decides which month is the current one.
func EvaluateAchievements(txns []models.Transaction, now time.Time) []models.Achievement {
	st := collectAchievementStats(txns, now)

	achievements := make([]models.Achievement, 0, len(achievementCatalog))
	for _, rule := range achievementCatalog {
		value, target := rule.measure(st)
		unlocked := value >= target
		achievements = append(achievements, models.Achievement{
			ID:          rule.id,
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
			Unlocked:    unlocked,
			Progress:    achievementProgress(value, target),
		})
	}
	return achievements
}

// SummarizeRewards scores evaluated achievements: 25 points per unlock.
func SummarizeRewards(achievements []models.Achievement, memberSince string) *models.RewardsSummary {
	unlocked := 0
	for _, a := range achievements {
		if a.Unlocked {
			unlocked++
		}
	}

	score := unlocked * models.PointsPerAchievement
	next, toNext := models.NextLevelForScore(score)
	return &models.RewardsSummary{
		Achievements:  achievements,
		UnlockedCount: unlocked,
		Score:         score,
		Level:         models.LevelForScore(score),
		NextLevel:     next,
		PointsToNext:  toNext,
		MemberSince:   memberSince,
	}
}

// FirstTransactionDate returns the earliest valid date in txns, or "".
func FirstTransactionDate(txns []models.Transaction) string {
	first := ""
	for i := range txns {
		if !models.IsISODate(txns[i].Date) {
			continue
		}
		if first == "" || txns[i].Date < first {
			first = txns[i].Date
		}
	}
	return first
}

func achievementProgress(value, target float64) int {
	if target <= 0 || value <= 0 {
		return 0
	}
	pct := decimal.NewFromFloat(value).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(target)).Floor().IntPart()
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func collectAchievementStats(txns []models.Transaction, now time.Time) *achievementStats {
	st := &achievementStats{
		months:       make(map[string]*monthTotals),
		currentMonth: now.Format("2006-01"),
	}

	dates := make(map[string]struct{})
	categories := make(map[string]struct{})
	expenseCategories := make(map[string]struct{})

	for i := range txns {
		t := &txns[i]
		st.count++

		switch t.Source {
		case models.TransactionSourceCSV, models.TransactionSourceOFX:
			st.importedCount++
		case models.TransactionSourceManual, "":
			st.manualCount++
		}

		category := strings.ToLower(strings.TrimSpace(t.Category))
		if category != "" {
			categories[category] = struct{}{}
		}

		if magnitude := t.Amount.Abs(); magnitude.GreaterThan(st.largestMagnitude) {
			st.largestMagnitude = magnitude
		}

		var month *monthTotals
		if models.IsISODate(t.Date) {
			dates[t.Date] = struct{}{}
			key := t.Date[:7]
			month = st.months[key]
			if month == nil {
				month = &monthTotals{}
				st.months[key] = month
			}
		}

		switch {
		case t.Amount.IsPositive():
			st.incomeCount++
			st.totalIncome = st.totalIncome.Add(t.Amount)
			if month != nil {
				month.income = month.income.Add(t.Amount)
			}
		case t.Amount.IsNegative():
			spent := t.Amount.Abs()
			st.totalSpent = st.totalSpent.Add(spent)
			if category != "" {
				expenseCategories[category] = struct{}{}
			}
			if month != nil {
				month.spent = month.spent.Add(spent)
			}
		}
	}

	st.distinctDates = len(dates)
	st.categories = len(categories)
	st.expenseCategories = len(expenseCategories)
	return st
}

func (st *achievementStats) positiveMonths() int {
	n := 0
	for _, m := range st.months {
		if m.income.GreaterThan(m.spent) {
			n++
		}
	}
	return n
}

// percentSaved is (income - spent) / income * 100, or 0 without income.
func percentSaved(income, spent decimal.Decimal) float64 {
	if !income.IsPositive() {
		return 0
	}
	return income.Sub(spent).Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
