package services

import (
	"sort"
	"strings"

	"pocket-budget/internal/models"
)

const fuzzyMatchThreshold = 0.8

type categoryService struct {
	merchantPatterns []merchantPattern
	keywordPatterns  []keywordPattern
}

type merchantPattern struct {
	merchant string
	category string
}

type keywordPattern struct {
	keywords []string
	category string
}

// NewCategoryService creates a new CategoryServiceInterface instance
func NewCategoryService() CategoryServiceInterface {
	return &categoryService{
		merchantPatterns: initMerchantPatterns(),
		keywordPatterns:  initKeywordPatterns(),
	}
}

// CategorizeByName tries known merchants first, then description keywords,
// then a fuzzy merchant match. Unmatched names fall back to Other.
func (s *categoryService) CategorizeByName(name string) *models.CategorizationResult {
	if strings.TrimSpace(name) == "" {
		return fallbackCategorization()
	}

	normalized := normalizeForMatching(name)
	for _, p := range s.merchantPatterns {
		if strings.Contains(normalized, normalizeForMatching(p.merchant)) {
			return &models.CategorizationResult{
				Category:       p.category,
				Icon:           models.IconForCategory(p.category),
				MatchedPattern: "merchant:" + p.merchant,
			}
		}
	}

	lower := strings.ToLower(name)
	for _, p := range s.keywordPatterns {
		for _, keyword := range p.keywords {
			if containsWord(lower, keyword) {
				return &models.CategorizationResult{
					Category:       p.category,
					Icon:           models.IconForCategory(p.category),
					MatchedPattern: "keyword:" + keyword,
				}
			}
		}
	}

	if merchant, score := s.FuzzyMatchMerchant(name); merchant != "" && score >= fuzzyMatchThreshold {
		for _, p := range s.merchantPatterns {
			if p.merchant == merchant {
				return &models.CategorizationResult{
					Category:       p.category,
					Icon:           models.IconForCategory(p.category),
					MatchedPattern: "fuzzy:" + merchant,
				}
			}
		}
	}

	return fallbackCategorization()
}

// FuzzyMatchMerchant performs fuzzy string matching on merchant names
func (s *categoryService) FuzzyMatchMerchant(input string) (string, float64) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", 0.0
	}

	var bestMatch string
	var bestScore float64

	for _, p := range s.merchantPatterns {
		score := calculateSimilarity(input, strings.ToLower(p.merchant))
		if score > bestScore {
			bestScore = score
			bestMatch = p.merchant
		}
	}

	return bestMatch, bestScore
}

// Categorize fills in Category and Icon when the category is empty. An income
// row that matches nothing is filed under Income rather than Other.
func (s *categoryService) Categorize(transaction *models.Transaction) {
	if transaction == nil {
		return
	}

	if strings.TrimSpace(transaction.Category) == "" {
		result := s.CategorizeByName(transaction.Name)
		transaction.Category = result.Category
		if result.Category == models.CategoryOther && transaction.Amount.IsPositive() {
			transaction.Category = models.CategoryIncome
		}
	}

	if transaction.Icon == "" {
		transaction.Icon = models.IconForCategory(transaction.Category)
	}
}

func fallbackCategorization() *models.CategorizationResult {
	return &models.CategorizationResult{
		Category: models.CategoryOther,
		Icon:     models.IconForCategory(models.CategoryOther),
	}
}

// initMerchantPatterns lists merchants longest first so "Amazon Prime" wins over "Amazon".
func initMerchantPatterns() []merchantPattern {
	patterns := []merchantPattern{
		// Food delivery and dining
		{"Swiggy", models.CategoryFood},
		{"Zomato", models.CategoryFood},
		{"Starbucks", models.CategoryFood},
		{"McDonald", models.CategoryFood},
		{"Domino", models.CategoryFood},
		{"Pizza Hut", models.CategoryFood},
		{"KFC", models.CategoryFood},
		{"Subway", models.CategoryFood},
		{"Chipotle", models.CategoryFood},

		// Groceries
		{"BigBasket", models.CategoryGroceries},
		{"Blinkit", models.CategoryGroceries},
		{"Zepto", models.CategoryGroceries},
		{"DMart", models.CategoryGroceries},
		{"Whole Foods", models.CategoryGroceries},
		{"Trader Joe", models.CategoryGroceries},
		{"Walmart", models.CategoryGroceries},
		{"Costco", models.CategoryGroceries},

		// Transport
		{"Uber", models.CategoryTransport},
		{"Ola Cabs", models.CategoryTransport},
		{"Rapido", models.CategoryTransport},
		{"Lyft", models.CategoryTransport},
		{"Indian Oil", models.CategoryTransport},
		{"Shell", models.CategoryTransport},
		{"Metro", models.CategoryTransport},

		// Shopping
		{"Amazon", models.CategoryShopping},
		{"Flipkart", models.CategoryShopping},
		{"Myntra", models.CategoryShopping},
		{"Ajio", models.CategoryShopping},
		{"Ikea", models.CategoryShopping},
		{"Best Buy", models.CategoryShopping},

		// Subscriptions
		{"Netflix", models.CategorySubscriptions},
		{"Spotify", models.CategorySubscriptions},
		{"Amazon Prime", models.CategorySubscriptions},
		{"YouTube Premium", models.CategorySubscriptions},
		{"Hotstar", models.CategorySubscriptions},
		{"iCloud", models.CategorySubscriptions},

		// Entertainment
		{"BookMyShow", models.CategoryEntertainment},
		{"PVR", models.CategoryEntertainment},
		{"Steam", models.CategoryEntertainment},

		// Bills
		{"Airtel", models.CategoryBills},
		{"Jio", models.CategoryBills},
		{"Vodafone", models.CategoryBills},
		{"Verizon", models.CategoryBills},
		{"Comcast", models.CategoryBills},

		// Health
		{"Apollo", models.CategoryHealth},
		{"PharmEasy", models.CategoryHealth},
		{"1mg", models.CategoryHealth},
		{"CVS", models.CategoryHealth},
		{"Walgreens", models.CategoryHealth},

		// Travel
		{"MakeMyTrip", models.CategoryTravel},
		{"IndiGo", models.CategoryTravel},
		{"Air India", models.CategoryTravel},
		{"IRCTC", models.CategoryTravel},
		{"Airbnb", models.CategoryTravel},
		{"Marriott", models.CategoryTravel},

		// Education
		{"Coursera", models.CategoryEducation},
		{"Udemy", models.CategoryEducation},
		{"Byju", models.CategoryEducation},
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return len(patterns[i].merchant) > len(patterns[j].merchant)
	})
	return patterns
}

// initKeywordPatterns initializes description keyword patterns
func initKeywordPatterns() []keywordPattern {
	return []keywordPattern{
		{keywords: []string{"salary", "payroll", "paycheck", "wages"}, category: models.CategorySalary},
		{keywords: []string{"refund", "cashback", "interest", "dividend", "deposit"}, category: models.CategoryIncome},
		{keywords: []string{"rent", "landlord", "lease"}, category: models.CategoryRent},
		{keywords: []string{"electricity", "water bill", "gas bill", "broadband", "internet", "recharge", "utility"}, category: models.CategoryBills},
		{keywords: []string{"restaurant", "cafe", "coffee", "lunch", "dinner", "breakfast"}, category: models.CategoryFood},
		{keywords: []string{"grocery", "groceries", "supermarket", "vegetables"}, category: models.CategoryGroceries},
		{keywords: []string{"fuel", "petrol", "diesel", "taxi", "cab", "parking", "toll"}, category: models.CategoryTransport},
		{keywords: []string{"pharmacy", "hospital", "doctor", "clinic", "medicine"}, category: models.CategoryHealth},
		{keywords: []string{"tuition", "course", "books", "school", "college"}, category: models.CategoryEducation},
		{keywords: []string{"flight", "hotel", "train", "airline"}, category: models.CategoryTravel},
		{keywords: []string{"movie", "cinema", "concert", "game"}, category: models.CategoryEntertainment},
		{keywords: []string{"subscription", "membership"}, category: models.CategorySubscriptions},
	}
}

// containsWord matches keyword at word boundaries so "rent" does not match "current".
func containsWord(text, keyword string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			return false
		}
		pos := start + idx
		end := pos + len(keyword)
		if (pos == 0 || !isWordByte(text[pos-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = pos + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// calculateSimilarity calculates the similarity score between two strings using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// normalizeForMatching normalizes strings for consistent matching
func normalizeForMatching(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "", "'", "", ".", "").Replace(s)
}
