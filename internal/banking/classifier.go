package banking

import (
	"strings"

	"github.com/hyperengineering/finquest/internal/types"
)

// Spending categories assigned to transactions.
const (
	CategoryFoodDining    = "food_dining"
	CategoryGrocery       = "grocery"
	CategorySubscriptions = "subscriptions"
	CategoryMovies        = "movies"
	CategoryEntertainment = "entertainment"
	CategoryCab           = "cab"
	CategoryTransport     = "transportation"
	CategoryShopping      = "shopping"
	CategoryTravel        = "travel"
	CategoryBills         = "bills_utilities"
	CategoryHealthcare    = "healthcare"
	CategoryEducation     = "education"
	CategoryIncome        = "income"
	CategoryOther         = "other"
)

// Classifier maps a transaction description to a spending category.
type Classifier interface {
	Classify(description string) string
}

type keywordRule struct {
	keyword  string
	category string
}

// defaultRules are checked in order; the first matching keyword wins.
var defaultRules = []keywordRule{
	{"grocery", CategoryGrocery},
	{"supermarket", CategoryGrocery},
	{"coffee", CategoryFoodDining},
	{"cafe", CategoryFoodDining},
	{"restaurant", CategoryFoodDining},
	{"pizza", CategoryFoodDining},
	{"netflix", CategorySubscriptions},
	{"spotify", CategorySubscriptions},
	{"subscription", CategorySubscriptions},
	{"movie", CategoryMovies},
	{"cinema", CategoryMovies},
	{"theater", CategoryMovies},
	{"uber", CategoryCab},
	{"lyft", CategoryCab},
	{"taxi", CategoryCab},
	{"cab", CategoryCab},
	{"amazon", CategoryShopping},
	{"store", CategoryShopping},
	{"gas", CategoryTravel},
	{"airline", CategoryTravel},
	{"hotel", CategoryTravel},
	{"electric", CategoryBills},
	{"utility", CategoryBills},
	{"pharmacy", CategoryHealthcare},
	{"tuition", CategoryEducation},
	{"salary", CategoryIncome},
	{"payroll", CategoryIncome},
}

// bankCategories maps a bank feed's primary category to ours.
var bankCategories = map[string]string{
	"Food and Drink":      CategoryFoodDining,
	"Transportation":      CategoryTransport,
	"Entertainment":       CategoryEntertainment,
	"Shops":               CategoryShopping,
	"Bills and Utilities": CategoryBills,
	"Healthcare":          CategoryHealthcare,
	"Education":           CategoryEducation,
	"Travel":              CategoryTravel,
	"Recreation":          CategoryEntertainment,
	"Service":             CategoryOther,
}

// KeywordClassifier classifies descriptions by case-insensitive keyword.
type KeywordClassifier struct {
	rules []keywordRule
}

// Compile-time interface check
var _ Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier returns a classifier with the built-in rules.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultRules}
}

// Classify returns the category of the first rule whose keyword appears
// in description, or CategoryOther.
func (k *KeywordClassifier) Classify(description string) string {
	d := strings.ToLower(description)
	for _, r := range k.rules {
		if strings.Contains(d, r.keyword) {
			return r.category
		}
	}
	return CategoryOther
}

// MapBankCategory converts a bank feed category path to ours using its
// primary entry.
func MapBankCategory(path []string) string {
	if len(path) == 0 {
		return CategoryOther
	}
	if c, ok := bankCategories[path[0]]; ok {
		return c
	}
	return CategoryOther
}

// Categorize returns txs with Category filled in. A bank-supplied category
// takes precedence over the description; unmatched credits count as income.
func Categorize(c Classifier, txs []types.Transaction) []types.Transaction {
	out := make([]types.Transaction, len(txs))
	for i, tx := range txs {
		switch {
		case len(tx.BankCategory) > 0:
			tx.Category = MapBankCategory(tx.BankCategory)
		default:
			tx.Category = c.Classify(tx.Description)
		}
		if tx.Category == CategoryOther && tx.Amount > 0 {
			tx.Category = CategoryIncome
		}
		out[i] = tx
	}
	return out
}
