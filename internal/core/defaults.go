package core

// DefaultCategories is the fixed set seeded on first use. It is passed into
// the seeding operation explicitly; nothing else mutates it.
var DefaultCategories = []Category{
	{Name: "Shop Raw Material", Type: Expense, Icon: "Package", Color: "#f59e0b", IsDefault: true},
	{Name: "Electricity Bills", Type: Expense, Icon: "Zap", Color: "#eab308", IsDefault: true},
	{Name: "Personal Spending", Type: Expense, Icon: "User", Color: "#8b5cf6", IsDefault: true},
	{Name: "Home Spending from Shop", Type: Expense, Icon: "Home", Color: "#ec4899", IsDefault: true},
	{Name: "Other Expenses", Type: Expense, Icon: "MoreHorizontal", Color: "#6b7280", IsDefault: true},
	{Name: "Shop Earnings", Type: Income, Icon: "TrendingUp", Color: "#10b981", IsDefault: true},
}

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint"; Range boundaries are inclusive.
type TransactionFilter struct {
	Type     TransactionType
	Category string
	Range    *DateRange
}

// Matches reports whether t satisfies every set constraint.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Range != nil && !f.Range.Contains(t.Date) {
		return false
	}
	return true
}
