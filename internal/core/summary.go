package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	YearMonth
	Total      decimal.Decimal
	Count      int
	ByCategory []CategoryAmount // one entry per category, declaration order
}

// MonthTotal is one point of a spending trend.
type MonthTotal struct {
	YearMonth
	Total decimal.Decimal
}
