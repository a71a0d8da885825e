// Package model defines the core domain models used throughout the application.
package model

// Domain indicates which side of the income statement a category belongs to.
type Domain string

const (
	// DomainRevenue marks categories that collect income accounts.
	DomainRevenue Domain = "revenue"
	// DomainExpense marks categories that collect expense accounts.
	DomainExpense Domain = "expense"
)

// Category is one standardized financial-reporting bucket that ledger
// accounts are classified into. Categories are loaded once at startup and
// read-only afterwards; the position of a category in the configured list is
// its matching priority (first match wins).
type Category struct {
	Key             string
	Label           string
	Domain          Domain
	Keywords        []string
	NativeTypeHints []string
}

// Fallbacks names the categories assigned when no rule matches. They are what
// guarantees that every amount lands in exactly one category.
type Fallbacks struct {
	Revenue string
	Expense string
}
