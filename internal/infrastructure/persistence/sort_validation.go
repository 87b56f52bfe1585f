package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"unit_price": true,
	"on_hand":    true,
}

// RuleSortFields contains allowed sort fields for tax and discount rules
var RuleSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"kind":       true,
	"value":      true,
}

// CounterpartySortFields contains allowed sort fields for counterparties
var CounterpartySortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"role":       true,
}

// RecordSortFields contains allowed sort fields for ledger records
var RecordSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"number":         true,
	"kind":           true,
	"due_date":       true,
	"total":          true,
	"amount_settled": true,
}

// PaymentSortFields contains allowed sort fields for the payment registers
var PaymentSortFields = map[string]bool{
	"paid_at":    true,
	"created_at": true,
	"amount":     true,
	"method":     true,
}
