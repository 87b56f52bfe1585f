package ledger

import "github.com/erp/ledger/internal/domain/shared"

// Kind identifies the commercial transaction a ledger record represents
type Kind string

const (
	KindSale           Kind = "sale"
	KindPurchase       Kind = "purchase"
	KindSalesReturn    Kind = "sales-return"
	KindPurchaseReturn Kind = "purchase-return"
)

// AllKinds lists every ledger record kind
var AllKinds = []Kind{KindSale, KindPurchase, KindSalesReturn, KindPurchaseReturn}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", shared.NewValidationError("INVALID_KIND", "Unknown ledger record kind: "+s)
	}
	return k, nil
}

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindSale, KindPurchase, KindSalesReturn, KindPurchaseReturn:
		return true
	}
	return false
}

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

// Side tells which side of the books a record's balance sits on
type Side string

const (
	SideReceivable Side = "receivable" // counterparty owes us
	SidePayable    Side = "payable"    // we owe the counterparty
)

// Side returns the side of the books the record's balance belongs to
func (k Kind) Side() Side {
	switch k {
	case KindSale, KindPurchaseReturn:
		return SideReceivable
	default:
		return SidePayable
	}
}

// KindsOnSide returns the kinds whose balance sits on the given side
func KindsOnSide(side Side) []Kind {
	if side == SideReceivable {
		return []Kind{KindSale, KindPurchaseReturn}
	}
	return []Kind{KindPurchase, KindSalesReturn}
}

// StockDirection tells whether committing a record removes or adds stock
type StockDirection int

const (
	StockOut StockDirection = iota + 1
	StockIn
)

// StockDirection returns how committing a record of this kind moves stock
func (k Kind) StockDirection() StockDirection {
	switch k {
	case KindSale, KindPurchaseReturn:
		return StockOut
	default:
		return StockIn
	}
}

// RemovesStock reports whether committing this kind withdraws stock
func (k Kind) RemovesStock() bool {
	return k.StockDirection() == StockOut
}

// CounterpartyRole returns the role the counterparty must have
func (k Kind) CounterpartyRole() Role {
	switch k {
	case KindSale, KindSalesReturn:
		return RoleCustomer
	default:
		return RoleSupplier
	}
}

// IsReturn reports whether the kind is a return
func (k Kind) IsReturn() bool {
	return k == KindSalesReturn || k == KindPurchaseReturn
}

// OriginKind returns the kind a return may reference, or "" for non-returns
func (k Kind) OriginKind() Kind {
	switch k {
	case KindSalesReturn:
		return KindSale
	case KindPurchaseReturn:
		return KindPurchase
	}
	return ""
}

// NumberPrefix returns the document number prefix
func (k Kind) NumberPrefix() string {
	switch k {
	case KindSale:
		return "SL"
	case KindPurchase:
		return "PU"
	case KindSalesReturn:
		return "SR"
	case KindPurchaseReturn:
		return "PR"
	}
	return "LR"
}
