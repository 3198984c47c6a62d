package ledger

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// ValueTransfer moves value between principals and registry custody.
// Both directions run inside the transaction carried by ctx and fail without
// side effects when the amount cannot be covered.
type ValueTransfer interface {
	// Receive moves amount from the principal into custody
	Receive(ctx context.Context, from entity.Principal, amount entity.Amount) error

	// Send moves amount from custody to the principal's balance
	Send(ctx context.Context, to entity.Principal, amount entity.Amount) error
}
