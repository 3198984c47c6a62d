package dto

// AmountRequest carries the value attached to a call, in base units
type AmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// BalanceResponse represents the API response for an account balance
type BalanceResponse struct {
	Principal     string `json:"principal"`
	Balance       string `json:"balance"`
	BalanceUnits  string `json:"balanceUnits"`
	TransferCount uint64 `json:"transferCount"`
}
