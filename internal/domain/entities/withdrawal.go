package entities

import "github.com/shopspring/decimal"

const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
)

// WithdrawalForm is a payout request as entered by the user.
type WithdrawalForm struct {
	Amount             string `json:"amount" form:"amount"`
	BankName           string `json:"bank_name" form:"bank_name"`
	AccountType        string `json:"account_type" form:"account_type"`
	AccountName        string `json:"account_name" form:"account_name"`
	RoutingNumber      string `json:"routing_number" form:"routing_number"`
	AccountNumber      string `json:"account_number" form:"account_number"`
	SWIFT              string `json:"swift" form:"swift"`
	BeneficiaryAddress string `json:"beneficiary_address" form:"beneficiary_address"`
	Note               string `json:"note" form:"note"`
}

// Eligibility is the outcome of the withdrawal rules. Reason is empty when eligible.
type Eligibility struct {
	Eligible bool            `json:"eligible"`
	Reason   string          `json:"reason,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// WithdrawalHandoff is the prepared manual payout request.
type WithdrawalHandoff struct {
	Eligibility
	Message string          `json:"message"`
	Link    string          `json:"link"`
	Fee     decimal.Decimal `json:"fee"`
	Balance decimal.Decimal `json:"balance"`
}
