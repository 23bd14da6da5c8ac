package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/domain/repositories"
	"wealthline.backend/internal/infrastructure/events"
	"wealthline.backend/pkg/logger"
)

// WithdrawalConfig holds the payout handoff rules.
type WithdrawalConfig struct {
	WhatsAppNumber string
	MinAmount      decimal.Decimal
	FeeAmount      decimal.Decimal
}

// WithdrawSummary feeds the withdraw page.
type WithdrawSummary struct {
	Balance       decimal.Decimal `json:"balance"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Country       string          `json:"country"`
	KYCStatus     string          `json:"kycStatus"`
	MinWithdrawal decimal.Decimal `json:"minWithdrawal"`
	Fee           decimal.Decimal `json:"fee"`
}

// WithdrawalRequestedEvent is published for every prepared handoff.
type WithdrawalRequestedEvent struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	BankName    string          `json:"bank_name"`
	AccountType string          `json:"account_type"`
}

// WithdrawalUsecase checks payout requests and prepares the manual handoff
type WithdrawalUsecase struct {
	balances repositories.BalanceRepository
	profiles repositories.ProfileRepository
	events   EventPublisher
	cfg      WithdrawalConfig
}

func NewWithdrawalUsecase(
	balances repositories.BalanceRepository,
	profiles repositories.ProfileRepository,
	publisher EventPublisher,
	cfg WithdrawalConfig,
) *WithdrawalUsecase {
	return &WithdrawalUsecase{balances: balances, profiles: profiles, events: publisher, cfg: cfg}
}

// ParseAmount keeps digits and dots only. Empty or malformed input is zero.
func ParseAmount(input string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, input)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CheckEligibility applies, in order: required fields, minimum, balance.
func (u *WithdrawalUsecase) CheckEligibility(form entities.WithdrawalForm, balance decimal.Decimal) entities.Eligibility {
	amount := ParseAmount(form.Amount)
	out := entities.Eligibility{Amount: amount}

	required := []string{form.Amount, form.BankName, form.AccountName, form.RoutingNumber, form.AccountNumber}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			out.Reason = "Fill all required fields."
			return out
		}
	}
	if amount.LessThan(u.cfg.MinAmount) {
		out.Reason = "Minimum withdrawal is " + entities.FormatMoney(u.cfg.MinAmount) + "."
		return out
	}
	if !amount.IsPositive() || amount.GreaterThan(balance) {
		out.Reason = "Amount exceeds your balance (" + entities.FormatMoney(balance) + ")."
		return out
	}

	out.Eligible = true
	return out
}

// Summary loads what the withdraw page shows before any input.
func (u *WithdrawalUsecase) Summary(ctx context.Context, identity *entities.Identity) (*WithdrawSummary, error) {
	balance, profile, err := u.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &WithdrawSummary{
		Balance:       balance,
		Name:          profile.DisplayName(),
		Email:         contactEmail(profile, identity),
		Country:       countryOrDash(profile),
		KYCStatus:     string(kycOf(profile)),
		MinWithdrawal: u.cfg.MinAmount,
		Fee:           u.cfg.FeeAmount,
	}, nil
}

// Prepare validates a request and returns the WhatsApp handoff. Balances
// are never changed here.
func (u *WithdrawalUsecase) Prepare(ctx context.Context, identity *entities.Identity, form entities.WithdrawalForm) (*entities.WithdrawalHandoff, error) {
	balance, profile, err := u.load(ctx, identity)
	if err != nil {
		return nil, err
	}

	elig := u.CheckEligibility(form, balance)
	if !elig.Eligible {
		return nil, domainerrors.Validation(elig.Reason)
	}

	if form.AccountType == "" {
		form.AccountType = entities.AccountTypeChecking
	}
	if form.AccountType != entities.AccountTypeChecking && form.AccountType != entities.AccountTypeSavings {
		return nil, domainerrors.Validation("Select checking or savings.")
	}

	msg := u.message(form, elig.Amount, balance, profile, identity)
	handoff := &entities.WithdrawalHandoff{
		Eligibility: elig,
		Message:     msg,
		Link:        WhatsAppLink(u.cfg.WhatsAppNumber, msg),
		Fee:         u.cfg.FeeAmount,
		Balance:     balance,
	}

	event := WithdrawalRequestedEvent{
		UserID:      identity.UserID.String(),
		Amount:      elig.Amount,
		Balance:     balance,
		BankName:    strings.TrimSpace(form.BankName),
		AccountType: form.AccountType,
	}
	if err := u.events.Publish(ctx, events.RoutingWithdrawalRequested, event); err != nil {
		logger.Warn(ctx, "Failed to publish withdrawal event", zap.Error(err))
	}
	return handoff, nil
}

func (u *WithdrawalUsecase) load(ctx context.Context, identity *entities.Identity) (decimal.Decimal, *entities.Profile, error) {
	if identity == nil {
		return decimal.Zero, nil, domainerrors.Unauthenticated("Sign in to continue.")
	}

	balance := decimal.Zero
	b, err := u.balances.GetByUser(ctx, identity.UserID)
	switch {
	case err == nil:
		balance = b.Amount
	case !errors.Is(err, domainerrors.ErrNotFound):
		return decimal.Zero, nil, err
	}

	profile, err := u.profiles.GetByID(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return decimal.Zero, nil, err
		}
		profile = nil
	}
	return balance, profile, nil
}

func (u *WithdrawalUsecase) message(form entities.WithdrawalForm, amount, balance decimal.Decimal, profile *entities.Profile, identity *entities.Identity) string {
	swift := strings.TrimSpace(form.SWIFT)
	address := strings.TrimSpace(form.BeneficiaryAddress)
	note := strings.TrimSpace(form.Note)
	email := contactEmail(profile, identity)

	return joinLines(
		"Hi, I want to proceed with a withdrawal request.",
		"Withdrawal details:",
		"• Amount: "+entities.FormatMoney(amount)+" ("+form.Amount+")",
		"• Bank name: "+form.BankName,
		"• Account type: "+form.AccountType,
		"• Account name: "+form.AccountName,
		"• Routing number: "+form.RoutingNumber,
		"• Account number: "+form.AccountNumber,
		lineIf(swift != "", "• SWIFT/BIC: "+swift),
		lineIf(address != "", "• Beneficiary address: "+address),
		lineIf(note != "", "• Note: "+note),
		"Balance check:",
		"• Current balance: "+entities.FormatMoney(balance),
		"• Minimum withdrawal: "+entities.FormatMoney(u.cfg.MinAmount),
		"Fee notice:",
		"• One-time withdrawal processing fee: "+entities.FormatMoney(u.cfg.FeeAmount),
		"User details:",
		"• Name: "+profile.DisplayName(),
		lineIf(email != "", "• Email: "+email),
		"• Country: "+countryOrDash(profile),
		"• KYC: "+string(kycOf(profile)),
		"Reason: Payment of withdrawal fee and confirmation to proceed with payout processing.",
	)
}

func contactEmail(profile *entities.Profile, identity *entities.Identity) string {
	if profile != nil && profile.Email != "" {
		return profile.Email
	}
	if identity != nil {
		return identity.Email
	}
	return ""
}

func countryOrDash(profile *entities.Profile) string {
	if profile == nil || profile.Country.String == "" {
		return "—"
	}
	return profile.Country.String
}

func kycOf(profile *entities.Profile) entities.KYCStatus {
	if profile == nil || profile.KYCStatus == "" {
		return entities.KYCUnverified
	}
	return profile.KYCStatus
}
