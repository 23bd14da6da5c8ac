package usecases

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/domain/repositories"
	"wealthline.backend/pkg/logger"
)

const dashboardInvestmentLimit = 5

// PlanCard is a plan as shown on the invest/create page.
type PlanCard struct {
	*entities.Plan
	Featured     bool   `json:"featured"`
	Tier         string `json:"tier"`
	RangeText    string `json:"rangeText"`
	PurchaseLink string `json:"purchaseLink"`
}

type LandingView struct {
	PlanCount int            `json:"planCount"`
	Featured  *entities.Plan `json:"featured"`
}

type DashboardView struct {
	Email       string                 `json:"email"`
	FirstName   string                 `json:"firstName"`
	Initials    string                 `json:"initials"`
	KYCStatus   entities.KYCStatus     `json:"kycStatus"`
	Balance     decimal.Decimal        `json:"balance"`
	ActivePlan  *entities.ActivePlan   `json:"activePlan"`
	Investments []*entities.Investment `json:"investments"`
}

type InvestView struct {
	Investments   []*entities.Investment `json:"investments"`
	TotalInvested decimal.Decimal        `json:"totalInvested"`
	ActiveCount   int                    `json:"activeCount"`
}

type InvestCreateView struct {
	Plans      []*PlanCard `json:"plans"`
	FeaturedID *uuid.UUID  `json:"featuredId"`
	KYCStatus  string      `json:"kycStatus"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	ContactURL string      `json:"contactUrl"`
}

type ProfileView struct {
	Profile    *entities.Profile `json:"profile"`
	Initials   string            `json:"initials"`
	PreviewURL string            `json:"previewUrl,omitempty"`
}

// PagesUsecase assembles the data behind each gated page
type PagesUsecase struct {
	plans          repositories.PlanRepository
	balances       repositories.BalanceRepository
	userPlans      repositories.UserPlanRepository
	investments    repositories.InvestmentRepository
	profiles       repositories.ProfileRepository
	profileUC      *ProfileUsecase
	whatsAppNumber string
}

func NewPagesUsecase(repos AdminRepositories, profileUC *ProfileUsecase, whatsAppNumber string) *PagesUsecase {
	return &PagesUsecase{
		plans:          repos.Plans,
		balances:       repos.Balances,
		userPlans:      repos.UserPlans,
		investments:    repos.Investments,
		profiles:       repos.Profiles,
		profileUC:      profileUC,
		whatsAppNumber: whatsAppNumber,
	}
}

func (u *PagesUsecase) Landing(ctx context.Context) (*LandingView, error) {
	plans, err := u.plans.ListByMinAmount(ctx)
	if err != nil {
		return nil, domainerrors.Upstream("Failed to load plans: "+err.Error(), err)
	}
	view := &LandingView{PlanCount: len(plans)}
	if id, ok := entities.PickFeatured(plans); ok {
		for _, p := range plans {
			if p.ID == id {
				view.Featured = p
			}
		}
	}
	return view, nil
}

func (u *PagesUsecase) Dashboard(ctx context.Context, identity *entities.Identity) (*DashboardView, error) {
	view := &DashboardView{Email: identity.Email, Balance: decimal.Zero, KYCStatus: entities.KYCUnverified}

	balance, err := u.balances.GetByUser(ctx, identity.UserID)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if balance != nil {
		view.Balance = balance.Amount
	}

	active, err := u.userPlans.GetActiveByUser(ctx, identity.UserID)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	view.ActivePlan = active

	view.Investments, err = u.investments.ListByUser(ctx, identity.UserID, dashboardInvestmentLimit)
	if err != nil {
		return nil, err
	}

	profile, err := u.profiles.GetByID(ctx, identity.UserID)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if profile != nil {
		view.FirstName = profile.FirstName
		view.KYCStatus = kycOf(profile)
		view.Initials = entities.Initials(profile.FirstName, profile.LastName)
	} else {
		view.Initials = entities.Initials("", "")
	}
	return view, nil
}

func (u *PagesUsecase) Invest(ctx context.Context, identity *entities.Identity) (*InvestView, error) {
	list, err := u.investments.ListByUser(ctx, identity.UserID, 0)
	if err != nil {
		return nil, err
	}
	view := &InvestView{Investments: list, TotalInvested: decimal.Zero}
	for _, inv := range list {
		view.TotalInvested = view.TotalInvested.Add(inv.Amount)
		if inv.Status == entities.InvestmentActive {
			view.ActiveCount++
		}
	}
	return view, nil
}

// InvestCreate lists purchasable plans cheapest first. A failing plan store
// is reported as an upstream error.
func (u *PagesUsecase) InvestCreate(ctx context.Context, identity *entities.Identity) (*InvestCreateView, error) {
	plans, err := u.plans.ListByMinAmount(ctx)
	if err != nil {
		return nil, domainerrors.Upstream("Failed to load plans: "+err.Error(), err)
	}
	entities.SortPlansByMinAmount(plans)

	profile, err := u.profiles.GetByID(ctx, identity.UserID)
	if err := ignoreNotFound(err); err != nil {
		logger.Warn(ctx, "Profile lookup failed on plans page", zap.Error(err))
	}

	view := &InvestCreateView{
		Plans:      make([]*PlanCard, 0, len(plans)),
		KYCStatus:  string(kycOf(profile)),
		Name:       profile.DisplayName(),
		Email:      contactEmail(profile, identity),
		ContactURL: WhatsAppLink(u.whatsAppNumber, ""),
	}
	featuredID, hasFeatured := entities.PickFeatured(plans)
	if hasFeatured {
		view.FeaturedID = &featuredID
	}

	for _, p := range plans {
		view.Plans = append(view.Plans, &PlanCard{
			Plan:         p,
			Featured:     hasFeatured && p.ID == featuredID,
			Tier:         entities.PlanTier(p.Name),
			RangeText:    entities.RangeText(p.MinAmount, p.MaxAmount),
			PurchaseLink: WhatsAppLink(u.whatsAppNumber, PurchaseMessage(p, profile, view.Email)),
		})
	}
	return view, nil
}

// ProfilePage returns the profile with a preview link for its ID document.
func (u *PagesUsecase) ProfilePage(ctx context.Context, identity *entities.Identity) (*ProfileView, error) {
	profile, err := u.profiles.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{Profile: profile, Initials: entities.Initials(profile.FirstName, profile.LastName)}
	if profile.IDDocumentPath.Valid && profile.IDDocumentPath.String != "" {
		link, err := u.profileUC.previewFor(profile)
		if err != nil {
			logger.Warn(ctx, "Failed to sign ID preview", zap.Error(err))
		}
		view.PreviewURL = link
	}
	return view, nil
}

// PurchaseMessage is the WhatsApp text asking to buy plan.
func PurchaseMessage(plan *entities.Plan, profile *entities.Profile, email string) string {
	country := ""
	if profile != nil {
		country = profile.Country.String
	}
	return joinLines(
		`Hi, I want to purchase the "`+plan.Name+`" plan.`,
		"Plan details:",
		"• ROI: "+plan.ROIPercent.String()+"%",
		"• Duration: "+strconv.Itoa(plan.DurationDays)+" days",
		"• Amount range: "+entities.RangeText(plan.MinAmount, plan.MaxAmount),
		"My details:",
		"• Name: "+profile.DisplayName(),
		lineIf(email != "", "• Email: "+email),
		lineIf(country != "", "• Country: "+country),
		"Please send me the next steps.",
	)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return err
}
