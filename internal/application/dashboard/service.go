// Package dashboard computes the role-scoped reports behind /api/dashboard.
// Every method builds the caller's scope first and only aggregates rows
// inside it; store failures surface as DataUnavailable.
package dashboard

import (
	"context"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/scope"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 36
	DefaultTopK        = 5
)

type Service struct {
	DB             *gorm.DB
	CommissionRate decimal.Decimal
	Now            func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) scoped(ctx context.Context, sess *auth.Session) (scope.Scope, error) {
	return scope.Load(ctx, s.DB, sess)
}

// load reads the records of T visible to sc. The query is narrowed by client
// id and the rows pass through the scope filter before any aggregate sees them.
func load[T scope.Record](ctx context.Context, db *gorm.DB, sc scope.Scope, entity, order string) ([]T, error) {
	var out []T
	q := sc.Restrict(db.WithContext(ctx), "client_id")
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, apperrors.Store(err, entity)
	}
	return scope.Filter(sc, out), nil
}

func (s *Service) clients(ctx context.Context, sc scope.Scope) ([]domain.Client, error) {
	return load[domain.Client](ctx, s.DB, sc, "Client", "name")
}

func (s *Service) transactions(ctx context.Context, sc scope.Scope) ([]domain.Transaction, error) {
	return load[domain.Transaction](ctx, s.DB, sc, "Transaction", "")
}

func (s *Service) investmentRequests(ctx context.Context, sc scope.Scope) ([]domain.InvestmentRequest, error) {
	return load[domain.InvestmentRequest](ctx, s.DB, sc, "Investment request", "")
}

func (s *Service) withdrawalRequests(ctx context.Context, sc scope.Scope) ([]domain.WithdrawalRequest, error) {
	return load[domain.WithdrawalRequest](ctx, s.DB, sc, "Withdrawal request", "")
}

// Stats returns AdminStats, LeaderStats or ClientStats depending on the role.
func (s *Service) Stats(ctx context.Context, sess *auth.Session) (interface{}, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	switch sc.Role() {
	case constants.RoleAdmin:
		clients, err := s.clients(ctx, sc)
		if err != nil {
			return nil, err
		}
		txs, err := s.transactions(ctx, sc)
		if err != nil {
			return nil, err
		}
		inv, err := s.investmentRequests(ctx, sc)
		if err != nil {
			return nil, err
		}
		wd, err := s.withdrawalRequests(ctx, sc)
		if err != nil {
			return nil, err
		}
		return AdminSummary(clients, txs, inv, wd), nil

	case constants.RoleLeader:
		txs, err := s.transactions(ctx, sc)
		if err != nil {
			return nil, err
		}
		if sc.Self() == nil {
			return LeaderStats{Role: "Leader", CommissionRate: s.CommissionRate.InexactFloat64()}, nil
		}
		return LeaderSummary(*sc.Self(), sc.Team(), txs, s.CommissionRate), nil

	case constants.RoleClient:
		txs, err := s.transactions(ctx, sc)
		if err != nil {
			return nil, err
		}
		return ClientSummary(txs), nil
	}
	return nil, apperrors.Forbidden("User is Forbidden from performing this action")
}

// TotalsReport is the body of /api/dashboard/totals.
type TotalsReport struct {
	Ledger              map[string]float64 `json:"ledger"`
	InvestmentRequested float64            `json:"investmentRequested"`
	InvestmentApproved  float64            `json:"investmentApproved"`
	WithdrawalRequested float64            `json:"withdrawalRequested"`
	WithdrawalApproved  float64            `json:"withdrawalApproved"`
}

func (s *Service) Totals(ctx context.Context, sess *auth.Session) (*TotalsReport, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions(ctx, sc)
	if err != nil {
		return nil, err
	}
	inv, err := s.investmentRequests(ctx, sc)
	if err != nil {
		return nil, err
	}
	wd, err := s.withdrawalRequests(ctx, sc)
	if err != nil {
		return nil, err
	}
	return &TotalsReport{
		Ledger:              TotalsByIndicator(txs),
		InvestmentRequested: money(SumInvestmentRequests(inv, false)),
		InvestmentApproved:  money(SumInvestmentRequests(inv, true)),
		WithdrawalRequested: money(SumWithdrawalRequests(wd, false)),
		WithdrawalApproved:  money(SumWithdrawalRequests(wd, true)),
	}, nil
}

// MonthlyTrend reports the trailing months; out-of-range values fall back to the default.
func (s *Service) MonthlyTrend(ctx context.Context, sess *auth.Session, months int) ([]MonthBucket, error) {
	if months <= 0 || months > MaxTrendMonths {
		months = DefaultTrendMonths
	}
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions(ctx, sc)
	if err != nil {
		return nil, err
	}
	return MonthlyTrend(txs, s.now(), months), nil
}

func (s *Service) BranchPerformance(ctx context.Context, sess *auth.Session) ([]BranchStat, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients(ctx, sc)
	if err != nil {
		return nil, err
	}
	inv, err := s.investmentRequests(ctx, sc)
	if err != nil {
		return nil, err
	}

	var branches []domain.Branch
	q := s.DB.WithContext(ctx).Order("name")
	if !sc.All() {
		seen := map[uuid.UUID]struct{}{}
		var branchIDs []uuid.UUID
		for _, c := range clients {
			if c.BranchID == nil {
				continue
			}
			if _, ok := seen[*c.BranchID]; !ok {
				seen[*c.BranchID] = struct{}{}
				branchIDs = append(branchIDs, *c.BranchID)
			}
		}
		if len(branchIDs) == 0 {
			return []BranchStat{}, nil
		}
		q = q.Where("branch_id IN ?", branchIDs)
	}
	if err := q.Find(&branches).Error; err != nil {
		return nil, apperrors.Store(err, "Branch")
	}
	return BranchPerformance(branches, clients, inv, s.now()), nil
}

func (s *Service) KYCStatus(ctx context.Context, sess *auth.Session) (*KYC, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients(ctx, sc)
	if err != nil {
		return nil, err
	}
	k := KYCStatus(clients)
	return &k, nil
}

func (s *Service) Demographics(ctx context.Context, sess *auth.Session) (*DemographicsReport, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients(ctx, sc)
	if err != nil {
		return nil, err
	}
	d := Demographics(clients, s.now())
	return &d, nil
}

func (s *Service) RevenueBreakdown(ctx context.Context, sess *auth.Session) ([]RevenueShare, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions(ctx, sc)
	if err != nil {
		return nil, err
	}
	return RevenueBreakdown(txs), nil
}

func (s *Service) TopPerformers(ctx context.Context, sess *auth.Session, k int) ([]Performer, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients(ctx, sc)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions(ctx, sc)
	if err != nil {
		return nil, err
	}
	return TopPerformers(clients, txs, s.now(), k), nil
}

// Reconciliation compares the ledger with approved investment requests.
func (s *Service) Reconciliation(ctx context.Context, sess *auth.Session) ([]ReconRow, error) {
	sc, err := s.scoped(ctx, sess)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients(ctx, sc)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactions(ctx, sc)
	if err != nil {
		return nil, err
	}
	inv, err := s.investmentRequests(ctx, sc)
	if err != nil {
		return nil, err
	}
	rows := Reconcile(clients, txs, inv)
	if rows == nil {
		rows = []ReconRow{}
	}
	return rows, nil
}
