package requests

import (
	"context"
	"strings"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type InvestmentInput struct {
	ClientID         string          `json:"clientId"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
	InvestmentDate   string          `json:"investmentDate"`
	Remark           *string         `json:"remark"`
}

type WithdrawalInput struct {
	ClientID         string          `json:"clientId"`
	WithdrawalAmount decimal.Decimal `json:"withdrawalAmount"`
	WithdrawalDate   string          `json:"withdrawalDate"`
	Remark           *string         `json:"remark"`
}

type ReferralInput struct {
	ClientID       string  `json:"clientId"`
	ReferredName   string  `json:"referredName"`
	ReferredMobile string  `json:"referredMobile"`
	ReferredEmail  *string `json:"referredEmail"`
	ReferralDate   string  `json:"referralDate"`
	Remark         *string `json:"remark"`
}

func positiveAmount(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return d, apperrors.Validation("Invalid "+field, apperrors.FieldError{Field: field, Message: "Must be greater than zero"})
	}
	return d.Round(2), nil
}

func (s *Service) ListInvestments(ctx context.Context, sess *auth.Session, f Filter) ([]domain.InvestmentRequest, error) {
	return list[domain.InvestmentRequest](ctx, s.DB, sess, f, "investment_date")
}

func (s *Service) CreateInvestment(ctx context.Context, sess *auth.Session, in InvestmentInput) (*domain.InvestmentRequest, error) {
	amount, err := positiveAmount("investmentAmount", in.InvestmentAmount)
	if err != nil {
		return nil, err
	}
	date, err := parseDay("investmentDate", in.InvestmentDate, s.now())
	if err != nil {
		return nil, err
	}
	c, err := actingClient(ctx, s.DB, sess, in.ClientID)
	if err != nil {
		return nil, err
	}
	r := domain.InvestmentRequest{
		ClientID:         c.ClientID,
		InvestmentAmount: amount,
		InvestmentDate:   date,
		Remark:           optional(in.Remark),
		Review:           domain.Review{Status: domain.StatusPending},
	}
	r.Stamp(sess.Actor(), true)
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, apperrors.Store(err, "Investment request")
	}
	log.Info().Str("request_id", r.InvestmentRequestID.String()).Str("client_id", c.ClientID.String()).Msg("requests: investment request created")
	return &r, nil
}

func (s *Service) ReviewInvestment(ctx context.Context, sess *auth.Session, id uuid.UUID, in ReviewInput) (*domain.InvestmentRequest, error) {
	r, err := review(ctx, s, "investment_request_id", id, sess.Actor(), in,
		func(r *domain.InvestmentRequest) *domain.Review { return &r.Review })
	if err != nil {
		return nil, err
	}
	s.notify(ctx, r.ClientID, KindInvestment, r.Status)
	return r, nil
}

func (s *Service) ListWithdrawals(ctx context.Context, sess *auth.Session, f Filter) ([]domain.WithdrawalRequest, error) {
	return list[domain.WithdrawalRequest](ctx, s.DB, sess, f, "withdrawal_date")
}

func (s *Service) CreateWithdrawal(ctx context.Context, sess *auth.Session, in WithdrawalInput) (*domain.WithdrawalRequest, error) {
	amount, err := positiveAmount("withdrawalAmount", in.WithdrawalAmount)
	if err != nil {
		return nil, err
	}
	date, err := parseDay("withdrawalDate", in.WithdrawalDate, s.now())
	if err != nil {
		return nil, err
	}
	c, err := actingClient(ctx, s.DB, sess, in.ClientID)
	if err != nil {
		return nil, err
	}
	r := domain.WithdrawalRequest{
		ClientID:         c.ClientID,
		WithdrawalAmount: amount,
		WithdrawalDate:   date,
		Remark:           optional(in.Remark),
		Review:           domain.Review{Status: domain.StatusPending},
	}
	r.Stamp(sess.Actor(), true)
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, apperrors.Store(err, "Withdrawal request")
	}
	log.Info().Str("request_id", r.WithdrawalRequestID.String()).Str("client_id", c.ClientID.String()).Msg("requests: withdrawal request created")
	return &r, nil
}

func (s *Service) ReviewWithdrawal(ctx context.Context, sess *auth.Session, id uuid.UUID, in ReviewInput) (*domain.WithdrawalRequest, error) {
	r, err := review(ctx, s, "withdrawal_request_id", id, sess.Actor(), in,
		func(r *domain.WithdrawalRequest) *domain.Review { return &r.Review })
	if err != nil {
		return nil, err
	}
	s.notify(ctx, r.ClientID, KindWithdrawal, r.Status)
	return r, nil
}

func (s *Service) ListReferrals(ctx context.Context, sess *auth.Session, f Filter) ([]domain.ReferralRequest, error) {
	return list[domain.ReferralRequest](ctx, s.DB, sess, f, "referral_date")
}

func (s *Service) CreateReferral(ctx context.Context, sess *auth.Session, in ReferralInput) (*domain.ReferralRequest, error) {
	var details []apperrors.FieldError
	name := strings.TrimSpace(in.ReferredName)
	mobile := validation.NormalizeMobile(in.ReferredMobile)
	email := optional(in.ReferredEmail)
	if name == "" {
		details = append(details, apperrors.FieldError{Field: "referredName", Message: "Required"})
	}
	if !validation.IsValidMobile(mobile) {
		details = append(details, apperrors.FieldError{Field: "referredMobile", Message: "Invalid mobile number"})
	}
	if email != nil {
		lower := strings.ToLower(*email)
		email = &lower
		if !validation.IsValidEmail(lower) {
			details = append(details, apperrors.FieldError{Field: "referredEmail", Message: "Invalid email format"})
		}
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid referral details", details...)
	}
	date, err := parseDay("referralDate", in.ReferralDate, s.now())
	if err != nil {
		return nil, err
	}
	c, err := actingClient(ctx, s.DB, sess, in.ClientID)
	if err != nil {
		return nil, err
	}
	r := domain.ReferralRequest{
		ClientID:       c.ClientID,
		ReferredName:   name,
		ReferredMobile: mobile,
		ReferredEmail:  email,
		ReferralDate:   date,
		Remark:         optional(in.Remark),
		Review:         domain.Review{Status: domain.StatusPending},
	}
	r.Stamp(sess.Actor(), true)
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, apperrors.Store(err, "Referral request")
	}
	return &r, nil
}

func (s *Service) ReviewReferral(ctx context.Context, sess *auth.Session, id uuid.UUID, in ReviewInput) (*domain.ReferralRequest, error) {
	r, err := review(ctx, s, "referral_request_id", id, sess.Actor(), in,
		func(r *domain.ReferralRequest) *domain.Review { return &r.Review })
	if err != nil {
		return nil, err
	}
	s.notify(ctx, r.ClientID, KindReferral, r.Status)
	return r, nil
}
