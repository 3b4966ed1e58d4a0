package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/emails"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusMail struct {
	to, kind, status string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []statusMail
}

func (f *fakeSender) SendWelcome(context.Context, emails.WelcomeEmail) error { return nil }

func (f *fakeSender) SendPasswordReset(context.Context, string, string, string) error { return nil }

func (f *fakeSender) SendRequestStatus(_ context.Context, to, _, kind, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, statusMail{to, kind, status})
	return nil
}

func session(role constants.Role, clientID *uuid.UUID) *auth.Session {
	return &auth.Session{UserID: uuid.New(), Role: role, RoleName: role.String(), ClientID: clientID}
}

func setup(t *testing.T) (*Service, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	return &Service{DB: testutil.NewDB(t), EmailSender: sender, Now: func() time.Time { return now }}, sender
}

func TestCreateInvestment_Scoping(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	l1 := testutil.Client(t, svc.DB, "L1", "Leader", nil)
	c1 := testutil.Client(t, svc.DB, "C1", "Member", &l1.ClientID)
	other := testutil.Client(t, svc.DB, "X1", "Outsider", nil)

	// A client session defaults to its own client.
	r, err := svc.CreateInvestment(ctx, session(constants.RoleClient, &c1.ClientID), InvestmentInput{InvestmentAmount: decimal.NewFromInt(25000)})
	require.NoError(t, err)
	assert.Equal(t, c1.ClientID, r.ClientID)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), r.InvestmentDate)

	// A leader may act for the team.
	_, err = svc.CreateInvestment(ctx, session(constants.RoleLeader, &l1.ClientID), InvestmentInput{
		ClientID:         c1.ClientID.String(),
		InvestmentAmount: decimal.NewFromInt(1000),
		InvestmentDate:   "2024-06-01",
	})
	require.NoError(t, err)

	_, err = svc.CreateInvestment(ctx, session(constants.RoleLeader, &l1.ClientID), InvestmentInput{
		ClientID:         other.ClientID.String(),
		InvestmentAmount: decimal.NewFromInt(1000),
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	_, err = svc.CreateInvestment(ctx, session(constants.RoleAdmin, nil), InvestmentInput{InvestmentAmount: decimal.NewFromInt(1000)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.CreateInvestment(ctx, session(constants.RoleClient, &c1.ClientID), InvestmentInput{InvestmentAmount: decimal.Zero})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.CreateInvestment(ctx, session(constants.RoleClient, &c1.ClientID), InvestmentInput{InvestmentAmount: decimal.NewFromInt(5), InvestmentDate: "15/06/2024"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestList_ScopedAndFiltered(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	l1 := testutil.Client(t, svc.DB, "L1", "Leader", nil)
	c1 := testutil.Client(t, svc.DB, "C1", "Member", &l1.ClientID)
	other := testutil.Client(t, svc.DB, "X1", "Outsider", nil)
	admin := session(constants.RoleAdmin, nil)

	for _, c := range []domain.Client{l1, c1, other} {
		_, err := svc.CreateWithdrawal(ctx, admin, WithdrawalInput{ClientID: c.ClientID.String(), WithdrawalAmount: decimal.NewFromInt(500)})
		require.NoError(t, err)
	}

	all, err := svc.ListWithdrawals(ctx, admin, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	team, err := svc.ListWithdrawals(ctx, session(constants.RoleLeader, &l1.ClientID), Filter{})
	require.NoError(t, err)
	assert.Len(t, team, 2)

	own, err := svc.ListWithdrawals(ctx, session(constants.RoleClient, &c1.ClientID), Filter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, c1.ClientID, own[0].ClientID)

	none, err := svc.ListWithdrawals(ctx, session(constants.RoleUnknown, &c1.ClientID), Filter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.ReviewWithdrawal(ctx, admin, own[0].WithdrawalRequestID, ReviewInput{Status: "rejected"})
	require.NoError(t, err)
	pending, err := svc.ListWithdrawals(ctx, admin, Filter{Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListWithdrawals(ctx, admin, Filter{Status: "done"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestReview(t *testing.T) {
	svc, sender := setup(t)
	ctx := context.Background()
	c := testutil.Client(t, svc.DB, "C1", "Member", nil)
	require.NoError(t, svc.DB.Model(&c).Update("email", "member@example.com").Error)
	admin := session(constants.RoleAdmin, nil)

	r, err := svc.CreateInvestment(ctx, session(constants.RoleClient, &c.ClientID), InvestmentInput{InvestmentAmount: decimal.NewFromInt(9000)})
	require.NoError(t, err)

	_, err = svc.ReviewInvestment(ctx, admin, r.InvestmentRequestID, ReviewInput{Status: "pending"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	got, err := svc.ReviewInvestment(ctx, admin, r.InvestmentRequestID, ReviewInput{Status: "Approved", Note: ptr("ok")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, admin.Actor(), got.ReviewedByID)
	require.NotNil(t, got.ReviewedDate)
	assert.Equal(t, "ok", *got.ReviewNote)
	assert.Equal(t, []statusMail{{"member@example.com", KindInvestment, domain.StatusApproved}}, sender.sent)

	_, err = svc.ReviewInvestment(ctx, admin, r.InvestmentRequestID, ReviewInput{Status: "rejected"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = svc.ReviewInvestment(ctx, admin, uuid.New(), ReviewInput{Status: "rejected"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateReferral(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	c := testutil.Client(t, svc.DB, "C1", "Member", nil)
	sess := session(constants.RoleClient, &c.ClientID)

	_, err := svc.CreateReferral(ctx, sess, ReferralInput{ReferredName: "", ReferredMobile: "12", ReferredEmail: ptr("nope")})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Details, 3)

	r, err := svc.CreateReferral(ctx, sess, ReferralInput{
		ReferredName:   "Ravi Kumar",
		ReferredMobile: "+91 98765 43210",
		ReferredEmail:  ptr(" Ravi@Example.com "),
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", *r.ReferredEmail)
	assert.Equal(t, c.ClientID, r.ClientID)

	list, err := svc.ListReferrals(ctx, sess, Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	rejected, err := svc.ReviewReferral(ctx, session(constants.RoleAdmin, nil), r.ReferralRequestID, ReviewInput{Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
}

func ptr(s string) *string { return &s }
