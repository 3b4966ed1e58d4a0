package imports

import (
	"context"
	"errors"
	"strings"
	"time"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/emails"
	"wealthdesk-backend/internal/application/referrals"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"
	"wealthdesk-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const generatedPasswordLength = 12

// clientInput is a validated client row.
type clientInput struct {
	code, name    string
	mobile, email string
	dob           *time.Time
	pan, aadhaar  string
	address, city string
	pincode       string
	branch        string
	referenceCode string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseClientRow validates a client row. Bulk uploads require contact
// details; sync records only need a code and a name.
func parseClientRow(r Row, requireContact bool) (*clientInput, error) {
	in := &clientInput{
		code:          r.Get("client_code", "code"),
		name:          r.Get("name", "client_name"),
		mobile:        validation.NormalizeMobile(r.Get("mobile", "mobile_no", "phone")),
		email:         strings.ToLower(r.Get("email", "email_id")),
		pan:           validation.NormalizePAN(r.Get("pan_no", "pan", "client_pan_no")),
		aadhaar:       validation.NormalizeAadhaar(r.Get("aadhaar_no", "aadhaar")),
		address:       r.Get("address"),
		city:          r.Get("city"),
		pincode:       r.Get("pincode", "pin_code"),
		branch:        r.Get("branch", "branch_name"),
		referenceCode: r.Get("reference_code", "referred_by", "leader_code"),
	}

	type field struct{ name, value string }
	required := []field{{"client_code", in.code}, {"name", in.name}}
	if requireContact {
		required = append(required, field{"mobile", in.mobile}, field{"email", in.email})
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, rowErr("missing required field: " + strings.Join(missing, ", "))
	}

	switch {
	case in.email != "" && !validation.IsValidEmail(in.email):
		return nil, rowErr("invalid email")
	case in.mobile != "" && !validation.IsValidMobile(in.mobile):
		return nil, rowErr("invalid mobile")
	case in.pan != "" && !validation.IsValidPAN(in.pan):
		return nil, rowErr("invalid PAN")
	case in.aadhaar != "" && !validation.IsValidAadhaar(in.aadhaar):
		return nil, rowErr("invalid Aadhaar number")
	case in.pincode != "" && !validation.IsValidPincode(in.pincode):
		return nil, rowErr("invalid pincode")
	}
	if v := r.Get("dob", "date_of_birth"); v != "" {
		t, err := ParseSheetDate(v)
		if err != nil {
			return nil, rowErr("invalid dob")
		}
		in.dob = &t
	}
	return in, nil
}

// apply copies the row onto c. Empty optional fields leave c unchanged.
func (in *clientInput) apply(c *domain.Client) {
	c.Code = in.code
	c.Name = in.name
	set := func(dst **string, v string) {
		if v != "" {
			*dst = optional(v)
		}
	}
	set(&c.Mobile, in.mobile)
	set(&c.Email, in.email)
	set(&c.PANNo, in.pan)
	set(&c.AadhaarNo, in.aadhaar)
	set(&c.Address, in.address)
	set(&c.City, in.city)
	set(&c.Pincode, in.pincode)
	if in.dob != nil {
		c.DOB = in.dob
	}
}

// resolve looks up the branch and referring client named on the row.
func (in *clientInput) resolve(tx *gorm.DB, c *domain.Client) error {
	if in.branch != "" {
		var b domain.Branch
		err := tx.Where("LOWER(name) = ?", strings.ToLower(in.branch)).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rowErr("unknown branch " + in.branch)
		}
		if err != nil {
			return apperrors.Store(err, "Branch")
		}
		c.BranchID = &b.BranchID
	}
	if in.referenceCode != "" {
		var ref domain.Client
		err := tx.Select("client_id").Where("code = ?", in.referenceCode).First(&ref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rowErr("unknown reference code " + in.referenceCode)
		}
		if err != nil {
			return apperrors.Store(err, "Client")
		}
		c.ReferenceID = &ref.ClientID
	}
	return nil
}

func clientRole(ctx context.Context, db *gorm.DB) (domain.Role, error) {
	var role domain.Role
	if err := db.WithContext(ctx).Where("name = ?", constants.Client).First(&role).Error; err != nil {
		return role, apperrors.Store(err, "Client role")
	}
	return role, nil
}

// newLogin is a user created by a client import, waiting for its welcome email.
type newLogin struct {
	email, name, password string
}

// ImportClients loads a client file (.xlsx, .xls, .csv or .json). Rows whose
// client code already exists are skipped, so importing a file twice is
// harmless. Each new client with an email gets a Client-role login with a
// generated password, and a welcome email once its row has committed.
func (s *Service) ImportClients(ctx context.Context, actor *uuid.UUID, fileName string, data []byte) (*Report, error) {
	timer := metrics.NewTimer(metrics.ImportDuration.WithLabelValues(KindClients))
	rows, format, err := readRows(fileName, data, FormatXLSX, FormatXLS, FormatCSV, FormatJSON)
	if err != nil {
		return nil, err
	}
	roleCtx, cancel := s.storeCtx(ctx)
	role, err := clientRole(roleCtx, s.DB)
	cancel()
	if err != nil {
		return nil, err
	}

	rep := newReport(KindClients, len(rows))
	for _, r := range rows {
		login, skipped, err := s.importClientRow(ctx, actor, role, r)
		switch {
		case err != nil:
			rep.fail(r.Line, reason(err, KindClients, r.Line))
		case skipped:
			rep.SkippedCount++
		default:
			rep.SuccessCount++
			if login != nil {
				rep.EmailResults = append(rep.EmailResults, s.welcome(ctx, *login))
			}
		}
	}
	s.finish(ctx, rep, actor, fileName, format, timer)
	return rep, nil
}

func (s *Service) importClientRow(ctx context.Context, actor *uuid.UUID, role domain.Role, r Row) (*newLogin, bool, error) {
	in, err := parseClientRow(r, true)
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	var login *newLogin
	skipped := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		// Soft-deleted clients still own their code.
		if err := tx.Unscoped().Model(&domain.Client{}).Where("code = ?", in.code).Count(&n).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		if n > 0 {
			skipped = true
			return nil
		}

		c := domain.Client{IsActive: true}
		in.apply(&c)
		if err := in.resolve(tx, &c); err != nil {
			return err
		}
		c.Stamp(actor, true)
		if err := tx.Create(&c).Error; err != nil {
			return apperrors.Store(err, "Client")
		}
		if in.email == "" {
			return nil
		}

		var taken int64
		if err := tx.Unscoped().Model(&domain.User{}).Where("LOWER(user_name) = ?", in.email).Count(&taken).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		if taken > 0 {
			return rowErr("email " + in.email + " already has a login")
		}
		password, err := auth.RandomPassword(generatedPasswordLength)
		if err != nil {
			return apperrors.Internal(err)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return apperrors.Internal(err)
		}
		u := domain.User{UserName: in.email, PasswordHash: hash, RoleID: role.RoleID, ClientID: &c.ClientID, IsActive: true}
		u.Stamp(actor, true)
		if err := tx.Create(&u).Error; err != nil {
			return apperrors.Store(err, "User")
		}
		login = &newLogin{email: in.email, name: in.name, password: password}
		return nil
	})
	return login, skipped, err
}

func (s *Service) welcome(ctx context.Context, l newLogin) EmailResult {
	res := EmailResult{Email: l.email}
	if s.EmailSender == nil {
		res.Error = errEmailNotConfigured
		return res
	}
	ctx, cancel := withTimeout(ctx, s.MailTimeout)
	defer cancel()
	err := s.EmailSender.SendWelcome(ctx, emails.WelcomeEmail{
		To:       l.email,
		Name:     l.name,
		UserName: l.email,
		Password: l.password,
		LoginURL: s.LoginURL,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Sent = true
	return res
}

// SyncClients upserts client records by code. Existing clients are updated
// with the non-empty fields of the record; new ones are created without a login.
// actor is nil when the caller is the sync token rather than a user.
func (s *Service) SyncClients(ctx context.Context, actor *uuid.UUID, records []map[string]interface{}) (*Report, error) {
	timer := metrics.NewTimer(metrics.ImportDuration.WithLabelValues(KindSyncClients))
	rows := RecordsToRows(records)
	rep := newReport(KindSyncClients, len(rows))
	for _, r := range rows {
		updated, err := s.syncClientRow(ctx, actor, r)
		switch {
		case err != nil:
			rep.fail(r.Line, reason(err, KindSyncClients, r.Line))
		case updated:
			rep.UpdatedCount++
		default:
			rep.SuccessCount++
		}
	}
	s.finish(ctx, rep, actor, "", FormatJSON, timer)
	return rep, nil
}

func (s *Service) syncClientRow(ctx context.Context, actor *uuid.UUID, r Row) (bool, error) {
	in, err := parseClientRow(r, false)
	if err != nil {
		return false, err
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	updated := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Client
		// Soft-deleted clients still own their code.
		err := tx.Unscoped().Where("code = ?", in.code).First(&c).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = domain.Client{IsActive: true}
		case err != nil:
			return apperrors.Store(err, "Client")
		case c.DeletedDate.Valid:
			return rowErr("client code " + in.code + " belongs to a deleted client")
		default:
			updated = true
		}
		in.apply(&c)
		if err := in.resolve(tx, &c); err != nil {
			return err
		}
		c.Stamp(actor, !updated)
		if !updated {
			return apperrors.Store(tx.Create(&c).Error, "Client")
		}
		if err := referrals.Check(ctx, tx, c.ClientID, c.ReferenceID); err != nil {
			return err
		}
		return apperrors.Store(tx.Save(&c).Error, "Client")
	})
	return updated, err
}
