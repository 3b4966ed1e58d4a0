// Package uploads hands out signed URLs the browser uploads files to directly.
package uploads

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/application/scope"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	BucketOfferImages  = "offer-images"
	BucketKYCDocuments = "kyc-documents"
)

var (
	imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	kycExts   = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true}

	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

type Service struct {
	Storage     Storage
	DB          *gorm.DB
	SupabaseURL string
}

// Result is what the browser needs to upload and later reference the file.
// PublicURL is empty for private buckets.
type Result struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl,omitempty"`
	Path      string `json:"path"`
	Bucket    string `json:"bucket"`
}

// cleanName keeps the base name and replaces anything outside [a-zA-Z0-9._-].
func cleanName(fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
}

func checkName(fileName string, allowed map[string]bool) (string, error) {
	name := cleanName(fileName)
	if name == "" {
		return "", apperrors.Validation("fileName is required", apperrors.FieldError{Field: "fileName", Message: "Required"})
	}
	if !allowed[strings.ToLower(path.Ext(name))] {
		return "", apperrors.Validation("Unsupported file type", apperrors.FieldError{Field: "fileName", Message: "File type is not allowed"})
	}
	return name, nil
}

func (s *Service) sign(ctx context.Context, bucket, objectPath string, public bool) (*Result, error) {
	if s.Storage == nil {
		return nil, apperrors.Unavailable(fmt.Errorf("object storage is not configured"))
	}
	signed, err := s.Storage.CreateSignedUploadURL(ctx, bucket, objectPath)
	if err != nil {
		log.Error().Err(err).Str("bucket", bucket).Msg("uploads: failed to generate signed URL")
		return nil, apperrors.Unavailable(err)
	}
	res := &Result{UploadURL: signed, Path: objectPath, Bucket: bucket}
	if public {
		res.PublicURL = fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(s.SupabaseURL, "/"), bucket, objectPath)
	}
	return res, nil
}

// OfferImage signs an upload into the public offer image bucket.
func (s *Service) OfferImage(ctx context.Context, fileName string) (*Result, error) {
	name, err := checkName(fileName, imageExts)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, BucketOfferImages, uuid.NewString()+"-"+name, true)
}

// KYCDocument signs an upload into the private KYC bucket under the client's
// folder. The session must be allowed to act for the client; sessions tied to
// a client default to their own.
func (s *Service) KYCDocument(ctx context.Context, sess *auth.Session, clientID, fileName string) (*Result, error) {
	name, err := checkName(fileName, kycExts)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	switch clientID = strings.TrimSpace(clientID); {
	case clientID != "":
		id, err = uuid.Parse(clientID)
		if err != nil {
			return nil, apperrors.Validation("Invalid clientId", apperrors.FieldError{Field: "clientId", Message: "Must be a UUID"})
		}
	case sess != nil && sess.ClientID != nil:
		id = *sess.ClientID
	default:
		return nil, apperrors.Validation("clientId is required", apperrors.FieldError{Field: "clientId", Message: "Required"})
	}
	sc, err := scope.Load(ctx, s.DB, sess)
	if err != nil {
		return nil, err
	}
	if !sc.Allows(id) {
		return nil, apperrors.Forbidden("You cannot upload documents for this client")
	}
	return s.sign(ctx, BucketKYCDocuments, id.String()+"/"+uuid.NewString()+"-"+name, false)
}
