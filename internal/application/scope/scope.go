// Package scope decides which client records a session may see.
//
// Admins see everything. A leader sees their own client record plus the
// clients that name them as reference (one level, not transitive). A client
// sees only their own record. Any other role, or a leader/client session
// without a linked client, sees nothing.
package scope

import (
	"context"

	"wealthdesk-backend/internal/application/auth"
	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is the set of client ids visible to one session.
type Scope struct {
	role    constants.Role
	self    *uuid.UUID
	visible map[uuid.UUID]struct{}
}

// New builds the scope for sess over the given clients. Only the leader case
// needs the client list; it is where referral membership is read from.
func New(sess *auth.Session, clients []domain.Client) Scope {
	if sess == nil {
		return Scope{role: constants.RoleUnknown}
	}
	s := Scope{role: sess.Role, visible: map[uuid.UUID]struct{}{}}
	if sess.ClientID != nil {
		id := *sess.ClientID
		s.self = &id
	}

	switch sess.Role {
	case constants.RoleClient:
		if s.self != nil {
			s.visible[*s.self] = struct{}{}
		}
	case constants.RoleLeader:
		if s.self == nil {
			break
		}
		s.visible[*s.self] = struct{}{}
		for _, c := range clients {
			if c.ReferenceID != nil && *c.ReferenceID == *s.self {
				s.visible[c.ClientID] = struct{}{}
			}
		}
	}
	return s
}

// Load reads the clients needed to build a scope and returns it. Admins and
// clients do not need the referral lookup.
func Load(ctx context.Context, db *gorm.DB, sess *auth.Session) (Scope, error) {
	if sess == nil || sess.Role != constants.RoleLeader || sess.ClientID == nil {
		return New(sess, nil), nil
	}
	var team []domain.Client
	err := db.WithContext(ctx).
		Select("client_id", "reference_id").
		Where("reference_id = ?", *sess.ClientID).
		Find(&team).Error
	if err != nil {
		return Scope{}, apperrors.Store(err, "Client")
	}
	return New(sess, team), nil
}

// All reports whether the scope is unrestricted.
func (s Scope) All() bool {
	return s.role == constants.RoleAdmin
}

// Role is the role kind the scope was built for.
func (s Scope) Role() constants.Role {
	return s.role
}

// Self is the session's own client id, if any.
func (s Scope) Self() *uuid.UUID {
	return s.self
}

// Allows reports whether records of clientID are visible.
func (s Scope) Allows(clientID uuid.UUID) bool {
	if s.All() {
		return true
	}
	_, ok := s.visible[clientID]
	return ok
}

// IDs returns the visible client ids, nil when unrestricted.
func (s Scope) IDs() []uuid.UUID {
	if s.All() {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(s.visible))
	for id := range s.visible {
		ids = append(ids, id)
	}
	return ids
}

// Team returns the visible ids other than the session's own client.
func (s Scope) Team() []uuid.UUID {
	var ids []uuid.UUID
	for id := range s.visible {
		if s.self != nil && id == *s.self {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Restrict narrows a query on column to the visible client ids.
func (s Scope) Restrict(db *gorm.DB, column string) *gorm.DB {
	if s.All() {
		return db
	}
	ids := s.IDs()
	if len(ids) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(column+" IN ?", ids)
}

// Apply keeps the items whose client id is visible. clientIDOf may return nil
// for records that are not tied to a client; those are only kept for admins.
func Apply[T any](s Scope, items []T, clientIDOf func(T) *uuid.UUID) []T {
	if s.All() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		id := clientIDOf(it)
		if id != nil && s.Allows(*id) {
			out = append(out, it)
		}
	}
	return out
}

// Record is an entity tied to one client.
type Record interface {
	ClientIDRef() *uuid.UUID
}

// Filter is Apply over records that carry their own client id.
func Filter[T Record](s Scope, items []T) []T {
	return Apply(s, items, func(it T) *uuid.UUID { return it.ClientIDRef() })
}
