package engage

import (
	"context"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
)

// Gateway is the data store surface this package depends on. The pgx
// implementation lives in internal/db; tests use an in-memory fake.
// Implementations translate store failures into the package taxonomy
// (ErrDuplicate, ErrNotFound, ErrPermission, ErrTransient).
type Gateway interface {
	// Bulk canonical reads.
	AllGrants(ctx context.Context) ([]models.Grant, error)
	GrantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Grant, error)
	OrganizationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Organization, error)
	AllOrganizations(ctx context.Context) ([]models.Organization, error)

	// Join rows keyed by grant foreign key.
	CategoriesForGrants(ctx context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error)
	LocationsForGrants(ctx context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error)

	// Distinct savers per grant, sourced from the stored rows directly.
	SaveCounts(ctx context.Context, grantIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// Tracking reads.
	SavedByActor(ctx context.Context, actorID uuid.UUID) ([]models.SavedRecord, error)
	ApplicationsByScope(ctx context.Context, scope models.Scope) ([]models.ApplicationRecord, error)
	AwardsByScope(ctx context.Context, scope models.Scope) ([]models.AwardRecord, error)

	// Tracking mutations. Uniqueness lives in the store; a lost race
	// surfaces as ErrDuplicate, never as a duplicate row.
	InsertSaved(ctx context.Context, grantID, actorID uuid.UUID) error
	DeleteSaved(ctx context.Context, grantID, actorID uuid.UUID) error
	InsertApplication(ctx context.Context, rec models.ApplicationRecord) error
	DeleteApplication(ctx context.Context, grantID uuid.UUID, scope models.Scope) error
	InsertAward(ctx context.Context, rec models.AwardRecord) error
	DeleteAward(ctx context.Context, grantID uuid.UUID, scope models.Scope) error

	// AdminOrganization returns the organization the actor administers,
	// or nil when the actor has no admin membership.
	AdminOrganization(ctx context.Context, actorID uuid.UUID) (*models.Organization, error)
}
