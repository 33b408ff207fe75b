package db

import (
	"context"

	"github.com/david/grant-tracker/internal/engage"
	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the pgx implementation of the engage.Gateway. Uniqueness of
// tracking records is enforced by the schema constraints in the
// migrations; the store only translates violations into the taxonomy.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ engage.Gateway = (*Store)(nil)

const grantCols = `id, title, description_html, funding_amount, grant_type, due_date, organization_id, created_at, updated_at`

func (s *Store) scanGrants(ctx context.Context, sql string, args ...interface{}) ([]models.Grant, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("query grants", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		var g models.Grant
		var description, fundingAmount, grantType *string
		if err := rows.Scan(
			&g.ID, &g.Title, &description, &fundingAmount, &grantType,
			&g.DueDate, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, mapError("scan grant", err)
		}
		if description != nil {
			g.Description = *description
		}
		if fundingAmount != nil {
			g.FundingAmount = *fundingAmount
		}
		if grantType != nil {
			g.GrantType = *grantType
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate grants", err)
	}

	return grants, nil
}

func (s *Store) AllGrants(ctx context.Context) ([]models.Grant, error) {
	return s.scanGrants(ctx, `SELECT `+grantCols+` FROM grants ORDER BY created_at DESC`)
}

func (s *Store) GrantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Grant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.scanGrants(ctx, `SELECT `+grantCols+` FROM grants WHERE id = ANY($1)`, ids)
}

func (s *Store) scanOrganizations(ctx context.Context, sql string, args ...interface{}) ([]models.Organization, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("query organizations", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		var imageURL, slug *string
		if err := rows.Scan(&org.ID, &org.Name, &imageURL, &slug, &org.CreatedAt); err != nil {
			return nil, mapError("scan organization", err)
		}
		if imageURL != nil {
			org.ImageURL = *imageURL
		}
		if slug != nil {
			org.Slug = *slug
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate organizations", err)
	}

	return orgs, nil
}

func (s *Store) OrganizationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.scanOrganizations(ctx, `SELECT id, name, image_url, slug, created_at FROM organizations WHERE id = ANY($1)`, ids)
}

func (s *Store) AllOrganizations(ctx context.Context) ([]models.Organization, error) {
	return s.scanOrganizations(ctx, `SELECT id, name, image_url, slug, created_at FROM organizations ORDER BY name`)
}

func (s *Store) CategoriesForGrants(ctx context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error) {
	return s.tagRows(ctx, `
		SELECT gc.grant_id, c.name
		FROM grant_categories gc
		JOIN categories c ON c.id = gc.category_id
		WHERE gc.grant_id = ANY($1)
		ORDER BY c.name
	`, grantIDs)
}

func (s *Store) LocationsForGrants(ctx context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error) {
	return s.tagRows(ctx, `
		SELECT gl.grant_id, l.name
		FROM grant_locations gl
		JOIN locations l ON l.id = gl.location_id
		WHERE gl.grant_id = ANY($1)
		ORDER BY l.name
	`, grantIDs)
}

func (s *Store) tagRows(ctx context.Context, sql string, grantIDs []uuid.UUID) ([]models.GrantTag, error) {
	if len(grantIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, sql, grantIDs)
	if err != nil {
		return nil, mapError("query tags", err)
	}
	defer rows.Close()

	var tags []models.GrantTag
	for rows.Next() {
		var tag models.GrantTag
		if err := rows.Scan(&tag.GrantID, &tag.Name); err != nil {
			return nil, mapError("scan tag", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate tags", err)
	}

	return tags, nil
}

func (s *Store) SaveCounts(ctx context.Context, grantIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(grantIDs))
	if len(grantIDs) == 0 {
		return counts, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT grant_id, COUNT(DISTINCT actor_id)
		FROM saved_grants
		WHERE grant_id = ANY($1)
		GROUP BY grant_id
	`, grantIDs)
	if err != nil {
		return nil, mapError("query save counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, mapError("scan save count", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate save counts", err)
	}

	return counts, nil
}

func (s *Store) SavedByActor(ctx context.Context, actorID uuid.UUID) ([]models.SavedRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT grant_id, actor_id, created_at
		FROM saved_grants
		WHERE actor_id = $1
		ORDER BY created_at DESC
	`, actorID)
	if err != nil {
		return nil, mapError("query saved", err)
	}
	defer rows.Close()

	var saved []models.SavedRecord
	for rows.Next() {
		var rec models.SavedRecord
		if err := rows.Scan(&rec.GrantID, &rec.ActorID, &rec.CreatedAt); err != nil {
			return nil, mapError("scan saved", err)
		}
		saved = append(saved, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate saved", err)
	}

	return saved, nil
}

func (s *Store) ApplicationsByScope(ctx context.Context, scope models.Scope) ([]models.ApplicationRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT grant_id, status, notes, applied_at
		FROM grant_applications
		WHERE scope_kind = $1 AND scope_id = $2
		ORDER BY applied_at DESC
	`, string(scope.Kind), scope.ID)
	if err != nil {
		return nil, mapError("query applications", err)
	}
	defer rows.Close()

	var apps []models.ApplicationRecord
	for rows.Next() {
		rec := models.ApplicationRecord{Scope: scope}
		var notes *string
		if err := rows.Scan(&rec.GrantID, &rec.Status, &notes, &rec.AppliedAt); err != nil {
			return nil, mapError("scan application", err)
		}
		if notes != nil {
			rec.Notes = *notes
		}
		apps = append(apps, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate applications", err)
	}

	return apps, nil
}

func (s *Store) AwardsByScope(ctx context.Context, scope models.Scope) ([]models.AwardRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT grant_id, amount, notes, awarded_at
		FROM grant_awards
		WHERE scope_kind = $1 AND scope_id = $2
		ORDER BY awarded_at DESC
	`, string(scope.Kind), scope.ID)
	if err != nil {
		return nil, mapError("query awards", err)
	}
	defer rows.Close()

	var awards []models.AwardRecord
	for rows.Next() {
		rec := models.AwardRecord{Scope: scope}
		var notes *string
		if err := rows.Scan(&rec.GrantID, &rec.Amount, &notes, &rec.AwardedAt); err != nil {
			return nil, mapError("scan award", err)
		}
		if notes != nil {
			rec.Notes = *notes
		}
		awards = append(awards, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate awards", err)
	}

	return awards, nil
}

// Mutations. Inserts rely on the schema's uniqueness constraints: a lost
// race comes back as a unique violation, mapped to ErrDuplicate.

func (s *Store) InsertSaved(ctx context.Context, grantID, actorID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO saved_grants (grant_id, actor_id)
		VALUES ($1, $2)
	`, grantID, actorID)
	return mapError("insert saved", err)
}

func (s *Store) DeleteSaved(ctx context.Context, grantID, actorID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM saved_grants
		WHERE grant_id = $1 AND actor_id = $2
	`, grantID, actorID)
	if err != nil {
		return mapError("delete saved", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete saved", engage.ErrNotFound)
	}
	return nil
}

func (s *Store) InsertApplication(ctx context.Context, rec models.ApplicationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO grant_applications (grant_id, scope_kind, scope_id, status, notes, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.GrantID, string(rec.Scope.Kind), rec.Scope.ID, rec.Status, rec.Notes, rec.AppliedAt)
	return mapError("insert application", err)
}

func (s *Store) DeleteApplication(ctx context.Context, grantID uuid.UUID, scope models.Scope) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM grant_applications
		WHERE grant_id = $1 AND scope_kind = $2 AND scope_id = $3
	`, grantID, string(scope.Kind), scope.ID)
	if err != nil {
		return mapError("delete application", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete application", engage.ErrNotFound)
	}
	return nil
}

func (s *Store) InsertAward(ctx context.Context, rec models.AwardRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO grant_awards (grant_id, scope_kind, scope_id, amount, notes, awarded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.GrantID, string(rec.Scope.Kind), rec.Scope.ID, rec.Amount, rec.Notes, rec.AwardedAt)
	return mapError("insert award", err)
}

func (s *Store) DeleteAward(ctx context.Context, grantID uuid.UUID, scope models.Scope) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM grant_awards
		WHERE grant_id = $1 AND scope_kind = $2 AND scope_id = $3
	`, grantID, string(scope.Kind), scope.ID)
	if err != nil {
		return mapError("delete award", err)
	}
	if tag.RowsAffected() == 0 {
		return mapError("delete award", engage.ErrNotFound)
	}
	return nil
}

func (s *Store) AdminOrganization(ctx context.Context, actorID uuid.UUID) (*models.Organization, error) {
	orgs, err := s.scanOrganizations(ctx, `
		SELECT o.id, o.name, o.image_url, o.slug, o.created_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1 AND m.role = 'admin'
		ORDER BY m.created_at
		LIMIT 1
	`, actorID)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	return &orgs[0], nil
}

// Stats powers the public stats endpoint and the report tool.
func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	queries := map[string]string{
		"grants":        "SELECT COUNT(*) FROM grants",
		"organizations": "SELECT COUNT(*) FROM organizations",
		"saves":         "SELECT COUNT(*) FROM saved_grants",
		"applications":  "SELECT COUNT(*) FROM grant_applications",
		"awards":        "SELECT COUNT(*) FROM grant_awards",
	}
	for name, q := range queries {
		var count int
		if err := s.pool.QueryRow(ctx, q).Scan(&count); err != nil {
			return nil, mapError("stats "+name, err)
		}
		stats[name] = count
	}

	return stats, nil
}
