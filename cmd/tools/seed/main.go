package main

import (
	"context"
	"log"
	"time"

	"github.com/david/grant-tracker/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type seedGrant struct {
	Title       string
	Description string
	Amount      string
	GrantType   string
	DueDate     *time.Time
	Categories  []string
	Locations   []string
}

type seedOrg struct {
	Name   string
	Slug   string
	Grants []seedGrant
}

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	seeds := []seedOrg{
		{
			Name: "Gates Foundation",
			Slug: "gates-foundation",
			Grants: []seedGrant{
				{
					Title:       "Grand Challenges - Global Health Innovation",
					Description: "<p>Bold ideas exploring innovative approaches to global health. Awards support early-stage research and proof-of-concept projects.</p>",
					Amount:      "Up to $100,000",
					GrantType:   "research",
					Categories:  []string{"Health", "Innovation"},
					Locations:   []string{"Global"},
				},
			},
		},
		{
			Name: "European Commission",
			Slug: "european-commission",
			Grants: []seedGrant{
				{
					Title:       "Horizon Europe - Climate Neutral Cities 2030",
					Description: "<p>Supports urban transformation projects including clean energy, sustainable mobility, and circular economy initiatives across EU member states.</p>",
					Amount:      "€500,000 - €2,000,000",
					GrantType:   "program",
					DueDate:     timePtr(time.Date(2026, 6, 15, 17, 0, 0, 0, time.UTC)),
					Categories:  []string{"Climate", "Urban Development"},
					Locations:   []string{"Europe"},
				},
			},
		},
		{
			Name: "Ford Foundation",
			Slug: "ford-foundation",
			Grants: []seedGrant{
				{
					Title:       "Creativity and Free Expression",
					Description: "<p>Support for artists, cultural organizations, and media advancing social justice narratives. Grants are available for film, visual arts, literature, journalism, and digital media.</p>",
					Amount:      "$50,000 - $500,000",
					GrantType:   "general",
					Categories:  []string{"Arts", "Media"},
					Locations:   []string{"United States"},
				},
			},
		},
		{
			Name: "UK Research and Innovation",
			Slug: "ukri",
			Grants: []seedGrant{
				{
					Title:       "Future Leaders Fellowships",
					Description: "<p>Develops the careers of world-class researchers and innovators across business and academia. Awards of up to £1.5m over 4 years.</p>",
					Amount:      "Up to £1,500,000",
					GrantType:   "fellowship",
					DueDate:     timePtr(time.Date(2026, 5, 20, 16, 0, 0, 0, time.UTC)),
					Categories:  []string{"Research", "Innovation"},
					Locations:   []string{"United Kingdom"},
				},
			},
		},
	}

	grantCount := 0
	for _, org := range seeds {
		var orgID uuid.UUID
		err := pool.QueryRow(ctx, `
			INSERT INTO organizations (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, org.Name, org.Slug).Scan(&orgID)
		if err != nil {
			log.Fatalf("Failed to seed organization %s: %v", org.Slug, err)
		}

		for _, g := range org.Grants {
			var grantID uuid.UUID
			err := pool.QueryRow(ctx, `
				INSERT INTO grants (title, description_html, funding_amount, grant_type, due_date, organization_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, g.Title, g.Description, g.Amount, g.GrantType, g.DueDate, orgID).Scan(&grantID)
			if err != nil {
				log.Fatalf("Failed to seed grant %q: %v", g.Title, err)
			}
			grantCount++

			for _, name := range g.Categories {
				if err := linkTag(ctx, pool, grantID, name, "categories", "grant_categories", "category_id"); err != nil {
					log.Fatalf("Failed to link category %q: %v", name, err)
				}
			}
			for _, name := range g.Locations {
				if err := linkTag(ctx, pool, grantID, name, "locations", "grant_locations", "location_id"); err != nil {
					log.Fatalf("Failed to link location %q: %v", name, err)
				}
			}
		}
	}

	log.Printf("Seed complete: %d organizations, %d grants", len(seeds), grantCount)
}

// linkTag upserts the named tag and attaches it to the grant. Tag and join
// table names come from a fixed call site, never user input.
func linkTag(ctx context.Context, pool *pgxpool.Pool, grantID uuid.UUID, name, tagTable, joinTable, joinCol string) error {
	var tagID uuid.UUID
	err := pool.QueryRow(ctx, `
		INSERT INTO `+tagTable+` (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&tagID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO `+joinTable+` (grant_id, `+joinCol+`)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, grantID, tagID)
	return err
}

func timePtr(t time.Time) *time.Time {
	return &t
}
