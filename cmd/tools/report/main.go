package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/david/grant-tracker/internal/db"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
		SELECT g.title,
		       COALESCE(o.name, '?') AS org,
		       g.due_date,
		       COUNT(DISTINCT sg.actor_id) AS saves,
		       COUNT(DISTINCT ga.id) AS applications,
		       COUNT(DISTINCT aw.id) AS awards
		FROM grants g
		LEFT JOIN organizations o ON o.id = g.organization_id
		LEFT JOIN saved_grants sg ON sg.grant_id = g.id
		LEFT JOIN grant_applications ga ON ga.grant_id = g.id
		LEFT JOIN grant_awards aw ON aw.grant_id = g.id
		GROUP BY g.id, g.title, o.name, g.due_date
		ORDER BY saves DESC, g.title
		LIMIT 25
	`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Grant", "Funder", "Due", "Saves", "Applications", "Awards"})

	for rows.Next() {
		var title, org string
		var dueDate *time.Time
		var saves, applications, awards int

		if err := rows.Scan(&title, &org, &dueDate, &saves, &applications, &awards); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		due := "rolling"
		if dueDate != nil {
			due = dueDate.Format("2006-01-02")
		}

		if len(title) > 60 {
			title = title[:57] + "..."
		}
		t.AppendRow(table.Row{title, org, due, saves, applications, awards})
	}
	t.Render()
}
