package main

import (
	"context"
	"log"
	"os"

	"gokeyword/adapters/excel"
	"gokeyword/adapters/postgres"
	"gokeyword/internal/database"
	"gokeyword/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Seeds a fresh database: creates the reference schema and, when a workbook
// is given, loads it as the region hierarchy.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [reference_workbook] [sheet]")
	}

	databaseURL := os.Args[1]
	table := os.Getenv("REGION_TABLE")
	if table == "" {
		table = migration.DefaultRegionTable
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db, table, nil); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema ready for table %s", table)

	if len(os.Args) < 3 {
		return
	}

	wb, err := excel.OpenWorkbook(os.Args[2])
	if err != nil {
		log.Fatalf("Failed to open reference workbook: %v", err)
	}
	names := wb.SheetNames()
	if len(names) == 0 {
		log.Fatalf("Reference workbook %s has no sheets", os.Args[2])
	}
	sheetName := names[0]
	if len(os.Args) > 3 {
		sheetName = os.Args[3]
	}
	sheet, err := wb.Sheet(sheetName)
	if err != nil {
		log.Fatalf("Failed to read sheet: %v", err)
	}
	records, err := excel.ReferenceRecords(sheet)
	if err != nil {
		log.Fatalf("Failed to map reference rows: %v", err)
	}

	repo := postgres.NewRegionRepository(db, table)
	if err := repo.ReplaceAll(ctx, records); err != nil {
		log.Fatalf("Failed to load reference: %v", err)
	}
	log.Printf("Loaded %d reference records from %s", len(records), sheetName)
}
