package database

import (
	"geodir-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when running behind connection
// poolers (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate creates the directory schema, including the
// organization_activity join table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Building{},
		&domain.Organization{},
		&domain.Phone{},
		&domain.Activity{},
	)
}
