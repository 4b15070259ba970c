package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
)

// Migrations returns the warehouse schema statements applied to test databases.
// They mirror migrations/001_init.sql.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS materiales (
			code          VARCHAR(50) PRIMARY KEY,
			description   VARCHAR(255) NOT NULL,
			unit          VARCHAR(20) NOT NULL DEFAULT 'UND',
			material_type VARCHAR(50),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ubicaciones (
			code        VARCHAR(50) PRIMARY KEY,
			description VARCHAR(255) NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`INSERT INTO ubicaciones (code, description, active)
		 VALUES ('GROUND', 'Receiving buffer', TRUE)
		 ON CONFLICT (code) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS stock_ubicaciones (
			id            BIGSERIAL PRIMARY KEY,
			material_code VARCHAR(50) NOT NULL,
			description   VARCHAR(255) NOT NULL DEFAULT '',
			quantity      NUMERIC(12,2) NOT NULL,
			location      VARCHAR(50) NOT NULL,
			lot           VARCHAR(50) NOT NULL DEFAULT '',
			username      VARCHAR(100) NOT NULL DEFAULT '',
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT stock_quantity_non_negative CHECK (quantity >= 0)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS stock_ubicaciones_tuple
			ON stock_ubicaciones (material_code, location, lot)
			WHERE location <> 'GROUND'`,
		`CREATE INDEX IF NOT EXISTS stock_ubicaciones_location_idx
			ON stock_ubicaciones (location)`,
		`CREATE TABLE IF NOT EXISTS historial_movimientos (
			id            BIGSERIAL PRIMARY KEY,
			material_code VARCHAR(50) NOT NULL,
			description   VARCHAR(255) NOT NULL DEFAULT '',
			delta         VARCHAR(20) NOT NULL,
			unit          VARCHAR(20) NOT NULL DEFAULT 'UND',
			movement_type VARCHAR(20) NOT NULL,
			status        VARCHAR(120) NOT NULL DEFAULT '',
			username      VARCHAR(100) NOT NULL DEFAULT '',
			shift         VARCHAR(10) NOT NULL,
			business_date VARCHAR(10) NOT NULL,
			lot           VARCHAR(50) NOT NULL DEFAULT '',
			plant         VARCHAR(50),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT historial_movement_type_valid
				CHECK (movement_type IN ('Entro', 'Salio', 'Movimiento'))
		)`,
		`CREATE INDEX IF NOT EXISTS historial_movimientos_material_idx
			ON historial_movimientos (material_code)`,
		`CREATE INDEX IF NOT EXISTS historial_movimientos_username_idx
			ON historial_movimientos (username)`,
		`CREATE TABLE IF NOT EXISTS recibos_planta (
			id            BIGSERIAL PRIMARY KEY,
			plant         VARCHAR(50) NOT NULL,
			material_code VARCHAR(50) NOT NULL,
			quantity      NUMERIC(12,2) NOT NULL,
			lot           VARCHAR(50) NOT NULL DEFAULT '',
			username      VARCHAR(100) NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pallets (
			id            BIGSERIAL PRIMARY KEY,
			uid           VARCHAR(20) NOT NULL,
			material_code VARCHAR(50),
			lot           VARCHAR(50) NOT NULL DEFAULT '',
			quantity      NUMERIC(12,2),
			username      VARCHAR(100) NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT pallets_uid_key UNIQUE (uid)
		)`,
		`CREATE TABLE IF NOT EXISTS usuarios (
			id            BIGSERIAL PRIMARY KEY,
			username      VARCHAR(100) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role          VARCHAR(50) NOT NULL DEFAULT 'operator',
			active        BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT usuarios_username_key UNIQUE (username)
		)`,
	}
}

// SeedMaterial inserts a material catalog row.
func SeedMaterial(t *testing.T, db *sqlx.DB, code, description, unit string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO materiales (code, description, unit) VALUES ($1, $2, $3)
		 ON CONFLICT (code) DO UPDATE SET description = $2, unit = $3`,
		code, description, unit,
	)
	if err != nil {
		t.Fatalf("failed to seed material %s: %v", code, err)
	}
}

// SeedLocation inserts an active storage location.
func SeedLocation(t *testing.T, db *sqlx.DB, code string) {
	t.Helper()
	SeedLocationState(t, db, code, true)
}

// SeedLocationState inserts a storage location with the given active flag.
func SeedLocationState(t *testing.T, db *sqlx.DB, code string, active bool) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO ubicaciones (code, description, active) VALUES ($1, $2, $3)
		 ON CONFLICT (code) DO UPDATE SET active = $3`,
		code, "test location "+code, active,
	)
	if err != nil {
		t.Fatalf("failed to seed location %s: %v", code, err)
	}
}
