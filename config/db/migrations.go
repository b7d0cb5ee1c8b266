package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS spaces (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	capacity INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	open_time VARCHAR(5) NOT NULL DEFAULT '',
	close_time VARCHAR(5) NOT NULL DEFAULT '',
	max_duration_minutes INT,
	advance_booking_days INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	space_id UUID NOT NULL REFERENCES spaces(id),
	start_datetime TIMESTAMPTZ NOT NULL,
	end_datetime TIMESTAMPTZ NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'confirmed',
	purpose TEXT NOT NULL DEFAULT '',
	materials_requested TEXT[] NOT NULL DEFAULT '{}',
	notes TEXT NOT NULL DEFAULT '',
	cancellation_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_interval_check CHECK (end_datetime > start_datetime)
);

CREATE INDEX IF NOT EXISTS idx_bookings_space_time
	ON bookings (space_id, start_datetime, end_datetime)
	WHERE status IN ('pending', 'confirmed');
CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, start_datetime DESC);
`

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
