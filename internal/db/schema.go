package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Statements are idempotent so InitSchema can run on every start.
// The unique indexes are the final arbiter for every uniqueness rule:
// the service-level checks are fast rejects, not the source of truth.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(50) NOT NULL,
		email         VARCHAR(120) NOT NULL,
		password_hash VARCHAR(128) NOT NULL,
		full_name     VARCHAR(100)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id   BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS teams_name_key ON teams (name)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id           BIGSERIAL PRIMARY KEY,
		team_id      BIGINT NOT NULL REFERENCES teams (id),
		user_id      BIGINT NOT NULL REFERENCES users (id),
		is_moderator BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS team_members_team_user_key ON team_members (team_id, user_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description VARCHAR(1024),
		status      VARCHAR(50) NOT NULL DEFAULT 'pending',
		due_date    TIMESTAMPTZ,
		owner_id    BIGINT NOT NULL REFERENCES users (id),
		team_id     BIGINT REFERENCES teams (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_id_idx ON tasks (owner_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_team_id_idx ON tasks (team_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status)`,
}

func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}
