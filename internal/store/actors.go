package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
)

// Users and admins live in separate tables; cart lines reference exactly
// one of them.
func actorTable(role models.Role) (string, error) {
	switch role {
	case models.RoleUser:
		return "users", nil
	case models.RoleAdmin:
		return "admins", nil
	}
	return "", fmt.Errorf("unknown role %q", role)
}

func CreateActor(ctx context.Context, db Querier, role models.Role, email, name string) (*models.User, error) {
	table, err := actorTable(role)
	if err != nil {
		return nil, err
	}

	user := &models.User{Role: role}

	query := `
		INSERT INTO ` + table + ` (email, name, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, is_active = TRUE, updated_at = NOW()
		RETURNING id, email, name, is_active, created_at, updated_at`

	err = db.QueryRowContext(ctx, query, email, name).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", role, err)
	}

	return user, nil
}

// GetActor returns ErrActorNotFound for missing and soft-deleted actors.
func GetActor(ctx context.Context, db Querier, actor models.Actor) (*models.User, error) {
	table, err := actorTable(actor.Role)
	if err != nil {
		return nil, err
	}

	user := &models.User{Role: actor.Role}

	query := `
		SELECT id, email, name, is_active, created_at, updated_at
		FROM ` + table + `
		WHERE id = $1 AND is_active`

	err = db.QueryRowContext(ctx, query, actor.ID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrActorNotFound
		}
		return nil, fmt.Errorf("get %s: %w", actor.Role, err)
	}

	return user, nil
}

// DeactivateActor soft-deletes the actor; its tokens stop authenticating.
func DeactivateActor(ctx context.Context, db Querier, actor models.Actor) error {
	table, err := actorTable(actor.Role)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
		actor.ID)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", actor.Role, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrActorNotFound
	}

	return nil
}

// ActorDirectory adapts GetActor for the auth middleware.
type ActorDirectory struct {
	DB Querier
}

func (d ActorDirectory) ActorActive(ctx context.Context, actor models.Actor) (bool, error) {
	_, err := GetActor(ctx, d.DB, actor)
	if errors.Is(err, database.ErrActorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
