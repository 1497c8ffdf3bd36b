package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"Placemap/internal/core/orgs"
)

type sqliteOrgRepo struct {
	db *sql.DB
}

// NewOrgRepository creates a new SQLite organization repository.
func NewOrgRepository(db *sql.DB) orgs.Gateway {
	return &sqliteOrgRepo{db: db}
}

func (r *sqliteOrgRepo) CreateOrg(ctx context.Context, org *orgs.Organization) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO organizations (id, name, api_token) VALUES (?, ?, ?)`,
		org.ID, org.Name, org.APIToken)
	if err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	for _, tag := range org.OwnedTags {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO organization_tags (org_id, tag) VALUES (?, ?)`,
			org.ID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert owned tag: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit organization: %w", err)
	}
	return nil
}

func (r *sqliteOrgRepo) GetOrgByAPIToken(ctx context.Context, token string) (*orgs.Organization, error) {
	var org orgs.Organization
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, api_token FROM organizations WHERE api_token = ?`,
		token).Scan(&org.ID, &org.Name, &org.APIToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orgs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization by token: %w", err)
	}
	if err := r.loadOwnedTags(ctx, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *sqliteOrgRepo) GetAllTagsOwnedByOrgs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT tag FROM organization_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned tags: %w", err)
	}
	defer closeRows(rows)

	var result []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan owned tag: %w", err)
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owned tags: %w", err)
	}
	return result, nil
}

func (r *sqliteOrgRepo) GetOrgsOwningTags(ctx context.Context, tagList []string) ([]*orgs.Organization, error) {
	if len(tagList) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT o.id, o.name, o.api_token
		FROM organizations o
		JOIN organization_tags ot ON ot.org_id = o.id
		WHERE ot.tag IN (` + placeholders(len(tagList)) + `)
		ORDER BY o.id`
	rows, err := r.db.QueryContext(ctx, query, stringArgs(tagList)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations by tags: %w", err)
	}
	defer closeRows(rows)

	var result []*orgs.Organization
	for rows.Next() {
		var org orgs.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.APIToken); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		result = append(result, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}
	for _, org := range result {
		if err := r.loadOwnedTags(ctx, org); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *sqliteOrgRepo) AddPendingAuthorizations(ctx context.Context, orgIDs []string, pending orgs.PendingAuthorization) error {
	var lastAuthorizedRev sql.NullInt64
	if pending.LastAuthorizedRev > 0 {
		lastAuthorizedRev = sql.NullInt64{Int64: int64(pending.LastAuthorizedRev), Valid: true}
	}
	for _, orgID := range orgIDs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO pending_authorizations (org_id, place_id, created_at, last_authorized_rev)
			VALUES (?, ?, ?, ?)`,
			orgID, pending.PlaceID, pending.CreatedAt.Unix(), lastAuthorizedRev)
		if err != nil {
			return fmt.Errorf("failed to insert pending authorization: %w", err)
		}
	}
	return nil
}

func (r *sqliteOrgRepo) loadOwnedTags(ctx context.Context, org *orgs.Organization) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM organization_tags WHERE org_id = ? ORDER BY tag`, org.ID)
	if err != nil {
		return fmt.Errorf("failed to query organization tags: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan organization tag: %w", err)
		}
		org.OwnedTags = append(org.OwnedTags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating organization tags: %w", err)
	}
	return nil
}
