package orgs

import "context"

// Gateway defines the data access interface for organizations and their
// owned-tags index.
type Gateway interface {
	// CreateOrg inserts a new organization with its owned tags.
	CreateOrg(ctx context.Context, org *Organization) error

	// GetOrgByAPIToken resolves the organization bound to a bearer token.
	// Returns ErrNotFound for unknown tokens.
	GetOrgByAPIToken(ctx context.Context, token string) (*Organization, error)

	// GetAllTagsOwnedByOrgs returns the union of all owned tags across all
	// organizations, sorted and deduplicated.
	GetAllTagsOwnedByOrgs(ctx context.Context) ([]string, error)

	// GetOrgsOwningTags returns the organizations owning at least one of the
	// given tags.
	GetOrgsOwningTags(ctx context.Context, tagList []string) ([]*Organization, error)

	// AddPendingAuthorizations records a pending authorization of the given
	// place revision for each of the listed organizations.
	AddPendingAuthorizations(ctx context.Context, orgIDs []string, pending PendingAuthorization) error
}
