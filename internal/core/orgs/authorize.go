package orgs

import "context"

// AuthorizeTagChanges checks an edit's tag delta against the owned-tags
// index. Every added or removed tag that is owned by some organization must
// be owned by the supplied organization, otherwise the edit fails with
// ErrOwnedTag. Returns the ids of the organizations whose owned tags were
// touched; the caller records a pending authorization for each of them.
//
// For creations pass an empty old tag set so that every tag counts as added.
func AuthorizeTagChanges(ctx context.Context, gw Gateway, oldTags, newTags []string, org *Organization) ([]string, error) {
	delta := tagDelta(oldTags, newTags)
	if len(delta) == 0 {
		return nil, nil
	}
	owning, err := gw.GetOrgsOwningTags(ctx, delta)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(owning))
	var pendingOrgIDs []string
	for _, t := range delta {
		for _, o := range owning {
			if !o.OwnsTag(t) {
				continue
			}
			if org == nil || org.ID != o.ID {
				return nil, ErrOwnedTag
			}
			if _, ok := seen[o.ID]; !ok {
				seen[o.ID] = struct{}{}
				pendingOrgIDs = append(pendingOrgIDs, o.ID)
			}
		}
	}
	return pendingOrgIDs, nil
}

// CheckOwnedTags verifies that none of the given tags is owned by a foreign
// organization. Tags owned by the supplied organization are permitted.
// Used by event writes, which carry no revision history.
func CheckOwnedTags(ctx context.Context, gw Gateway, tagList []string, org *Organization) error {
	owned, err := gw.GetAllTagsOwnedByOrgs(ctx)
	if err != nil {
		return err
	}
	ownedSet := make(map[string]struct{}, len(owned))
	for _, t := range owned {
		ownedSet[t] = struct{}{}
	}
	for _, t := range tagList {
		if _, ok := ownedSet[t]; !ok {
			continue
		}
		if org == nil || !org.OwnsTag(t) {
			return ErrOwnedTag
		}
	}
	return nil
}
