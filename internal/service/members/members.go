// Package members implements C11: a hot group_id -> {user_id} set in
// front of the relational groups store, read-through on cache miss
// and batched-mutation on membership changes.
package members

import (
	"context"
	"fmt"

	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/store/groups"
)

// Cache is the consumer's GroupMembers collaborator (§4.2 step 6).
type Cache struct {
	hot *seqcache.Cache
	db  *groups.Store
}

func New(hot *seqcache.Cache, db *groups.Store) *Cache {
	return &Cache{hot: hot, db: db}
}

// Members resolves the current member list: hot cache first, DB
// fallback on miss, populating the cache from the fallback result.
func (c *Cache) Members(ctx context.Context, groupID string) ([]string, error) {
	cached, err := c.hot.QueryGroupMembersID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("members: cache lookup %s: %w", groupID, err)
	}
	// An empty Redis set is indistinguishable from "never cached"
	// (SMEMBERS on a missing key also returns empty), so an empty
	// result always falls through to the DB rather than being treated
	// as a confirmed empty membership.
	if len(cached) > 0 {
		return cached, nil
	}

	fromDB, err := c.db.Members(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("members: db fallback %s: %w", groupID, err)
	}
	if err := c.hot.SaveGroupMembersID(ctx, groupID, fromDB); err != nil {
		return nil, fmt.Errorf("members: populate cache %s: %w", groupID, err)
	}
	return fromDB, nil
}

// Create persists a new group and warms the cache.
func (c *Cache) Create(ctx context.Context, groupID string, memberIDs []string) error {
	if err := c.db.Create(ctx, groupID, memberIDs); err != nil {
		return err
	}
	return c.hot.SaveGroupMembersID(ctx, groupID, memberIDs)
}

// Update replaces a group's membership, DB first then cache.
func (c *Cache) Update(ctx context.Context, groupID string, memberIDs []string) error {
	if err := c.db.Update(ctx, groupID, memberIDs); err != nil {
		return err
	}
	return c.hot.SaveGroupMembersID(ctx, groupID, memberIDs)
}

// Delete removes a group entirely, DB first then cache (the
// DbService.GroupDelete path).
func (c *Cache) Delete(ctx context.Context, groupID string) error {
	if err := c.db.Delete(ctx, groupID); err != nil {
		return err
	}
	return c.hot.DelGroupMembers(ctx, groupID)
}

// MemberExit removes a single member, DB first then cache.
func (c *Cache) MemberExit(ctx context.Context, groupID, userID string) error {
	if err := c.db.MemberExit(ctx, groupID, userID); err != nil {
		return err
	}
	return c.hot.RemoveGroupMemberID(ctx, groupID, userID)
}
