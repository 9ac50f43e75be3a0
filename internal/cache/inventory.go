package cache

import (
	"context"
	"fmt"
	"time"
)

// Feed pages are cached under feed:* keys by feed identity and the requested
// page number. Writes never invalidate them; staleness is bounded by the TTL
// and the explicit ClearFeeds flush, matching the whole-page cache contract.
const (
	feedKeyPrefix = "feed:"

	globalFeedKeyFmt    = feedKeyPrefix + "global:%d"
	groupFeedKeyFmt     = feedKeyPrefix + "group:%s:%d"
	profileFeedKeyFmt   = feedKeyPrefix + "profile:%s:%d"
	followingFeedKeyFmt = feedKeyPrefix + "following:%d:%d"
)

// DefaultFeedTTL bounds feed page staleness when no TTL is configured.
const DefaultFeedTTL = 20 * time.Second

func GlobalFeedKey(page int) string {
	return fmt.Sprintf(globalFeedKeyFmt, page)
}

func GroupFeedKey(slug string, page int) string {
	return fmt.Sprintf(groupFeedKeyFmt, slug, page)
}

func ProfileFeedKey(username string, page int) string {
	return fmt.Sprintf(profileFeedKeyFmt, username, page)
}

func FollowingFeedKey(viewerID uint, page int) string {
	return fmt.Sprintf(followingFeedKeyFmt, viewerID, page)
}

// Invalidate removes a single key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// ClearFeeds removes every cached feed page. It backs the administrative
// flush endpoint and gives tests a deterministic reset.
func ClearFeeds(ctx context.Context) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, feedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}
