package sync

import (
	"context"
	"log/slog"
	"sync"
)

// AccountCache maps assignee emails to tracker account ids. It grows
// monotonically within a process lifetime; Clear exists for tests and
// restarts, not for normal operation.
type AccountCache struct {
	mu      sync.Mutex
	byEmail map[string]string
}

func NewAccountCache() *AccountCache {
	return &AccountCache{byEmail: make(map[string]string)}
}

func (c *AccountCache) Get(email string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	accountID, ok := c.byEmail[email]
	return accountID, ok
}

func (c *AccountCache) Set(email, accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byEmail[email] = accountID
}

func (c *AccountCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byEmail = make(map[string]string)
}

// UserResolver resolves assignee emails to tracker account ids via user
// search, memoized in the cache so each email is looked up once per run.
type UserResolver struct {
	tracker TrackerGateway
	cache   *AccountCache
}

func NewUserResolver(tracker TrackerGateway, cache *AccountCache) *UserResolver {
	return &UserResolver{tracker: tracker, cache: cache}
}

// Resolve looks up every email not already cached. A lookup returning
// zero or multiple matches leaves the email unresolved with a warning;
// lookup failures are non-fatal per email.
func (r *UserResolver) Resolve(ctx context.Context, emails []string) {
	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		if _, ok := r.cache.Get(email); ok {
			continue
		}

		users, err := r.tracker.SearchUsers(ctx, email)
		if err != nil {
			slog.WarnContext(ctx, "user lookup failed", "email", email, "error", err)
			continue
		}
		if len(users) != 1 {
			slog.WarnContext(ctx, "user lookup did not resolve to a single account",
				"email", email, "matches", len(users))
			continue
		}

		r.cache.Set(email, users[0].AccountID)
	}
}

// Lookup returns the cached account id for an email, if resolved.
func (r *UserResolver) Lookup(email string) (string, bool) {
	return r.cache.Get(email)
}
