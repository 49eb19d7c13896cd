package auth

import (
	"container/list"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// cacheCapacity is the maximum number of validated tokens kept in memory.
	// Least-recently-used entries are evicted beyond this.
	cacheCapacity = 100

	// cacheTTL is how long a validation result may be served from cache.
	// An entry older than this is never returned as a hit.
	cacheTTL = 5 * time.Minute
)

// UserInfo is the identity extracted from a validated token. It is immutable
// once created; the validator hands out copies, never the cached value.
type UserInfo struct {
	// UserID is the token subject (sub claim)
	UserID string

	// TeamID is the Miro team identifier, if the token carries one
	TeamID string

	// Scopes are the granted scopes in token order
	Scopes []string

	// CachedAt is when this validation result was produced
	CachedAt time.Time
}

// clone returns a copy that shares no mutable state with the receiver
func (u *UserInfo) clone() *UserInfo {
	c := *u
	c.Scopes = append([]string(nil), u.Scopes...)
	return &c
}

// cacheEntry pairs a token with its validation result inside the LRU list
type cacheEntry struct {
	token string
	info  *UserInfo
}

// TokenValidator validates bearer JWTs presented by the agent platform and
// caches the results. Validation checks token structure, expiry, and audience;
// it performs no signature verification and no network I/O (see package doc).
//
// Safe for concurrent use. The mutex is held only across cache operations,
// never across parsing, so contention windows are microseconds.
type TokenValidator struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used

	resourceURL string
	logger      *slog.Logger
	parser      *jwt.Parser

	// now is the clock source, replaceable in tests
	now func() time.Time
}

// NewTokenValidator creates a validator whose audience check expects
// resourceURL. The comparator is fixed for the validator's lifetime.
func NewTokenValidator(resourceURL string, logger *slog.Logger) *TokenValidator {
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenValidator{
		entries:     make(map[string]*list.Element),
		lru:         list.New(),
		resourceURL: resourceURL,
		logger:      logger,
		parser:      jwt.NewParser(),
		now:         time.Now,
	}
}

// Validate validates a bearer token and returns the identity it carries.
// The second return reports whether the result was served from cache, so
// callers can account for hits and misses.
//
// Results are cached for five minutes keyed by the raw token string; a cache
// drop costs only a re-validation, never a wrong answer. On failure one of
// ErrInvalidTokenFormat, ErrTokenInvalid, ErrTokenExpired, or a
// *ValidationError is returned.
func (v *TokenValidator) Validate(token string) (*UserInfo, bool, error) {
	if info, ok := v.cacheGet(token); ok {
		v.logger.Debug("Token validation cache hit", "user_id", info.UserID)
		return info, true, nil
	}

	info, err := v.validateJWT(token)
	if err != nil {
		return nil, false, err
	}

	v.cachePut(token, info)

	v.logger.Info("Token validated",
		"user_id", info.UserID,
		"scopes", info.Scopes)

	return info.clone(), false, nil
}

// validateJWT decodes the token structure and checks expiry and audience.
// No signature check is performed; see the package documentation for the
// trust model behind that.
func (v *TokenValidator) validateJWT(token string) (*UserInfo, error) {
	claims := &Claims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		v.logger.Warn("Failed to decode JWT", "error", err)
		return nil, ErrInvalidTokenFormat
	}

	if claims.Subject == "" || claims.ExpiresAt == 0 {
		v.logger.Warn("JWT missing required claims",
			"has_sub", claims.Subject != "",
			"has_exp", claims.ExpiresAt != 0)
		return nil, ErrTokenInvalid
	}

	now := v.now()

	// exp == now counts as expired
	if claims.ExpiresAt <= now.Unix() {
		v.logger.Warn("Token expired", "expiry", claims.ExpiresAt, "now", now.Unix())
		return nil, ErrTokenExpired
	}

	// The audience check only applies when the claim is present
	if claims.Aud.Present() && !claims.Aud.Contains(v.resourceURL) {
		v.logger.Warn("Token audience mismatch", "expected", v.resourceURL)
		return nil, NewValidationError("token audience does not include %s", v.resourceURL)
	}

	scopes := strings.Fields(claims.Scope)

	v.logger.Debug("JWT claims extracted",
		"user_id", claims.Subject,
		"team_id", claims.TeamID,
		"scopes", scopes,
		"expiry", claims.ExpiresAt)

	return &UserInfo{
		UserID:   claims.Subject,
		TeamID:   claims.TeamID,
		Scopes:   scopes,
		CachedAt: now,
	}, nil
}

// cacheGet returns a cloned UserInfo on a fresh hit. Expired entries are
// evicted and reported as misses.
func (v *TokenValidator) cacheGet(token string) (*UserInfo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	elem, ok := v.entries[token]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if v.now().Sub(entry.info.CachedAt) > cacheTTL {
		v.lru.Remove(elem)
		delete(v.entries, token)
		return nil, false
	}

	v.lru.MoveToFront(elem)
	return entry.info.clone(), true
}

// cachePut inserts a validation result, replacing any existing entry for the
// token and evicting the least recently used entry at capacity.
func (v *TokenValidator) cachePut(token string, info *UserInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if elem, ok := v.entries[token]; ok {
		elem.Value.(*cacheEntry).info = info
		v.lru.MoveToFront(elem)
		return
	}

	for v.lru.Len() >= cacheCapacity {
		oldest := v.lru.Back()
		if oldest == nil {
			break
		}
		v.lru.Remove(oldest)
		delete(v.entries, oldest.Value.(*cacheEntry).token)
	}

	elem := v.lru.PushFront(&cacheEntry{token: token, info: info})
	v.entries[token] = elem
}

// CacheLen reports the number of cached validation results
func (v *TokenValidator) CacheLen() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lru.Len()
}

// ClearCache drops all cached validation results
func (v *TokenValidator) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = make(map[string]*list.Element)
	v.lru.Init()
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}
