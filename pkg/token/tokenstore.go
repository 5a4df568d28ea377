package tokenstore

import (
	"sync"
	"time"
)

// in-memory token revocation store. Entries are kept until the token itself
// would have expired; after that the signature check rejects it anyway.
var (
	mu            sync.Mutex
	revokedTokens = map[string]time.Time{}
)

// RevokeToken marks jti as revoked until exp.
func RevokeToken(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	revokedTokens[jti] = exp
	purgeNoLock(time.Now())
}

func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	_, ok := revokedTokens[jti]
	return ok
}

func purgeNoLock(now time.Time) {
	for k, exp := range revokedTokens {
		if !exp.IsZero() && exp.Before(now) {
			delete(revokedTokens, k)
		}
	}
}
