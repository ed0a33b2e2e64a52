package utils

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type stateEntry struct {
	expiresAt time.Time
}

var (
	stateStore   = map[string]stateEntry{}
	stateValues  = map[string]string{}
	stateStoreMu sync.Mutex

	googleTokens   = map[uint]stateEntry{}
	googleTokenVal = map[uint]string{}
	googleTokenMu  sync.Mutex
)

// SaveState stores an OAuth state token with TTL to mitigate CSRF.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	// Prefer Redis for distributed consistency
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Set(ctx, "oauth:state:"+state, "1", ttl).Err()
		return
	}
	// Fallback to in-memory (single-instance only)
	stateStoreMu.Lock()
	stateStore[state] = stateEntry{expiresAt: time.Now().Add(ttl)}
	stateStoreMu.Unlock()
}

// ConsumeState validates and removes a state token.
func ConsumeState(state string) bool {
	// Prefer Redis: GETDEL to ensure single-use
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := "oauth:state:" + state
		if v, err := rc.GetDel(ctx, key).Result(); err == nil {
			return v != ""
		}
		// Fallback to Lua to attempt atomic get+del when GETDEL not available
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			return res != nil
		}
		return false
	}
	// Fallback to in-memory
	stateStoreMu.Lock()
	entry, ok := stateStore[state]
	if ok {
		delete(stateStore, state)
	}
	stateStoreMu.Unlock()
	if !ok {
		return false
	}
	return time.Now().Before(entry.expiresAt)
}

// SaveStateValue stores an OAuth state token carrying a payload, used when
// the callback needs to recover who started the flow.
func SaveStateValue(state, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, "oauth:statev:"+state, value, ttl).Err(); err == nil {
			return
		}
	}
	stateStoreMu.Lock()
	stateStore[state] = stateEntry{expiresAt: time.Now().Add(ttl)}
	stateValues[state] = value
	stateStoreMu.Unlock()
}

// ConsumeStateValue validates a state token and returns its payload, single use.
func ConsumeStateValue(state string) (string, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.GetDel(ctx, "oauth:statev:"+state).Result(); err == nil {
			return v, v != ""
		}
	}
	stateStoreMu.Lock()
	entry, ok := stateStore[state]
	value := stateValues[state]
	if ok {
		delete(stateStore, state)
		delete(stateValues, state)
	}
	stateStoreMu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return value, true
}

// SaveGoogleToken stores a user's Google access token until it expires.
// Sheets sync reads it back on every outbound request.
func SaveGoogleToken(userID uint, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 55 * time.Minute
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, googleTokenKey(userID), token, ttl).Err(); err == nil {
			return
		}
	}
	googleTokenMu.Lock()
	googleTokens[userID] = stateEntry{expiresAt: time.Now().Add(ttl)}
	googleTokenVal[userID] = token
	googleTokenMu.Unlock()
}

// GetGoogleToken returns the stored access token for a user, or "" when absent or expired.
func GetGoogleToken(userID uint) string {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.Get(ctx, googleTokenKey(userID)).Result(); err == nil {
			return v
		}
	}
	googleTokenMu.Lock()
	defer googleTokenMu.Unlock()
	entry, ok := googleTokens[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(googleTokens, userID)
		delete(googleTokenVal, userID)
		return ""
	}
	return googleTokenVal[userID]
}

// DeleteGoogleToken drops the stored token, forcing a re-auth on next sheets call.
func DeleteGoogleToken(userID uint) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Del(ctx, googleTokenKey(userID)).Err()
	}
	googleTokenMu.Lock()
	delete(googleTokens, userID)
	delete(googleTokenVal, userID)
	googleTokenMu.Unlock()
}

func googleTokenKey(userID uint) string {
	return "google:token:" + strconv.FormatUint(uint64(userID), 10)
}
