package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"
)

// In-memory throttling for a single instance. Counters are sliding windows of
// request timestamps, pruned on every hit and by a background sweep. Login
// lockout prefers Redis when configured so penalties survive restarts and are
// shared across replicas.

type timestamps []int64 // unix nanos

func nowUnix() int64 { return time.Now().UnixNano() }

func getEnvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return time.Duration(v) * time.Second
		}
	}
	return def
}

// pruneWindow drops timestamps older than cutoff.
func pruneWindow(arr timestamps, cutoff int64) timestamps {
	var kept timestamps
	for _, ts := range arr {
		if ts >= cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}

// retryAfterSeconds reports how long until the oldest request in the window
// expires, minimum one second.
func retryAfterSeconds(arr timestamps, now int64, window time.Duration) int {
	if len(arr) == 0 {
		return int(window.Seconds())
	}
	oldest := arr[0]
	for _, ts := range arr {
		if ts < oldest {
			oldest = ts
		}
	}
	sec := int((oldest + int64(window) - now) / 1e9)
	if sec < 1 {
		sec = 1
	}
	return sec
}

func writeThrottled(w http.ResponseWriter, message string, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
		Success: false,
		Message: message,
		Data:    map[string]interface{}{"retry_after_seconds": retryAfter},
	})
}

// lockoutDuration escalates with repeat offenses.
func lockoutDuration(n int64) time.Duration {
	switch {
	case n <= 1:
		return time.Minute
	case n == 2:
		return 5 * time.Minute
	case n == 3:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

// IPRateLimiter applies per-IP sliding-window caps with optional
// trusted-proxy header parsing.
type IPRateLimiter struct {
	window      time.Duration
	mu          sync.Mutex
	state       map[string]timestamps
	cleanupTick time.Duration
	trustedCIDR []string
	instanceMax int // 0 means use env defaults
}

// NewIPRateLimiter builds a limiter with the given per-window cap. A maxReq of
// zero defers to RATE_IP_DEFAULT and RATE_IP_AUTH.
func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		window:      window,
		state:       make(map[string]timestamps),
		cleanupTick: getEnvDuration("RATE_CLEANUP_SECONDS", 60*time.Second),
		instanceMax: maxReq,
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP. X-Forwarded-For and X-Real-IP are
// honored only when the remote address falls inside trustedCIDR, otherwise a
// client could spoof its way past the limiter.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isAuthPath(path string) bool {
	return strings.HasSuffix(path, "/register") ||
		strings.HasSuffix(path, "/login") ||
		strings.HasSuffix(path, "/refresh")
}

// limitFor picks the per-window cap. Credential endpoints get a tighter one
// regardless of the instance default.
func (l *IPRateLimiter) limitFor(path string) int {
	if isAuthPath(path) {
		if v := getEnvInt("RATE_IP_AUTH", 0); v > 0 {
			return v
		}
		return 50
	}
	if l.instanceMax > 0 {
		return l.instanceMax
	}
	return getEnvInt("RATE_IP_DEFAULT", 200)
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		now := nowUnix()

		l.mu.Lock()
		arr := pruneWindow(l.state[ip], now-int64(l.window))
		arr = append(arr, now)
		l.state[ip] = arr
		count := len(arr)
		l.mu.Unlock()

		limit := l.limitFor(r.URL.Path)
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > limit {
			writeThrottled(w, "Too many requests, please try again later", retryAfterSeconds(arr, now, l.window))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(l.cleanupTick)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		cutoff := nowUnix() - int64(l.window)
		for k, arr := range l.state {
			if kept := pruneWindow(arr, cutoff); len(kept) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = kept
			}
		}
		l.mu.Unlock()
	}
}

// UserRateLimiter throttles authenticated traffic per user, split into read,
// write, and withdrawal buckets so a burst on one kind of endpoint does not
// starve the others. Blowing past a cap earns an escalating penalty.
type UserRateLimiter struct {
	mu            sync.Mutex
	state         map[string]timestamps // key = u:<id>:<bucket>
	penalty       map[string]penaltyInfo
	window        time.Duration
	cleanupTick   time.Duration
	instanceRead  int
	instanceWrite int
}

type penaltyInfo struct {
	Level int
	Until int64 // unix nanos
}

// NewUserRateLimiter builds a limiter with per-window read and write caps and
// a window in seconds. Zero caps defer to RATE_USER_READ and RATE_USER_WRITE.
func NewUserRateLimiter(maxRead, maxWrite, windowSec int) *UserRateLimiter {
	l := &UserRateLimiter{
		state:         make(map[string]timestamps),
		penalty:       make(map[string]penaltyInfo),
		window:        time.Duration(windowSec) * time.Second,
		cleanupTick:   getEnvDuration("RATE_CLEANUP_SECONDS", 60*time.Second),
		instanceRead:  maxRead,
		instanceWrite: maxWrite,
	}
	go l.cleanupLoop()
	return l
}

func (l *UserRateLimiter) bucketFor(r *http.Request) (string, int) {
	if strings.HasSuffix(r.URL.Path, "/wallet/withdraw") {
		return "withdraw", getEnvInt("RATE_USER_WITHDRAW", 5)
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if l.instanceRead > 0 {
			return "read", l.instanceRead
		}
		return "read", getEnvInt("RATE_USER_READ", 120)
	default:
		if l.instanceWrite > 0 {
			return "write", l.instanceWrite
		}
		return "write", getEnvInt("RATE_USER_WRITE", 30)
	}
}

func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetUserID(r)
		if !ok {
			// Unauthenticated traffic is covered by the IP limiter.
			next.ServeHTTP(w, r)
			return
		}
		if role, _ := r.Context().Value(utils.UserRoleKey).(string); role == models.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		bucket, limit := l.bucketFor(r)
		key := fmt.Sprintf("u:%d:%s", uid, bucket)
		now := nowUnix()

		l.mu.Lock()
		if pi := l.penalty[key]; pi.Until > now {
			l.mu.Unlock()
			writeThrottled(w, "Too many requests, please try again later", int((pi.Until-now)/1e9)+1)
			return
		}
		arr := pruneWindow(l.state[key], now-int64(l.window))
		arr = append(arr, now)
		l.state[key] = arr
		count := len(arr)
		if count > limit {
			level := l.penalty[key].Level + 1
			dur := lockoutDuration(int64(level))
			l.penalty[key] = penaltyInfo{Level: level, Until: now + int64(dur)}
			l.mu.Unlock()
			writeThrottled(w, "Too many requests, please try again later", int(dur.Seconds()))
			return
		}
		l.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count))
		next.ServeHTTP(w, r)
	})
}

func (l *UserRateLimiter) cleanupLoop() {
	tick := time.NewTicker(l.cleanupTick)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := nowUnix()
		cutoff := now - int64(l.window)
		for k, arr := range l.state {
			if kept := pruneWindow(arr, cutoff); len(kept) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = kept
			}
		}
		for k, p := range l.penalty {
			if p.Until < now {
				delete(l.penalty, k)
			}
		}
		l.mu.Unlock()
	}
}

// Failed-login tracking with progressive lockout.
var (
	loginMu   sync.Mutex
	failedMap = make(map[string]int)
	lockMap   = make(map[string]int64) // lock expiry, unix nanos
)

func loginKeys(userID uint) (failKey, lockKey string) {
	return fmt.Sprintf("login:fail:u:%d", userID), fmt.Sprintf("login:lock:u:%d", userID)
}

// IsAccountLocked reports whether the account is in a lockout window and how
// long remains.
func IsAccountLocked(userID uint) (bool, time.Duration) {
	if utils.RedisClient != nil {
		_, lockKey := loginKeys(userID)
		ttl, err := utils.RedisClient.TTL(context.Background(), lockKey).Result()
		if err == nil && ttl > 0 {
			return true, ttl
		}
		return false, 0
	}

	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	until := lockMap[key]
	if until == 0 {
		return false, 0
	}
	now := nowUnix()
	if until > now {
		return true, time.Duration(until - now)
	}
	delete(lockMap, key)
	delete(failedMap, key)
	return false, 0
}

// RecordFailedLogin bumps the failure counter and extends the lockout.
func RecordFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		failKey, lockKey := loginKeys(userID)
		failures, err := utils.RedisClient.Incr(ctx, failKey).Result()
		if err == nil {
			_ = utils.RedisClient.Expire(ctx, failKey, 30*time.Minute).Err()
			_ = utils.RedisClient.Set(ctx, lockKey, "1", lockoutDuration(failures)).Err()
			return
		}
		// Redis unavailable, fall back to the in-memory tracker.
	}

	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	failedMap[key]++
	lockMap[key] = nowUnix() + int64(lockoutDuration(int64(failedMap[key])))
}

// ResetFailedLogin clears the counter after a successful login.
func ResetFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		failKey, lockKey := loginKeys(userID)
		_, _ = utils.RedisClient.Del(context.Background(), failKey, lockKey).Result()
		return
	}

	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	delete(lockMap, key)
	delete(failedMap, key)
}

// WebhookLimiter guards machine-facing endpoints such as the cron trigger.
// Whitelisted IPs bypass the window entirely.
type WebhookLimiter struct {
	maxReq    int
	window    time.Duration
	whitelist map[string]bool
	mu        sync.Mutex
	state     map[string]timestamps
}

func NewWebhookLimiter(maxReq int, window time.Duration, whitelist []string) *WebhookLimiter {
	wl := make(map[string]bool)
	for _, ip := range whitelist {
		if ip = strings.TrimSpace(ip); ip != "" {
			wl[ip] = true
		}
	}
	return &WebhookLimiter{
		maxReq:    maxReq,
		window:    window,
		whitelist: wl,
		state:     make(map[string]timestamps),
	}
}

func (l *WebhookLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, nil)
		if l.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		now := nowUnix()
		l.mu.Lock()
		arr := pruneWindow(l.state[ip], now-int64(l.window))
		arr = append(arr, now)
		l.state[ip] = arr
		count := len(arr)
		l.mu.Unlock()

		if count > l.maxReq {
			writeThrottled(w, "Too many requests, please try again later", retryAfterSeconds(arr, now, l.window))
			return
		}
		next.ServeHTTP(w, r)
	})
}
