package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fileshare/pkg/slogx"
	"golang.org/x/time/rate"
)

// ThrottleConfig describes a token bucket applied per request key.
type ThrottleConfig struct {
	// RequestsPerWindow is the sustained number of requests per Window.
	RequestsPerWindow int
	Window            time.Duration
	// Burst is the bucket size.
	Burst int
}

// Throttle profiles used by the router. They sit in front of handlers that
// have no domain specific limiter of their own; login attempts are governed
// by the service level lockout instead.
var (
	// RegisterThrottle caps account creation per client IP.
	// Override with: THROTTLE_REGISTER_REQUESTS, THROTTLE_REGISTER_WINDOW_SEC, THROTTLE_REGISTER_BURST
	RegisterThrottle = ThrottleConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		Burst:             5,
	}

	// APIThrottle caps the JSON management API per user and client IP.
	// Override with: THROTTLE_API_REQUESTS, THROTTLE_API_WINDOW_SEC, THROTTLE_API_BURST
	APIThrottle = ThrottleConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		Burst:             30,
	}
)

func init() {
	RegisterThrottle = ThrottleFromEnv("REGISTER", RegisterThrottle)
	APIThrottle = ThrottleFromEnv("API", APIThrottle)
}

// ThrottleFromEnv overlays THROTTLE_{prefix}_{REQUESTS,WINDOW_SEC,BURST} on
// def. Unparseable or non-positive values are ignored.
func ThrottleFromEnv(prefix string, def ThrottleConfig) ThrottleConfig {
	cfg := def
	if n, ok := positiveEnv("THROTTLE_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("THROTTLE_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("THROTTLE_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor derives the bucket key for a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the TCP peer address. Forwarding headers are
// ignored because on a LAN they are trivially spoofed.
func IPKeyExtractor(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedIPKeyExtractor prefers X-Forwarded-For then X-Real-IP before
// falling back to the peer address. Only use it behind a trusted proxy.
func ForwardedIPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return IPKeyExtractor(r)
}

// ClientIPExtractor picks the extractor matching the proxy trust setting.
func ClientIPExtractor(trustProxy bool) KeyExtractor {
	if trustProxy {
		return ForwardedIPKeyExtractor
	}
	return IPKeyExtractor
}

// UsernameKeyExtractor keys on the session username, "" when anonymous.
func UsernameKeyExtractor(r *http.Request) string {
	return UsernameFromContext(r.Context())
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

type bucketSet struct {
	buckets sync.Map // map[string]*rate.Limiter
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lastSweep time.Time
}

func (b *bucketSet) get(key string) *rate.Limiter {
	if l, ok := b.buckets.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := b.buckets.LoadOrStore(key, rate.NewLimiter(b.limit, b.burst))
	b.sweep()
	return actual.(*rate.Limiter)
}

// sweep drops full buckets at most every five minutes; a full bucket is
// indistinguishable from a new one.
func (b *bucketSet) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastSweep) < 5*time.Minute {
		return
	}
	b.lastSweep = time.Now()

	b.buckets.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(b.burst) {
			b.buckets.Delete(key)
		}
		return true
	})
}

// Throttle returns middleware enforcing cfg per key. Requests without a
// key pass through.
func Throttle(cfg ThrottleConfig, keyOf KeyExtractor) Middleware {
	set := &bucketSet{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyOf(r)
			if key == "" {
				log.Warn("throttle: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(key)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			log.Warn("throttled",
				"key", key,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// ThrottleByIP throttles on the client IP chosen by ipOf.
func ThrottleByIP(cfg ThrottleConfig, ipOf KeyExtractor) Middleware {
	return Throttle(cfg, ipOf)
}

// ThrottleByUser throttles on username and IP together.
func ThrottleByUser(cfg ThrottleConfig, ipOf KeyExtractor) Middleware {
	return Throttle(cfg, CompositeKeyExtractor(":", UsernameKeyExtractor, ipOf))
}
