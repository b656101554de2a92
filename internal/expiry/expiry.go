package expiry

import (
    "fmt"
    "strconv"
    "strings"
    "time"
)

// DefaultTTL is how long a generated code is shown before the page asks for a new one.
const DefaultTTL = 10 * time.Minute

var defaultLoc = time.UTC

// SetDefaultLocation sets the location used for issue/expiry timestamps (fallback UTC).
func SetDefaultLocation(loc *time.Location) {
    if loc != nil {
        defaultLoc = loc
    }
}

// Location returns the configured location.
func Location() *time.Location { return defaultLoc }

// NormalizeTTL falls back to DefaultTTL for non-positive values and truncates to whole seconds (at least 1s).
func NormalizeTTL(ttl time.Duration) time.Duration {
    if ttl <= 0 {
        return DefaultTTL
    }
    if ttl < time.Second {
        return time.Second
    }
    return ttl.Truncate(time.Second)
}

// ExpiresAt returns the last instant a code issued at 'issued' is still valid.
func ExpiresAt(issued time.Time, ttl time.Duration) time.Time {
    return issued.In(defaultLoc).Add(NormalizeTTL(ttl))
}

// IsExpired reports whether 'at' is strictly after the expiry instant.
func IsExpired(issued, at time.Time, ttl time.Duration) bool {
    return at.After(ExpiresAt(issued, ttl))
}

// Remaining returns time left until expiry, never negative.
func Remaining(issued, at time.Time, ttl time.Duration) time.Duration {
    left := ExpiresAt(issued, ttl).Sub(at)
    if left < 0 {
        return 0
    }
    return left
}

// Countdown renders d as MM:SS, dropping fractions of a second.
func Countdown(d time.Duration) string {
    if d < 0 {
        d = 0
    }
    secs := int(d / time.Second)
    return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ParseCountdown accepts "MM:SS" and returns the duration.
func ParseCountdown(s string) (time.Duration, error) {
    i := strings.LastIndexByte(s, ':')
    if i < 2 || len(s)-i != 3 {
        return 0, fmt.Errorf("countdown must be MM:SS")
    }
    mm, ss := s[:i], s[i+1:]
    for _, part := range []string{mm, ss} {
        for j := 0; j < len(part); j++ {
            if part[j] < '0' || part[j] > '9' {
                return 0, fmt.Errorf("countdown must be digits: MM:SS")
            }
        }
    }
    m, _ := strconv.Atoi(mm)
    sec, _ := strconv.Atoi(ss)
    if sec > 59 {
        return 0, fmt.Errorf("seconds must be 00..59")
    }
    return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
