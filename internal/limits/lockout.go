package limits

import (
	"math"
	"time"
)

// LockoutPolicy locks an account after MaxAttempts consecutive failed
// sign-ins for LockDuration.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// Locked reports whether lockedUntil is still in the future and how long
// remains.
func (p LockoutPolicy) Locked(lockedUntil *time.Time, now time.Time) (bool, time.Duration) {
	if lockedUntil == nil || !lockedUntil.After(now) {
		return false, 0
	}
	return true, lockedUntil.Sub(now)
}

// ShouldLock reports whether attempts failures reach the threshold and, if so,
// when the lock ends.
func (p LockoutPolicy) ShouldLock(attempts int, now time.Time) (bool, time.Time) {
	if attempts < p.MaxAttempts {
		return false, time.Time{}
	}
	return true, now.Add(p.LockDuration)
}

// RemainingMinutes rounds d up to whole minutes.
func RemainingMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
