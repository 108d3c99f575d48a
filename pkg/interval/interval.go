// Package interval holds the pure time-interval primitives shared by the
// reservation guard and the availability projector. Everything here is
// stateless and side-effect free.
package interval

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("end must be after start")

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Touching endpoints do not
// overlap, so back-to-back reservations are admitted.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Validate checks the single structural invariant of an interval.
func Validate(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidInterval
	}
	return nil
}

// NormalizeToUTC interprets the wall-clock reading of local in the given IANA
// zone and returns the absolute instant in UTC. See ResolveLocal for how
// ambiguous and nonexistent local times are settled.
func NormalizeToUTC(local time.Time, zoneID string) (time.Time, error) {
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return time.Time{}, err
	}
	return ResolveLocal(local, loc).UTC(), nil
}

// ResolveLocal maps a wall-clock reading to an instant in loc. Around DST
// transitions a wall time can name two instants or none; both cases resolve
// to the zone's standard (non-DST) offset so the reservation path stays total
// and deterministic.
func ResolveLocal(local time.Time, loc *time.Location) time.Time {
	y, mo, d := local.Date()
	h, mi, s := local.Clock()

	std := time.FixedZone(loc.String(), standardOffset(loc, y))
	cand := time.Date(y, mo, d, h, mi, s, local.Nanosecond(), std)
	if sameWall(cand.In(loc), local) {
		// Standard-offset reading round-trips: plain standard time, or the
		// standard half of an ambiguous fall-back hour.
		return cand
	}

	t := time.Date(y, mo, d, h, mi, s, local.Nanosecond(), loc)
	if sameWall(t, local) {
		return t
	}

	// Spring-forward gap: the wall time never occurred. Keep the
	// standard-offset reading rather than failing.
	return cand
}

// standardOffset returns the zone's non-DST offset for the given year.
// Standard time carries the smaller UTC offset of the two solstice samples,
// which holds for both hemispheres.
func standardOffset(loc *time.Location, year int) int {
	_, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()
	return min(jan, jul)
}

func sameWall(a, b time.Time) bool {
	ay, amo, ad := a.Date()
	by, bmo, bd := b.Date()
	ah, ami, as := a.Clock()
	bh, bmi, bs := b.Clock()
	return ay == by && amo == bmo && ad == bd && ah == bh && ami == bmi && as == bs
}
