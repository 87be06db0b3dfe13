package booking

import "time"

// EffectiveStatus derives the display-facing status of a booking's match at
// the given instant. The raw persisted status is only the starting point;
// rules are evaluated in strict order and the first match wins.
//
// The result depends on wall-clock time and must be re-derived on every
// read, never cached across a tick.
func EffectiveStatus(b *Booking, now time.Time) MatchStatus {
	m := b.Match
	if m == nil {
		return MatchStatusNone
	}

	confirmed := ConfirmedCount(m)
	teamsIncomplete := confirmed < m.MaxPlayers

	switch {
	case b.IsOngoing(now) && m.Status != MatchStatusCompleted && m.Status != MatchStatusCancelled:
		// An under-subscribed public match silently lapses once its window
		// starts; the booking itself is the commitment for private matches.
		if m.IsPublic && teamsIncomplete {
			return MatchStatusCancelled
		}
		return MatchStatusInProgress

	case b.IsPast(now) && m.Status != MatchStatusCancelled:
		if m.IsPublic && teamsIncomplete {
			return MatchStatusCancelled
		}
		if !m.HasScore() {
			return MatchStatusNotCompleted
		}
		return MatchStatusCompleted

	case !b.IsPast(now) && m.Status == MatchStatusOpen && teamsIncomplete:
		return MatchStatusNotTeamCompleted

	default:
		return m.Status
	}
}
