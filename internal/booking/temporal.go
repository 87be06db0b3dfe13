package booking

import "time"

// RegistrationCutoff is the single deadline governing join/invite/respond
// eligibility: registration closes this long before the match starts.
const RegistrationCutoff = 45 * time.Minute

// IsOngoing reports whether now falls inside the booked window.
// A cancelled booking is never ongoing.
func (b *Booking) IsOngoing(now time.Time) bool {
	if b.Status == BookingCancelled {
		return false
	}
	return !now.Before(b.Start) && !now.After(b.End)
}

// IsPast reports whether the booked window has elapsed. Cancelled bookings
// count as past regardless of their date.
func (b *Booking) IsPast(now time.Time) bool {
	if b.Status == BookingCancelled {
		return true
	}
	return now.After(b.End)
}

// IsUpcoming reports whether the booking lies ahead and is not cancelled.
func (b *Booking) IsUpcoming(now time.Time) bool {
	if b.Status == BookingCancelled {
		return false
	}
	return now.Before(b.Start)
}

// RegistrationOpen reports whether join/invite/respond actions are still
// permitted. The window closes exactly at start minus RegistrationCutoff,
// independent of IsOngoing and IsPast.
func (b *Booking) RegistrationOpen(now time.Time) bool {
	return now.Before(b.Start.Add(-RegistrationCutoff))
}
