package booking

import "strings"

// SameUser reports whether two user references point at the same person.
// Some aggregates carry partial snapshots, so equality falls back through a
// chain: matching IDs, matching usernames, matching emails, or one side's
// email local-part equalling the other's username. Empty fields never match.
//
// Every identity comparison in the codebase goes through here; do not
// compare user fields inline.
func SameUser(a, b User) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	if a.Username != "" && a.Username == b.Username {
		return true
	}
	if a.Email != "" && a.Email == b.Email {
		return true
	}
	if local := emailLocalPart(a.Email); local != "" && local == b.Username {
		return true
	}
	if local := emailLocalPart(b.Email); local != "" && local == a.Username {
		return true
	}
	return false
}

func emailLocalPart(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return email[:at]
}

// FindPlayer returns the membership record for the given user, if any.
func FindPlayer(m *Match, u User) *Player {
	if m == nil {
		return nil
	}
	for i := range m.Players {
		if SameUser(m.Players[i].User, u) {
			return &m.Players[i]
		}
	}
	return nil
}

// IsCreator reports whether the given user created the match.
func IsCreator(m *Match, u User) bool {
	if m == nil {
		return false
	}
	return SameUser(m.Creator, u)
}
