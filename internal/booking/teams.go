package booking

import "fmt"

// Composition partitions a match's players by response status and team.
// The confirmed slices preserve the match's join order.
type Composition struct {
	MaxPerTeam int
	TeamA      []Player // confirmed, assigned to A
	TeamB      []Player // confirmed, assigned to B
	Unassigned []Player // confirmed, no team yet
	Pending    []Player
	Declined   []Player
}

// ConfirmedCount counts confirmed players regardless of team.
func ConfirmedCount(m *Match) int {
	n := 0
	for _, p := range m.Players {
		if p.Status == PlayerConfirmed {
			n++
		}
	}
	return n
}

// Compose builds the composition view for a match.
func Compose(m *Match) Composition {
	c := Composition{MaxPerTeam: m.MaxPlayers / 2}
	for _, p := range m.Players {
		switch p.Status {
		case PlayerConfirmed:
			switch p.Team {
			case TeamA:
				c.TeamA = append(c.TeamA, p)
			case TeamB:
				c.TeamB = append(c.TeamB, p)
			default:
				c.Unassigned = append(c.Unassigned, p)
			}
		case PlayerPending:
			c.Pending = append(c.Pending, p)
		case PlayerDeclined:
			c.Declined = append(c.Declined, p)
		}
	}
	return c
}

func (c Composition) confirmedFor(t Team) []Player {
	if t == TeamB {
		return c.TeamB
	}
	return c.TeamA
}

// TeamComplete reports whether a side holds exactly MaxPerTeam confirmed
// players.
func (c Composition) TeamComplete(t Team) bool {
	return len(c.confirmedFor(t)) == c.MaxPerTeam
}

// CanEnterScore reports whether score entry is permitted: both sides exactly
// full, not "at least".
func (c Composition) CanEnterScore() bool {
	return c.TeamComplete(TeamA) && c.TeamComplete(TeamB)
}

// ConfirmedTotal is the number of confirmed players across both teams and
// the unassigned pool.
func (c Composition) ConfirmedTotal() int {
	return len(c.TeamA) + len(c.TeamB) + len(c.Unassigned)
}

// Badge renders the "2/4 confirmed" summary for the whole match.
func (c Composition) Badge() string {
	return fmt.Sprintf("%d/%d confirmed", c.ConfirmedTotal(), c.MaxPerTeam*2)
}

// Slots returns the fixed-length slot array for one side: index i holds the
// i-th confirmed player of that team, trailing slots are nil and invitable.
// Pending and declined players never occupy a slot.
func (c Composition) Slots(t Team) []*Player {
	slots := make([]*Player, c.MaxPerTeam)
	members := c.confirmedFor(t)
	for i := range slots {
		if i < len(members) {
			p := members[i]
			slots[i] = &p
		}
	}
	return slots
}
