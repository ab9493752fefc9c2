package domain

// Acquisition is one squad entry: a lot won at auction and the price paid.
type Acquisition struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Participant is one identity inside a room. The admin is a participant too and
// bids under the same constraints as everyone else.
type Participant struct {
	DisplayName string        `json:"displayName"`
	Balance     int           `json:"balance"`
	Squad       []Acquisition `json:"squad"`
	IsAdmin     bool          `json:"isAdmin"`
}

func (p *Participant) SquadSize() int {
	return len(p.Squad)
}

func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	next := *p
	if p.Squad != nil {
		next.Squad = make([]Acquisition, len(p.Squad))
		copy(next.Squad, p.Squad)
	}
	return &next
}
