package domain

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Session is one physical table's ordering period. The roster is owned by the
// session store; the billing core only reads it.
type Session struct {
	ID          int64
	TableNumber int
	Status      SessionStatus
	Diners      []Diner
	CreatedAt   time.Time
}

type Diner struct {
	ID   int64
	Name string
}

type MenuItem struct {
	ID        int64
	Name      string
	Price     float64
	Available bool
}

// LineStatus is the combined cart/kitchen state of an order line.
// A line starts as 'cart', is promoted to 'waiting' on confirmation and then
// moves strictly forward through the kitchen pipeline. 'placed' is a
// pre-kitchen state produced by external order importers; it counts as
// not-yet-progressed everywhere linkage and immutability are concerned.
type LineStatus string

const (
	StatusCart      LineStatus = "cart"
	StatusPlaced    LineStatus = "placed"
	StatusWaiting   LineStatus = "waiting"
	StatusPreparing LineStatus = "preparing"
	StatusReady     LineStatus = "ready"
	StatusServed    LineStatus = "served"
)

var statusRank = map[LineStatus]int{
	StatusCart:      0,
	StatusPlaced:    1,
	StatusWaiting:   2,
	StatusPreparing: 3,
	StatusReady:     4,
	StatusServed:    5,
}

func (s LineStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

func (s LineStatus) Rank() int { return statusRank[s] }

// Confirmed reports whether the line has entered the kitchen pipeline.
func (s LineStatus) Confirmed() bool { return s.Valid() && s.Rank() >= statusRank[StatusWaiting] }

// Progressed reports whether the line has moved past the point where its
// split linkage may still change.
func (s LineStatus) Progressed() bool { return s.Valid() && s.Rank() > statusRank[StatusPlaced] }

// CanAdvanceTo permits exactly one forward step within the kitchen pipeline.
func (s LineStatus) CanAdvanceTo(target LineStatus) bool {
	if !s.Confirmed() || !target.Valid() {
		return false
	}
	return target.Rank() == s.Rank()+1
}

// OrderLine is both a cart line (status 'cart') and a confirmed order
// (status 'waiting' and beyond); promotion rewrites status in place.
type OrderLine struct {
	ID           int64
	SessionID    int64
	MenuItemID   int64
	MenuItemName string
	UnitPrice    float64
	DinerName    *string
	Quantity     int
	Notes        string
	IsShared     bool
	IsTakeaway   bool
	Status       LineStatus
	SplitID      *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Owner returns the owning diner name, or "" for legacy unassigned rows.
func (l OrderLine) Owner() string {
	if l.DinerName == nil {
		return ""
	}
	return *l.DinerName
}

type SplitStatus string

const (
	SplitActive     SplitStatus = "active"
	SplitSuperseded SplitStatus = "superseded"
)

// SplitAgreement divides one menu item's total price equally among a named
// set of diners. Agreements are never hard-deleted, only superseded, and an
// agreement referenced by a progressed order is never mutated in place.
type SplitAgreement struct {
	ID            int64
	SessionID     int64
	MenuItemID    int64
	OriginalPrice float64
	SplitCount    int
	SplitPrice    float64
	Participants  []string
	Status        SplitStatus
	CreatedAt     time.Time
}

// Includes reports whether name participates in the agreement.
func (s SplitAgreement) Includes(name string) bool {
	for _, p := range s.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// SameTerms compares the agreement against requested parameters, ignoring
// participant order. Used for the idempotent cache-hit path of split creation.
func (s SplitAgreement) SameTerms(totalPrice float64, count int, participants []string) bool {
	if s.SplitCount != count || !MoneyEqual(s.OriginalPrice, totalPrice) {
		return false
	}
	if len(s.Participants) != len(participants) {
		return false
	}
	for _, p := range participants {
		if !s.Includes(p) {
			return false
		}
	}
	return true
}

type StatusLogEntry struct {
	OrderID   int64
	Status    LineStatus
	ChangedBy string
	ChangedAt time.Time
}
