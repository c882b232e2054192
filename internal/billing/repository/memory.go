package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"dinesplit/internal/domain"
)

// InMemory is a Store kept in process memory, used for development runs and
// tests. A single mutex gives it the same atomicity the Postgres store gets
// from transactions.
type InMemory struct {
	mu sync.Mutex

	sessions map[int64]domain.Session
	menu     map[int64]domain.MenuItem
	lines    map[int64]*domain.OrderLine
	splits   map[int64]*domain.SplitAgreement
	log      []domain.StatusLogEntry

	nextSession int64
	nextMenu    int64
	nextLine    int64
	nextSplit   int64
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		sessions: make(map[int64]domain.Session),
		menu:     make(map[int64]domain.MenuItem),
		lines:    make(map[int64]*domain.OrderLine),
		splits:   make(map[int64]*domain.SplitAgreement),
	}
}

// SeedSession registers a session with its diner roster and returns its id.
func (m *InMemory) SeedSession(tableNumber int, dinerNames ...string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSession++
	s := domain.Session{
		ID:          m.nextSession,
		TableNumber: tableNumber,
		Status:      domain.SessionActive,
		CreatedAt:   time.Now().UTC(),
	}
	for i, name := range dinerNames {
		s.Diners = append(s.Diners, domain.Diner{ID: int64(i + 1), Name: name})
	}
	m.sessions[s.ID] = s
	return s.ID
}

// EndSession flips a session to 'ended'. Writes against it are then rejected.
func (m *InMemory) EndSession(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Status = domain.SessionEnded
		m.sessions[id] = s
	}
}

// SeedMenuItem registers a menu item and returns its id.
func (m *InMemory) SeedMenuItem(name string, price float64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMenu++
	m.menu[m.nextMenu] = domain.MenuItem{ID: m.nextMenu, Name: name, Price: price, Available: true}
	return m.nextMenu
}

func (m *InMemory) GetSession(_ context.Context, id int64) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, domain.NotFoundf("session %d not found", id)
	}
	return s, nil
}

func (m *InMemory) GetMenuItem(_ context.Context, id int64) (domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mi, ok := m.menu[id]
	if !ok {
		return domain.MenuItem{}, domain.NotFoundf("menu item %d not found", id)
	}
	return mi, nil
}

func (m *InMemory) decorate(l domain.OrderLine) domain.OrderLine {
	if mi, ok := m.menu[l.MenuItemID]; ok {
		l.MenuItemName = mi.Name
		l.UnitPrice = mi.Price
	}
	return l
}

func (m *InMemory) GetLine(_ context.Context, id int64) (domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[id]
	if !ok {
		return domain.OrderLine{}, domain.NotFoundf("order line %d not found", id)
	}
	return m.decorate(*l), nil
}

func (m *InMemory) FindCartLine(_ context.Context, sessionID int64, dinerName string, menuItemID int64) (domain.OrderLine, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lines {
		if l.SessionID == sessionID && l.MenuItemID == menuItemID &&
			l.Status == domain.StatusCart && l.Owner() == dinerName {
			return m.decorate(*l), true, nil
		}
	}
	return domain.OrderLine{}, false, nil
}

func (m *InMemory) InsertCartLine(_ context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLine++
	now := time.Now().UTC()
	l := line
	l.ID = m.nextLine
	l.Status = domain.StatusCart
	l.SplitID = nil
	l.CreatedAt = now
	l.UpdatedAt = now
	m.lines[l.ID] = &l
	return m.decorate(l), nil
}

func (m *InMemory) SetLineQuantity(_ context.Context, id int64, quantity int) (domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[id]
	if !ok || l.Status != domain.StatusCart {
		return domain.OrderLine{}, domain.NotFoundf("cart line %d not found", id)
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now().UTC()
	return m.decorate(*l), nil
}

func (m *InMemory) DeleteCartLine(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[id]
	if !ok || l.Status != domain.StatusCart {
		return domain.NotFoundf("cart line %d not found", id)
	}
	delete(m.lines, id)
	return nil
}

func (m *InMemory) ClearCart(_ context.Context, sessionID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, l := range m.lines {
		if l.SessionID == sessionID && l.Status == domain.StatusCart {
			delete(m.lines, id)
			n++
		}
	}
	return n, nil
}

func (m *InMemory) ListLines(_ context.Context, sessionID int64, statuses []domain.LineStatus, dinerName string) ([]domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[domain.LineStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []domain.OrderLine
	for _, l := range m.lines {
		if l.SessionID != sessionID || !want[l.Status] {
			continue
		}
		if dinerName != "" && l.Owner() != dinerName {
			continue
		}
		out = append(out, m.decorate(*l))
	}
	sortLinesByID(out)
	return out, nil
}

func (m *InMemory) GetActiveSplit(_ context.Context, sessionID, menuItemID int64) (domain.SplitAgreement, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.activeSplit(sessionID, menuItemID); s != nil {
		return *s, true, nil
	}
	return domain.SplitAgreement{}, false, nil
}

func (m *InMemory) activeSplit(sessionID, menuItemID int64) *domain.SplitAgreement {
	for _, s := range m.splits {
		if s.SessionID == sessionID && s.MenuItemID == menuItemID && s.Status == domain.SplitActive {
			return s
		}
	}
	return nil
}

func (m *InMemory) GetSplits(_ context.Context, ids []int64) (map[int64]domain.SplitAgreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]domain.SplitAgreement, len(ids))
	for _, id := range ids {
		if s, ok := m.splits[id]; ok {
			out[id] = *s
		}
	}
	return out, nil
}

func (m *InMemory) ReplaceActiveSplit(_ context.Context, split domain.SplitAgreement) (domain.SplitAgreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old := m.activeSplit(split.SessionID, split.MenuItemID); old != nil {
		old.Status = domain.SplitSuperseded
	}
	m.nextSplit++
	s := split
	s.ID = m.nextSplit
	s.Status = domain.SplitActive
	s.CreatedAt = time.Now().UTC()
	m.splits[s.ID] = &s
	return s, nil
}

func (m *InMemory) LinkSplit(_ context.Context, sessionID, menuItemID, splitID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.lines {
		if l.SessionID == sessionID && l.MenuItemID == menuItemID && l.IsShared &&
			(l.Status == domain.StatusCart || l.Status == domain.StatusPlaced) {
			id := splitID
			l.SplitID = &id
			l.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (m *InMemory) ConfirmCart(_ context.Context, sessionID int64, changedBy string) ([]domain.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	var out []domain.OrderLine
	for _, l := range m.lines {
		if l.SessionID == sessionID && l.Status == domain.StatusCart {
			l.Status = domain.StatusWaiting
			l.UpdatedAt = now
			m.log = append(m.log, domain.StatusLogEntry{
				OrderID: l.ID, Status: domain.StatusWaiting, ChangedBy: changedBy, ChangedAt: now,
			})
			out = append(out, m.decorate(*l))
		}
	}
	sortLinesByID(out)
	return out, nil
}

func (m *InMemory) AdvanceOrder(_ context.Context, orderID int64, target domain.LineStatus, changedBy string) (domain.OrderLine, domain.LineStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[orderID]
	if !ok {
		return domain.OrderLine{}, "", domain.NotFoundf("order %d not found", orderID)
	}
	from := l.Status
	if !from.CanAdvanceTo(target) {
		return domain.OrderLine{}, "", domain.Validationf(
			"invalid transition %s -> %s for order %d", from, target, orderID)
	}
	now := time.Now().UTC()
	l.Status = target
	l.UpdatedAt = now
	m.log = append(m.log, domain.StatusLogEntry{
		OrderID: orderID, Status: target, ChangedBy: changedBy, ChangedAt: now,
	})
	return m.decorate(*l), from, nil
}

func (m *InMemory) CountUnserved(_ context.Context, sessionID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.lines {
		if l.SessionID == sessionID && l.Status.Confirmed() && l.Status != domain.StatusServed {
			n++
		}
	}
	return n, nil
}

// StatusLog returns a copy of the audit trail for one order.
func (m *InMemory) StatusLog(orderID int64) []domain.StatusLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StatusLogEntry
	for _, e := range m.log {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out
}

func sortLinesByID(lines []domain.OrderLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
}
