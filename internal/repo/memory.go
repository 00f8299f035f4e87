package repo

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps everything in process memory. It backs the server
// when no database is configured and stands in for Postgres in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	next     int
	users    map[int]memUser
	turbines map[int]Turbine
	valves   map[int]Valve
	results  map[int]Result
}

type memUser struct {
	User
	hash string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    map[int]memUser{},
		turbines: map[int]Turbine{},
		valves:   map[int]Valve{},
		results:  map[int]Result{},
	}
}

func (m *MemoryRepository) id() int {
	m.next++
	return m.next
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Login == login {
			return 0, fmt.Errorf("user %q already exists", login)
		}
	}
	id := m.id()
	m.users[id] = memUser{User: User{ID: id, Login: login, Email: email, CreatedAt: time.Now().UTC()}, hash: password}
	return id, nil
}

func (m *MemoryRepository) GetByLogin(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Login == login {
			return u.ID, u.hash, nil
		}
	}
	return 0, "", ErrNotFound
}

func (m *MemoryRepository) GetUserByID(_ context.Context, id int) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u.User, nil
}

func (m *MemoryRepository) ListTurbines(_ context.Context) ([]Turbine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turbine, 0, len(m.turbines))
	for _, t := range m.turbines {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) CreateTurbine(_ context.Context, name string) (Turbine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.turbines {
		if t.Name == name {
			return Turbine{}, fmt.Errorf("turbine %q already exists", name)
		}
	}
	t := Turbine{ID: m.id(), Name: name}
	m.turbines[t.ID] = t
	return t, nil
}

func (m *MemoryRepository) DeleteTurbine(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.turbines[id]; !ok {
		return ErrNotFound
	}
	delete(m.turbines, id)
	for vid, v := range m.valves {
		if v.TurbineID != nil && *v.TurbineID == id {
			v.TurbineID = nil
			m.valves[vid] = v
		}
	}
	return nil
}

func (m *MemoryRepository) TurbineByValve(_ context.Context, drawing string) (Turbine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.valves {
		if v.Drawing == drawing && v.TurbineID != nil {
			if t, ok := m.turbines[*v.TurbineID]; ok {
				return t, nil
			}
		}
	}
	return Turbine{}, ErrNotFound
}

func copyValve(v Valve) Valve {
	v.SectionLengths = slices.Clone(v.SectionLengths)
	if v.TurbineID != nil {
		id := *v.TurbineID
		v.TurbineID = &id
	}
	return v
}

func (m *MemoryRepository) filterValves(keep func(Valve) bool) []Valve {
	var out []Valve
	for _, v := range m.valves {
		if keep(v) {
			out = append(out, copyValve(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Drawing < out[j].Drawing })
	return out
}

func (m *MemoryRepository) ListValves(_ context.Context) ([]Valve, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterValves(func(Valve) bool { return true }), nil
}

func (m *MemoryRepository) ValvesByTurbine(_ context.Context, turbine string) ([]Valve, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterValves(func(v Valve) bool {
		return v.TurbineID != nil && m.turbines[*v.TurbineID].Name == turbine
	}), nil
}

func (m *MemoryRepository) ValveByDrawing(_ context.Context, drawing string) (Valve, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.valves {
		if v.Drawing == drawing {
			return copyValve(v), nil
		}
	}
	return Valve{}, ErrNotFound
}

func (m *MemoryRepository) ValveByID(_ context.Context, id int) (Valve, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.valves[id]
	if !ok {
		return Valve{}, ErrNotFound
	}
	return copyValve(v), nil
}

func (m *MemoryRepository) checkValve(v Valve) error {
	for _, other := range m.valves {
		if other.Drawing == v.Drawing && other.ID != v.ID {
			return fmt.Errorf("valve %q already exists", v.Drawing)
		}
	}
	if v.TurbineID != nil {
		if _, ok := m.turbines[*v.TurbineID]; !ok {
			return fmt.Errorf("turbine %d does not exist", *v.TurbineID)
		}
	}
	return nil
}

func (m *MemoryRepository) CreateValve(_ context.Context, v Valve) (Valve, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = 0
	if err := m.checkValve(v); err != nil {
		return Valve{}, err
	}
	v.ID = m.id()
	m.valves[v.ID] = copyValve(v)
	return v, nil
}

func (m *MemoryRepository) UpdateValve(_ context.Context, v Valve) (Valve, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.valves[v.ID]; !ok {
		return Valve{}, ErrNotFound
	}
	if err := m.checkValve(v); err != nil {
		return Valve{}, err
	}
	m.valves[v.ID] = copyValve(v)
	return v, nil
}

func (m *MemoryRepository) DeleteValve(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.valves[id]; !ok {
		return ErrNotFound
	}
	delete(m.valves, id)
	return nil
}

func (m *MemoryRepository) SaveResult(_ context.Context, r Result) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	r.ID = m.id()
	r.CreatedAt = time.Now().UTC()
	m.results[r.ID] = r
	return r, nil
}

func (m *MemoryRepository) filterResults(keep func(Result) bool) []Result {
	var out []Result
	for _, r := range m.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	// newest first, ids break ties within the clock resolution
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *MemoryRepository) ResultsByValve(_ context.Context, drawing string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterResults(func(r Result) bool { return r.ValveDrawing == drawing }), nil
}

func (m *MemoryRepository) ResultsByUser(_ context.Context, userID int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterResults(func(r Result) bool { return r.UserID == userID }), nil
}

func (m *MemoryRepository) DeleteResult(_ context.Context, id, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(m.results, id)
	return nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
