// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/repository"

	"github.com/google/uuid"
)

// MockRepository provides an in-memory mock implementation of the Repository interface.
// It enforces name/number uniqueness the way the real store does, so service
// tests see DuplicateKeyError without a database.
type MockRepository struct {
	mu sync.RWMutex

	// In-memory storage, order is insertion order
	order    []string
	pokemons map[string]domain.Pokemon // id -> Pokemon
	byName   map[string]string         // name -> id
	byNo     map[int]string            // no -> id

	// For testing error scenarios
	shouldFailOn map[string]error
	calls        map[string]int
}

var _ repository.PokemonRepository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		pokemons:     make(map[string]domain.Pokemon),
		byName:       make(map[string]string),
		byNo:         make(map[int]string),
		shouldFailOn: make(map[string]error),
		calls:        make(map[string]int),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Calls reports how many times a method was invoked.
func (m *MockRepository) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// Len reports the number of stored records.
func (m *MockRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// checkError must be called with the lock held.
func (m *MockRepository) checkError(method string) error {
	m.calls[method]++
	if err, exists := m.shouldFailOn[method]; exists {
		return err
	}
	return nil
}

func (m *MockRepository) Create(ctx context.Context, pokemon domain.Pokemon) (*domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("Create"); err != nil {
		return nil, err
	}
	created, err := m.insert(pokemon)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (m *MockRepository) CreateMany(ctx context.Context, pokemons []domain.Pokemon) ([]domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("CreateMany"); err != nil {
		return nil, err
	}
	created := make([]domain.Pokemon, 0, len(pokemons))
	for _, p := range pokemons {
		c, err := m.insert(p)
		if err != nil {
			return created, err
		}
		created = append(created, c)
	}
	return created, nil
}

func (m *MockRepository) insert(p domain.Pokemon) (domain.Pokemon, error) {
	if _, taken := m.byName[p.Name]; taken {
		return domain.Pokemon{}, &repository.DuplicateKeyError{Field: "name", Value: p.Name}
	}
	if _, taken := m.byNo[p.No]; taken {
		return domain.Pokemon{}, &repository.DuplicateKeyError{Field: "no", Value: p.No}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	m.pokemons[p.ID] = p
	m.byName[p.Name] = p.ID
	m.byNo[p.No] = p.ID
	m.order = append(m.order, p.ID)
	return p, nil
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("List"); err != nil {
		return nil, err
	}
	start, end := repository.Pagination{Limit: limit, Offset: offset}.Window(len(m.order))
	result := make([]domain.Pokemon, 0, end-start)
	for _, id := range m.order[start:end] {
		result = append(result, m.pokemons[id])
	}
	return result, nil
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("FindByID"); err != nil {
		return nil, err
	}
	return m.get(id), nil
}

func (m *MockRepository) FindByNo(ctx context.Context, no int) (*domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("FindByNo"); err != nil {
		return nil, err
	}
	id, ok := m.byNo[no]
	if !ok {
		return nil, nil
	}
	return m.get(id), nil
}

func (m *MockRepository) FindByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("FindByName"); err != nil {
		return nil, err
	}
	id, ok := m.byName[name]
	if !ok {
		return nil, nil
	}
	return m.get(id), nil
}

func (m *MockRepository) get(id string) *domain.Pokemon {
	p, ok := m.pokemons[id]
	if !ok {
		return nil
	}
	return &p
}

func (m *MockRepository) Update(ctx context.Context, current, updated domain.Pokemon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("Update"); err != nil {
		return err
	}
	stored, ok := m.pokemons[current.ID]
	if !ok {
		return repository.NewNotFound("pokemon", current.ID)
	}
	if updated.Name != stored.Name {
		if _, taken := m.byName[updated.Name]; taken {
			return &repository.DuplicateKeyError{Field: "name", Value: updated.Name}
		}
	}
	if updated.No != stored.No {
		if _, taken := m.byNo[updated.No]; taken {
			return &repository.DuplicateKeyError{Field: "no", Value: updated.No}
		}
	}

	delete(m.byName, stored.Name)
	delete(m.byNo, stored.No)
	updated.ID = stored.ID
	updated.CreatedAt = stored.CreatedAt
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = time.Now().UTC()
	}
	m.pokemons[stored.ID] = updated
	m.byName[updated.Name] = stored.ID
	m.byNo[updated.No] = stored.ID
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("Delete"); err != nil {
		return 0, err
	}
	p, ok := m.pokemons[id]
	if !ok {
		return 0, nil
	}
	m.remove(p)
	return 1, nil
}

func (m *MockRepository) DeleteAll(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkError("DeleteAll"); err != nil {
		return 0, err
	}
	n := len(m.order)
	m.order = nil
	m.pokemons = make(map[string]domain.Pokemon)
	m.byName = make(map[string]string)
	m.byNo = make(map[int]string)
	return n, nil
}

func (m *MockRepository) remove(p domain.Pokemon) {
	delete(m.pokemons, p.ID)
	delete(m.byName, p.Name)
	delete(m.byNo, p.No)
	for i, id := range m.order {
		if id == p.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Classify treats only DuplicateKeyError as a conflict.
func (m *MockRepository) Classify(err error) repository.ErrorKind {
	if _, ok := repository.AsDuplicateKey(err); ok {
		return repository.KindConflict
	}
	return repository.KindOther
}
