package family

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu          sync.RWMutex
	families    map[string]*Family
	familyOrder []string
	members     map[string]*Member
	memberOrder []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		families: make(map[string]*Family),
		members:  make(map[string]*Member),
	}
}

func (r *MemoryRepository) CreateFamily(ctx context.Context, f *Family) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.CreatedAt = time.Now()

	cp := *f
	r.families[f.ID] = &cp
	r.familyOrder = append(r.familyOrder, f.ID)
	return nil
}

func (r *MemoryRepository) GetFamily(ctx context.Context, id string) (*Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.families[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *MemoryRepository) UpdateFamily(ctx context.Context, f *Family) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.families[f.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = f.Name
	cur.DigestEmail = f.DigestEmail
	return nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Family, error) {
	return r.listFamilies(func(f *Family) bool { return f.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) ListWithDigest(ctx context.Context) ([]*Family, error) {
	return r.listFamilies(func(f *Family) bool { return f.DigestEmail != "" }), nil
}

func (r *MemoryRepository) listFamilies(keep func(*Family) bool) []*Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Family, 0)
	for _, id := range r.familyOrder {
		if f := r.families[id]; keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out
}

func (r *MemoryRepository) IsOwner(ctx context.Context, familyID string, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.families[familyID]
	return ok && f.OwnerID == userID, nil
}

func (r *MemoryRepository) AddMember(ctx context.Context, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.families[m.FamilyID]; !ok {
		return ErrNotFound
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now()

	r.members[m.ID] = copyMember(m)
	r.memberOrder = append(r.memberOrder, m.ID)
	return nil
}

func (r *MemoryRepository) GetMember(ctx context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMember(m), nil
}

func (r *MemoryRepository) UpdateMember(ctx context.Context, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.members[m.ID]
	if !ok {
		return ErrNotFound
	}
	cp := copyMember(m)
	cp.FamilyID = cur.FamilyID
	cp.CreatedAt = cur.CreatedAt
	r.members[m.ID] = cp
	return nil
}

func (r *MemoryRepository) DeleteMember(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return ErrNotFound
	}
	delete(r.members, id)
	for i, mid := range r.memberOrder {
		if mid == id {
			r.memberOrder = append(r.memberOrder[:i], r.memberOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) ListMembers(ctx context.Context, familyID string) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Member, 0)
	for _, id := range r.memberOrder {
		if m := r.members[id]; m.FamilyID == familyID {
			out = append(out, copyMember(m))
		}
	}
	return out, nil
}

func copyMember(m *Member) *Member {
	cp := *m
	cp.Conditions = append([]Condition(nil), m.Conditions...)
	return &cp
}
