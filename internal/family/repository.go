package family

import "context"

type Repository interface {
	CreateFamily(ctx context.Context, f *Family) error
	GetFamily(ctx context.Context, id string) (*Family, error)
	UpdateFamily(ctx context.Context, f *Family) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Family, error)
	ListWithDigest(ctx context.Context) ([]*Family, error)
	IsOwner(ctx context.Context, familyID string, userID string) (bool, error)

	AddMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	DeleteMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context, familyID string) ([]*Member, error)
}
