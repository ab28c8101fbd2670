package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"renoplanner/pkg"
)

// ImageStore holds uploaded and generated images, tagged by role and
// version. Version allocation for a logical asset is serialized so two
// concurrent appends can never produce the same version number.
type ImageStore interface {
	// Put stores a new logical asset at version 1 and returns its logical ID.
	Put(ctx context.Context, asset *pkg.ImageAsset) (string, error)
	// AppendVersion adds the next version to an existing logical asset.
	AppendVersion(ctx context.Context, logicalID string, data []byte, mimeType string) (*pkg.ImageAsset, error)
	// GetLatest returns the most recently written asset with the given role,
	// or nil when none exists.
	GetLatest(ctx context.Context, role pkg.ImageRole) (*pkg.ImageAsset, error)
	// GetVersion returns one specific version of a logical asset, or nil
	// when it does not exist.
	GetVersion(ctx context.Context, logicalID string, version int) (*pkg.ImageAsset, error)
	// List returns the latest version of every logical asset with the role.
	List(ctx context.Context, role pkg.ImageRole) ([]*pkg.ImageAsset, error)
}

type chain struct {
	role     pkg.ImageRole
	baseName string
	versions []*pkg.ImageAsset
	seq      uint64 // write sequence of the newest version, for latest lookup
}

// MemoryStore is the in-memory ImageStore used for a single session.
type MemoryStore struct {
	mu     sync.Mutex
	chains map[string]*chain
	seq    uint64
}

// NewMemoryStore creates an empty in-memory image store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chains: make(map[string]*chain),
	}
}

func (s *MemoryStore) Put(ctx context.Context, asset *pkg.ImageAsset) (string, error) {
	if asset == nil || len(asset.Data) == 0 {
		return "", fmt.Errorf("asset payload cannot be empty")
	}
	if asset.Role == "" {
		return "", fmt.Errorf("asset role cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logicalID := asset.LogicalID
	if logicalID == "" {
		logicalID = uuid.NewString()
	}
	if _, exists := s.chains[logicalID]; exists {
		return "", fmt.Errorf("logical asset already exists: %s", logicalID)
	}

	base := baseName(asset.Name)
	if base == "" {
		base = string(asset.Role)
	}

	stored := *asset
	stored.ID = uuid.NewString()
	stored.LogicalID = logicalID
	stored.Version = 1
	stored.ParentVersion = 0
	stored.Name = pkg.VersionedName(base, 1)
	if stored.MimeType == "" {
		stored.MimeType = "image/png"
	}
	stored.CreatedAt = time.Now()

	s.seq++
	s.chains[logicalID] = &chain{
		role:     stored.Role,
		baseName: base,
		versions: []*pkg.ImageAsset{&stored},
		seq:      s.seq,
	}

	return logicalID, nil
}

func (s *MemoryStore) AppendVersion(ctx context.Context, logicalID string, data []byte, mimeType string) (*pkg.ImageAsset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("asset payload cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.chains[logicalID]
	if !exists {
		return nil, fmt.Errorf("logical asset not found: %s", logicalID)
	}

	prev := c.versions[len(c.versions)-1]
	next := &pkg.ImageAsset{
		ID:            uuid.NewString(),
		LogicalID:     logicalID,
		Name:          pkg.VersionedName(c.baseName, prev.Version+1),
		Role:          c.role,
		Version:       prev.Version + 1,
		ParentVersion: prev.Version,
		MimeType:      mimeType,
		Data:          data,
		CreatedAt:     time.Now(),
	}
	if next.MimeType == "" {
		next.MimeType = prev.MimeType
	}

	s.seq++
	c.seq = s.seq
	c.versions = append(c.versions, next)

	out := *next
	return &out, nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, role pkg.ImageRole) (*pkg.ImageAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *chain
	for _, c := range s.chains {
		if c.role != role {
			continue
		}
		if best == nil || c.seq > best.seq {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}

	out := *best.versions[len(best.versions)-1]
	return &out, nil
}

func (s *MemoryStore) GetVersion(ctx context.Context, logicalID string, version int) (*pkg.ImageAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.chains[logicalID]
	if !exists {
		return nil, nil
	}
	if version < 1 || version > len(c.versions) {
		return nil, nil
	}

	out := *c.versions[version-1]
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context, role pkg.ImageRole) ([]*pkg.ImageAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*pkg.ImageAsset
	for _, c := range s.chains {
		if c.role != role {
			continue
		}
		latest := *c.versions[len(c.versions)-1]
		out = append(out, &latest)
	}
	return out, nil
}

// baseName strips a trailing "_vN.ext" or ".ext" from an upload filename so
// subsequent versions get a consistent versioned name.
func baseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "_v"); i > 0 {
		suffix := name[i+2:]
		numeric := suffix != ""
		for _, r := range suffix {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			name = name[:i]
		}
	}
	return strings.ReplaceAll(name, " ", "_")
}
