package agents

import (
	"context"
	"fmt"
	"sync"

	"renoplanner/internal/inference"
	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// Editor applies user-requested modifications to the latest rendering,
// producing the next version of the same logical asset. Edits against one
// logical asset are serialized so each edit builds on the one before it.
type Editor struct {
	image  inference.ImageGenerator
	images store.ImageStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEditor(image inference.ImageGenerator, images store.ImageStore) *Editor {
	return &Editor{
		image:  image,
		images: images,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Edit generates a new version of the most recent rendering, modified per
// the user's request. The latest version is re-read under the asset lock so
// concurrent edits chain instead of forking.
func (e *Editor) Edit(ctx context.Context, request string) (*pkg.ImageAsset, error) {
	latest, err := e.images.GetLatest(ctx, pkg.RoleRendered)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, &pkg.MissingInputError{Input: string(pkg.RoleRendered)}
	}

	lock := e.assetLock(latest.LogicalID)
	lock.Lock()
	defer lock.Unlock()

	// Another edit may have landed while we waited for the lock.
	base, err := e.images.GetLatest(ctx, pkg.RoleRendered)
	if err != nil {
		return nil, err
	}
	if base == nil || base.LogicalID != latest.LogicalID {
		return nil, &pkg.MissingInputError{Input: string(pkg.RoleRendered)}
	}

	refs := []*pkg.ImageAsset{base}
	if insp, err := e.images.GetLatest(ctx, pkg.RoleInspiration); err == nil && insp != nil {
		refs = append(refs, insp)
	}

	prompt := fmt.Sprintf(
		"Edit the provided rendering of a renovated room.\n\nRequested change: %s\n\nApply only the requested change. Keep every other element of the image identical: layout, perspective, lighting, and all design elements not named in the request.",
		request)

	data, mime, err := e.image.GenerateImage(ctx, prompt, refs)
	if err != nil {
		return nil, &pkg.RenderError{Err: err}
	}

	// A cancelled edit leaves the version chain untouched.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next, err := e.images.AppendVersion(ctx, base.LogicalID, data, mime)
	if err != nil {
		return nil, &pkg.RenderError{Err: err}
	}
	return next, nil
}

func (e *Editor) assetLock(logicalID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, exists := e.locks[logicalID]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[logicalID] = lock
	}
	return lock
}
