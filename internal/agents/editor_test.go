package agents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renoplanner/internal/store"
	"renoplanner/pkg"
)

// fakeImageGenerator returns canned bytes and records the references it saw.
type fakeImageGenerator struct {
	mu    sync.Mutex
	data  []byte
	err   error
	delay time.Duration

	calls []fakeImageCall
}

type fakeImageCall struct {
	prompt string
	refs   []*pkg.ImageAsset
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt string, images []*pkg.ImageAsset) ([]byte, string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, fakeImageCall{prompt: prompt, refs: images})
	f.mu.Unlock()
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, "image/png", nil
}

func seedRendering(t *testing.T, images *store.MemoryStore) string {
	t.Helper()
	id, err := images.Put(context.Background(), &pkg.ImageAsset{
		Name: "kitchen_renovation.png",
		Role: pkg.RoleRendered,
		Data: []byte("v1"),
	})
	require.NoError(t, err)
	return id
}

func TestEditWithoutRendering(t *testing.T) {
	images := store.NewMemoryStore()
	e := NewEditor(&fakeImageGenerator{data: []byte("out")}, images)

	_, err := e.Edit(context.Background(), "make the cabinets blue")
	var missing *pkg.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, string(pkg.RoleRendered), missing.Input)
}

func TestEditAppendsNextVersion(t *testing.T) {
	images := store.NewMemoryStore()
	id := seedRendering(t, images)
	gen := &fakeImageGenerator{data: []byte("v2-bytes")}
	e := NewEditor(gen, images)

	next, err := e.Edit(context.Background(), "make the cabinets blue")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, 1, next.ParentVersion)
	assert.Equal(t, id, next.LogicalID)
	assert.Equal(t, "kitchen_renovation_v2.png", next.Name)

	// Version 1 is still retrievable after the edit.
	v1, err := images.GetVersion(context.Background(), id, 1)
	require.NoError(t, err)
	require.NotNil(t, v1)
	assert.Equal(t, []byte("v1"), v1.Data)

	// The edit used the latest rendering as its base reference.
	require.NotEmpty(t, gen.calls)
	require.NotEmpty(t, gen.calls[0].refs)
	assert.Equal(t, pkg.RoleRendered, gen.calls[0].refs[0].Role)
	assert.Contains(t, gen.calls[0].prompt, "make the cabinets blue")
}

func TestEditGenerationFailure(t *testing.T) {
	images := store.NewMemoryStore()
	id := seedRendering(t, images)
	e := NewEditor(&fakeImageGenerator{err: errors.New("model refused")}, images)

	_, err := e.Edit(context.Background(), "add plants")
	var render *pkg.RenderError
	require.ErrorAs(t, err, &render)

	// A failed edit leaves the version chain untouched.
	v2, err := images.GetVersion(context.Background(), id, 2)
	require.NoError(t, err)
	assert.Nil(t, v2)
}

func TestEditCancelledContextCommitsNothing(t *testing.T) {
	images := store.NewMemoryStore()
	id := seedRendering(t, images)
	e := NewEditor(&fakeImageGenerator{data: []byte("out"), delay: 20 * time.Millisecond}, images)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Edit(ctx, "add plants")
	require.Error(t, err)

	v2, err := images.GetVersion(context.Background(), id, 2)
	require.NoError(t, err)
	assert.Nil(t, v2)
}

func TestConcurrentEditsChain(t *testing.T) {
	images := store.NewMemoryStore()
	id := seedRendering(t, images)
	gen := &fakeImageGenerator{data: []byte("edited"), delay: 10 * time.Millisecond}
	e := NewEditor(gen, images)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Edit(context.Background(), "tweak the lighting")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ctx := context.Background()
	v2, err := images.GetVersion(ctx, id, 2)
	require.NoError(t, err)
	require.NotNil(t, v2)
	assert.Equal(t, 1, v2.ParentVersion)

	v3, err := images.GetVersion(ctx, id, 3)
	require.NoError(t, err)
	require.NotNil(t, v3)
	assert.Equal(t, 2, v3.ParentVersion)

	v4, err := images.GetVersion(ctx, id, 4)
	require.NoError(t, err)
	assert.Nil(t, v4)

	// The second edit built on the first edit's output, not on version 1.
	gen.mu.Lock()
	defer gen.mu.Unlock()
	versionsSeen := map[int]bool{}
	for _, call := range gen.calls {
		require.NotEmpty(t, call.refs)
		versionsSeen[call.refs[0].Version] = true
	}
	assert.True(t, versionsSeen[1])
	assert.True(t, versionsSeen[2])
}
