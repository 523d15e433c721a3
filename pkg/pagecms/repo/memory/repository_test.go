package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pagecms/pagecms/pkg/pagecms"
	"github.com/pagecms/pagecms/pkg/pagecms/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPage(name, slug string) *pagecms.Page {
	now := time.Now().UTC()
	return &pagecms.Page{
		ID:        uuid.New(),
		Type:      pagecms.PageType,
		Name:      name,
		Slug:      slug,
		Data:      []pagecms.Block{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreatePageEnforcesSlugUniqueness(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePage(ctx, newPage("Title", "title")))

	err := repo.CreatePage(ctx, newPage("TITLE", "title"))
	assert.ErrorIs(t, err, pagecms.ErrSlugExists)

	pages, err := repo.ListPages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestListPagesPreservesInsertionOrder(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	slugs := []string{"first", "second", "third"}
	for _, slug := range slugs {
		require.NoError(t, repo.CreatePage(ctx, newPage(slug, slug)))
	}

	pages, err := repo.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, slug := range slugs {
		assert.Equal(t, slug, pages[i].Slug)
	}
}

func TestUpdatePage(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	t.Run("unknown page", func(t *testing.T) {
		err := repo.UpdatePage(ctx, newPage("Ghost", "ghost"))
		assert.ErrorIs(t, err, pagecms.ErrPageNotFound)
	})

	t.Run("slug conflict with a different page", func(t *testing.T) {
		taken := newPage("Taken", "taken")
		require.NoError(t, repo.CreatePage(ctx, taken))
		victim := newPage("Victim", "victim")
		require.NoError(t, repo.CreatePage(ctx, victim))

		victim.Slug = "taken"
		assert.ErrorIs(t, repo.UpdatePage(ctx, victim), pagecms.ErrSlugExists)
	})

	t.Run("own slug is not a conflict", func(t *testing.T) {
		page := newPage("Keeper", "keeper")
		require.NoError(t, repo.CreatePage(ctx, page))

		page.Name = "Keeper Renamed"
		assert.NoError(t, repo.UpdatePage(ctx, page))
	})

	t.Run("slug change frees the old slug", func(t *testing.T) {
		page := newPage("Mover", "mover")
		require.NoError(t, repo.CreatePage(ctx, page))

		page.Slug = "moved"
		require.NoError(t, repo.UpdatePage(ctx, page))

		assert.NoError(t, repo.CreatePage(ctx, newPage("Mover", "mover")))
	})
}

func TestDeletePage(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := newPage("Doomed", "doomed")
	require.NoError(t, repo.CreatePage(ctx, page))

	deleted, err := repo.DeletePage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", deleted.Slug)

	_, err = repo.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, pagecms.ErrPageNotFound)

	_, err = repo.DeletePage(ctx, page.ID)
	assert.ErrorIs(t, err, pagecms.ErrPageNotFound)

	// The slug is free again after deletion
	assert.NoError(t, repo.CreatePage(ctx, newPage("Doomed", "doomed")))
}

func TestGetPageReturnsCopies(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := newPage("Original", "original")
	page.Data = []pagecms.Block{
		{ID: uuid.New(), Type: pagecms.BlockTypeText, Data: pagecms.TextData{{Text: "Hello"}}},
	}
	require.NoError(t, repo.CreatePage(ctx, page))

	got, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	got.Name = "Mutated"
	got.Data[0].Data.(pagecms.TextData)[0].Text = "mutated"

	fresh, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", fresh.Name)
	assert.Equal(t, "Hello", fresh.Data[0].Data.(pagecms.TextData)[0].Text)
}

func TestListCollections(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	collections, err := repo.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)

	require.NoError(t, repo.CreatePage(ctx, newPage("One", "one")))
	require.NoError(t, repo.CreatePage(ctx, newPage("Two", "two")))

	collections, err = repo.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "pages", collections[0].Name)
	assert.Equal(t, int64(2), collections[0].Count)
}
