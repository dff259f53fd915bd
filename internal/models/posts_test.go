package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Go 1.24 Released!", "go-1-24-released"},
		{"  spaced  out  ", "spaced-out"},
		{"ALLCAPS", "allcaps"},
		{"???", "post"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
	}
}

func TestCreatePostSlugUnique(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")

	first := createTestPost(t, database, user.ID, cat.ID, "Hello World", StatusPublished)
	second := createTestPost(t, database, user.ID, cat.ID, "Hello World", StatusPublished)
	third := createTestPost(t, database, user.ID, cat.ID, "Hello World", StatusPublished)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-2", second.Slug)
	assert.Equal(t, "hello-world-3", third.Slug)
}

func TestUpdatePostKeepsSlug(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")
	post := createTestPost(t, database, user.ID, cat.ID, "Original Title", StatusDraft)
	require.Nil(t, post.PublishedAt)

	loaded, err := GetPostBySlug(database, post.Slug)
	require.NoError(t, err)
	assert.Nil(t, loaded.PublishedAt)

	loaded.Title = "Completely Different Title"
	loaded.Status = StatusPublished
	require.NoError(t, UpdatePost(database, loaded, nil))

	after, err := GetPostBySlug(database, "original-title")
	require.NoError(t, err)
	assert.Equal(t, "Completely Different Title", after.Title)
	assert.Equal(t, "original-title", after.Slug)
	assert.NotNil(t, after.PublishedAt, "publishing should stamp published_at")
}

func TestListPostsFilters(t *testing.T) {
	database := openTestDB(t)
	alice := createTestUser(t, database, "alice", "alice@example.com")
	bob := createTestUser(t, database, "bob", "bob@example.com")
	tech := createTestCategory(t, database, "Technology")
	life := createTestCategory(t, database, "Lifestyle")

	createTestPost(t, database, alice.ID, tech.ID, "Writing Go Servers", StatusPublished)
	createTestPost(t, database, alice.ID, life.ID, "Morning Routines", StatusPublished)
	createTestPost(t, database, bob.ID, tech.ID, "Database Indexing", StatusPublished)
	createTestPost(t, database, bob.ID, tech.ID, "Unfinished Ideas", StatusDraft)

	published, err := ListPosts(database, PostFilter{Status: StatusPublished})
	require.NoError(t, err)
	assert.Len(t, published, 3, "drafts never appear in published listings")

	for _, name := range []string{"Technology", "technology", "TECHNOLOGY"} {
		byCat, err := ListPosts(database, PostFilter{Status: StatusPublished, Category: name})
		require.NoError(t, err)
		assert.Len(t, byCat, 2, "category lookup is case-insensitive for %q", name)
	}

	byAuthor, err := ListPosts(database, PostFilter{Status: StatusPublished, Author: "ALICE"})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	// Search hits title, excerpt, category name, or author username.
	bySearch, err := ListPosts(database, PostFilter{Status: StatusPublished, Search: "go"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 1)
	byAuthorSearch, err := ListPosts(database, PostFilter{Status: StatusPublished, Search: "bob"})
	require.NoError(t, err)
	assert.Len(t, byAuthorSearch, 1)
	byCatSearch, err := ListPosts(database, PostFilter{Status: StatusPublished, Search: "lifest"})
	require.NoError(t, err)
	assert.Len(t, byCatSearch, 1)

	// Empty search is a no-op filter.
	unfiltered, err := ListPosts(database, PostFilter{Status: StatusPublished, Search: ""})
	require.NoError(t, err)
	assert.Len(t, unfiltered, len(published))

	none, err := ListPosts(database, PostFilter{Status: StatusPublished, Search: "zzzzzz"})
	require.NoError(t, err)
	assert.Empty(t, none)
	count, err := CountPosts(database, PostFilter{Status: StatusPublished, Search: "zzzzzz"})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListPostsNewestFirstAndPaged(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")
	for i := 0; i < 12; i++ {
		createTestPost(t, database, user.ID, cat.ID, "Post Number", StatusPublished)
	}

	page1, err := ListPosts(database, PostFilter{Status: StatusPublished, Limit: 9, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page1, 9)
	page2, err := ListPosts(database, PostFilter{Status: StatusPublished, Limit: 9, Offset: 9})
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	// created_at ties resolve by ID, so the last insert leads.
	assert.Equal(t, "post-number-12", page1[0].Slug)
}

func TestIncrementViewsConcurrent(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")
	post := createTestPost(t, database, user.ID, cat.ID, "Popular Post", StatusPublished)

	const readers = 25
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- IncrementViews(database, post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	after, err := GetPostBySlug(database, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, readers, after.ViewsCount, "no increment may be lost")
}

func TestRelatedPosts(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	tech := createTestCategory(t, database, "Technology")
	life := createTestCategory(t, database, "Lifestyle")

	viewed := createTestPost(t, database, user.ID, tech.ID, "Viewed Post", StatusPublished)
	for i := 0; i < 5; i++ {
		createTestPost(t, database, user.ID, tech.ID, "Tech Neighbor", StatusPublished)
	}
	createTestPost(t, database, user.ID, tech.ID, "Tech Draft", StatusDraft)
	createTestPost(t, database, user.ID, life.ID, "Other Category", StatusPublished)

	related, err := ListRelated(database, tech.ID, viewed.ID, 3)
	require.NoError(t, err)
	require.Len(t, related, 3)
	for _, p := range related {
		assert.NotEqual(t, viewed.ID, p.ID)
		assert.Equal(t, tech.ID, p.CategoryID)
		assert.Equal(t, StatusPublished, p.Status)
	}
}

func TestDeletePostCascades(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")
	tag, err := GetOrCreateTag(database, "go")
	require.NoError(t, err)

	p := &Post{
		AuthorID:      user.ID,
		CategoryID:    cat.ID,
		Title:         "Doomed Post",
		Excerpt:       "e",
		Content:       "c",
		Status:        StatusPublished,
		AllowComments: true,
	}
	require.NoError(t, CreatePost(database, p, []int{tag.ID}))
	require.NoError(t, CreateComment(database, p.ID, user.ID, "bye"))

	require.NoError(t, DeletePost(database, p.ID))

	_, err = GetPostBySlug(database, p.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM post_tags WHERE post_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestFeaturedPosts(t *testing.T) {
	database := openTestDB(t)
	user := createTestUser(t, database, "alice", "alice@example.com")
	cat := createTestCategory(t, database, "Technology")
	for i := 0; i < 6; i++ {
		p := &Post{
			AuthorID: user.ID, CategoryID: cat.ID,
			Title: "Featured", Excerpt: "e", Content: "c",
			Status: StatusPublished, IsFeatured: true, AllowComments: true,
		}
		require.NoError(t, CreatePost(database, p, nil))
	}
	createTestPost(t, database, user.ID, cat.ID, "Plain", StatusPublished)

	featured, err := ListPosts(database, PostFilter{Status: StatusPublished, FeaturedOnly: true, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, featured, 4)
	for _, p := range featured {
		assert.True(t, p.IsFeatured)
	}
}
