package comment

import (
	"context"
	"testing"

	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockComments struct{ mock.Mock }

func (m *mockComments) Put(ctx context.Context, c *domain.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockComments) Get(ctx context.Context, commentID string) (*domain.Comment, error) {
	args := m.Called(ctx, commentID)
	if c, _ := args.Get(0).(*domain.Comment); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockComments) ListByPost(ctx context.Context, postID string, limit int32, cursor string) ([]domain.Comment, string, error) {
	args := m.Called(ctx, postID, limit, cursor)
	cs, _ := args.Get(0).([]domain.Comment)
	return cs, args.String(1), args.Error(2)
}
func (m *mockComments) UpdateContent(ctx context.Context, commentID, content string) error {
	return m.Called(ctx, commentID, content).Error(0)
}
func (m *mockComments) Delete(ctx context.Context, commentID string) error {
	return m.Called(ctx, commentID).Error(0)
}

type mockPosts struct{ mock.Mock }

func (m *mockPosts) Get(ctx context.Context, postID string) (*domain.Post, error) {
	args := m.Called(ctx, postID)
	if p, _ := args.Get(0).(*domain.Post); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func livePost(posts *mockPosts, postID string) {
	posts.On("Get", mock.Anything, postID).Return(&domain.Post{PostID: postID, Enable: 1}, nil)
}

func TestList_PostMissing(t *testing.T) {
	posts := &mockPosts{}
	posts.On("Get", mock.Anything, "p1").Return(nil, domain.ErrNotFound)
	repo := &mockComments{}

	_, _, err := NewService(repo, posts).List(context.Background(), "p1", 10, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "ListByPost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_ClampsLimit(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("ListByPost", mock.Anything, "p1", int32(DefaultPageSize), "abc").Return([]domain.Comment{{CommentID: "c1"}}, "", nil)

	cs, next, err := NewService(repo, posts).List(context.Background(), "p1", 500, "abc")
	require.NoError(t, err)
	assert.Len(t, cs, 1)
	assert.Empty(t, next)
}

func TestCreate(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.PostID == "p1" && c.UserID == "u1" && c.Content == "nice" && c.CommentID != ""
	})).Return(nil)

	c, err := NewService(repo, posts).Create(context.Background(), "u1", "p1", domain.CommentRequest{Content: " nice "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Content)
	repo.AssertExpectations(t)
}

func TestCreate_Blank(t *testing.T) {
	_, err := NewService(&mockComments{}, &mockPosts{}).Create(context.Background(), "u1", "p1", domain.CommentRequest{Content: "  "})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestGet_PostDeleted(t *testing.T) {
	posts := &mockPosts{}
	posts.On("Get", mock.Anything, "p1").Return(nil, domain.ErrNotFound)
	repo := &mockComments{}
	repo.On("Get", mock.Anything, "c1").Return(&domain.Comment{CommentID: "c1", PostID: "p1"}, nil)

	_, err := NewService(repo, posts).Get(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "comment not found")
}

func TestUpdate_OnlyOwner(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("Get", mock.Anything, "c1").Return(&domain.Comment{CommentID: "c1", PostID: "p1", UserID: "owner"}, nil)

	_, err := NewService(repo, posts).Update(context.Background(), "other", domain.RoleUser, "c1", domain.CommentRequest{Content: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_Owner(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("Get", mock.Anything, "c1").Return(&domain.Comment{CommentID: "c1", PostID: "p1", UserID: "u1", Content: "old"}, nil)
	repo.On("UpdateContent", mock.Anything, "c1", "new").Return(nil)

	c, err := NewService(repo, posts).Update(context.Background(), "u1", domain.RoleUser, "c1", domain.CommentRequest{Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", c.Content)
}

func TestDelete_AdminBypassesOwnership(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("Get", mock.Anything, "c1").Return(&domain.Comment{CommentID: "c1", PostID: "p1", UserID: "owner"}, nil)
	repo.On("Delete", mock.Anything, "c1").Return(nil)

	require.NoError(t, NewService(repo, posts).Delete(context.Background(), "admin", domain.RoleAdmin, "c1"))
	repo.AssertExpectations(t)
}

func TestDelete_Forbidden(t *testing.T) {
	posts := &mockPosts{}
	livePost(posts, "p1")
	repo := &mockComments{}
	repo.On("Get", mock.Anything, "c1").Return(&domain.Comment{CommentID: "c1", PostID: "p1", UserID: "owner"}, nil)

	err := NewService(repo, posts).Delete(context.Background(), "u2", domain.RoleUser, "c1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
