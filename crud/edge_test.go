package crud_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"blogGraph/domain"
	"blogGraph/errs"
)

func usernames(users []domain.User) []string {
	return lo.Map(users, func(u domain.User, _ int) string { return u.Username })
}

func TestFollow(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	a, aActor := signup(t, s, "a")
	b, bActor := signup(t, s, "b")
	_, cActor := signup(t, s, "c")

	follow, err := s.Follow.Create(ctx, aActor, a.ID, b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, follow.ID)

	followeds, err := s.Follow.Followeds(ctx, aActor, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, usernames(followeds))

	followers, err := s.Follow.Followers(ctx, bActor, b.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, usernames(followers))

	t.Run("twice", func(t *testing.T) {
		_, err := s.Follow.Create(ctx, aActor, a.ID, b.ID)
		require.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	})

	t.Run("yourself", func(t *testing.T) {
		_, err := s.Follow.Create(ctx, aActor, a.ID, a.ID)
		require.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("nobody", func(t *testing.T) {
		_, err := s.Follow.Create(ctx, aActor, a.ID, uuid.NewString())
		require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
		_, err = s.Follow.Create(ctx, admin, uuid.NewString(), b.ID)
		require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
		require.Equal(t, "The follower or the followed user does not exist.", errs.ErrorMessage(err))
	})

	t.Run("on behalf of somebody else", func(t *testing.T) {
		_, err := s.Follow.Create(ctx, cActor, a.ID, b.ID)
		require.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
		_, err = s.Follow.Followeds(ctx, cActor, a.ID)
		require.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

		followers, err := s.Follow.Followers(ctx, bActor, b.ID)
		require.NoError(t, err)
		require.Len(t, followers, 1)
	})

	t.Run("unfollow", func(t *testing.T) {
		require.NoError(t, s.Follow.Delete(ctx, aActor, a.ID, b.ID))

		followeds, err := s.Follow.Followeds(ctx, aActor, a.ID)
		require.NoError(t, err)
		require.Empty(t, followeds)

		err = s.Follow.Delete(ctx, aActor, a.ID, b.ID)
		require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	})
}

func TestMutualFollows(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice, aliceActor := signup(t, s, "alice")
	bob, bobActor := signup(t, s, "bob")
	carol, carolActor := signup(t, s, "carol")

	_, err := s.Follow.Create(ctx, aliceActor, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = s.Follow.Create(ctx, bobActor, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = s.Follow.Create(ctx, carolActor, carol.ID, alice.ID)
	require.NoError(t, err)

	followers, err := s.Follow.Followers(ctx, aliceActor, alice.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"bob", "carol"}, usernames(followers))

	followeds, err := s.Follow.Followeds(ctx, aliceActor, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, usernames(followeds))

	followeds, err = s.Follow.Followeds(ctx, admin, carol.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, usernames(followeds))
}

func TestLikePost(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	kiki, kikiActor := signup(t, s, "kiki")
	bob, bobActor := signup(t, s, "bob")

	post := &domain.Post{Title: "hello"}
	require.NoError(t, s.Post.Create(ctx, kikiActor, kiki.ID, post))

	like, err := s.Like.LikePost(ctx, bobActor, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, post.ID, like.PostID)

	_, err = s.Like.LikePost(ctx, bobActor, bob.ID, post.ID)
	require.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	count, err := s.Post.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = s.Like.LikePost(ctx, kikiActor, bob.ID, post.ID)
	require.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
	_, err = s.Like.LikePost(ctx, bobActor, bob.ID, uuid.NewString())
	require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	require.Equal(t, "The user or the post does not exist.", errs.ErrorMessage(err))
	_, err = s.Like.LikePost(ctx, admin, uuid.NewString(), post.ID)
	require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	require.Equal(t, "The user or the post does not exist.", errs.ErrorMessage(err))

	require.NoError(t, s.Like.UnlikePost(ctx, bobActor, bob.ID, post.ID))
	count, err = s.Post.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	err = s.Like.UnlikePost(ctx, bobActor, bob.ID, post.ID)
	require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestLikeComment(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	kiki, kikiActor := signup(t, s, "kiki")
	bob, bobActor := signup(t, s, "bob")

	post := &domain.Post{Title: "hello"}
	require.NoError(t, s.Post.Create(ctx, kikiActor, kiki.ID, post))
	comment := &domain.Comment{Content: "nice"}
	require.NoError(t, s.Comment.Create(ctx, bobActor, bob.ID, post.ID, comment))

	_, err := s.Like.LikeComment(ctx, kikiActor, kiki.ID, comment.ID)
	require.NoError(t, err)
	_, err = s.Like.LikeComment(ctx, bobActor, bob.ID, comment.ID)
	require.NoError(t, err)
	_, err = s.Like.LikeComment(ctx, bobActor, bob.ID, comment.ID)
	require.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	count, err := s.Comment.CountLikes(ctx, comment.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, s.Like.UnlikeComment(ctx, admin, kiki.ID, comment.ID))
	err = s.Like.UnlikeComment(ctx, kikiActor, kiki.ID, comment.ID)
	require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	count, err = s.Comment.CountLikes(ctx, comment.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUnfollowKeepsTheOtherDirection(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	a, aActor := signup(t, s, "a")
	b, bActor := signup(t, s, "b")

	_, err := s.Follow.Create(ctx, aActor, a.ID, b.ID)
	require.NoError(t, err)
	_, err = s.Follow.Create(ctx, bActor, b.ID, a.ID)
	require.NoError(t, err)

	followers, err := s.Follow.Followers(ctx, aActor, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, usernames(followers))
	followeds, err := s.Follow.Followeds(ctx, aActor, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, usernames(followeds))

	require.NoError(t, s.Follow.Delete(ctx, aActor, a.ID, b.ID))

	followeds, err = s.Follow.Followeds(ctx, aActor, a.ID)
	require.NoError(t, err)
	require.Empty(t, followeds)
	followers, err = s.Follow.Followers(ctx, bActor, b.ID)
	require.NoError(t, err)
	require.Empty(t, followers)

	followers, err = s.Follow.Followers(ctx, aActor, a.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, usernames(followers))
}

// The unique indexes decide races between identical edges: exactly one caller
// wins, every other one gets a conflict and nothing is stored twice.
func TestConcurrentEdges(t *testing.T) {
	const n = 16
	ctx := context.Background()
	s := newServicesPool(t, 4)
	kiki, kikiActor := signup(t, s, "kiki")
	bob, _ := signup(t, s, "bob")

	post := &domain.Post{Title: "hello"}
	require.NoError(t, s.Post.Create(ctx, kikiActor, kiki.ID, post))
	comment := &domain.Comment{Content: "nice"}
	require.NoError(t, s.Comment.Create(ctx, kikiActor, kiki.ID, post.ID, comment))

	race := func(t *testing.T, fn func() error) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		codes := make(map[string]int)
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				code := errs.ErrorCode(fn())
				mu.Lock()
				codes[code]++
				mu.Unlock()
			}()
		}
		close(start)
		wg.Wait()
		require.Equal(t, map[string]int{"": 1, errs.ECONFLICT: n - 1}, codes)
	}

	t.Run("follow", func(t *testing.T) {
		race(t, func() error {
			_, err := s.Follow.Create(ctx, kikiActor, kiki.ID, bob.ID)
			return err
		})
		followeds, err := s.Follow.Followeds(ctx, kikiActor, kiki.ID)
		require.NoError(t, err)
		require.Len(t, followeds, 1)
	})

	t.Run("like post", func(t *testing.T) {
		race(t, func() error {
			_, err := s.Like.LikePost(ctx, kikiActor, kiki.ID, post.ID)
			return err
		})
		count, err := s.Post.CountLikes(ctx, post.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("like comment", func(t *testing.T) {
		race(t, func() error {
			_, err := s.Like.LikeComment(ctx, kikiActor, kiki.ID, comment.ID)
			return err
		})
		count, err := s.Comment.CountLikes(ctx, comment.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}
