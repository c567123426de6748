package syncer

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/serrrfirat/xmarks/app/bird"
	"github.com/serrrfirat/xmarks/app/database"
)

// Threads assembles reply threads around a post: locally stored posts
// first, the bird CLI only when the local view looks incomplete.
type Threads struct {
	source   BookmarkSource
	postRepo database.PostRepository
}

func NewThreads(source BookmarkSource, postRepo database.PostRepository) *Threads {
	return &Threads{source: source, postRepo: postRepo}
}

// Get returns the thread for a post, oldest first. A remote fetch
// failure is not a hard error here: degraded, local-only results beat
// no thread at all.
func (t *Threads) Get(ctx context.Context, postID string) ([]database.Post, error) {
	post, err := t.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var local []database.Post
	if post != nil && post.ConversationID != "" {
		local, err = t.postRepo.GetThreadPosts(ctx, post.ConversationID)
		if err != nil {
			return nil, err
		}
	} else if post != nil {
		local = []database.Post{*post}
	}

	// Two or more local posts count as a usable thread.
	if len(local) >= 2 {
		return local, nil
	}

	remote, err := t.source.FetchThread(ctx, postID)
	if err != nil {
		slog.Warn("Thread fetch failed, returning local posts", "post_id", postID, "error", err)
		return local, nil
	}

	return t.merge(local, remote), nil
}

func (t *Threads) merge(local []database.Post, remote []bird.Tweet) []database.Post {
	now := time.Now().UTC()
	byID := make(map[string]database.Post, len(local)+len(remote))
	for _, post := range local {
		byID[post.ID] = post
	}

	for _, tweet := range remote {
		if _, ok := byID[tweet.ID]; ok {
			continue
		}
		post, err := normalizeTweet(tweet, now)
		if err != nil {
			slog.Warn("Skipping thread tweet with bad timestamp", "id", tweet.ID, "error", err)
			continue
		}
		byID[tweet.ID] = post
	}

	posts := make([]database.Post, 0, len(byID))
	for _, post := range byID {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})

	return posts
}
