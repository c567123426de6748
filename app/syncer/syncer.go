package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/serrrfirat/xmarks/app/bird"
	"github.com/serrrfirat/xmarks/app/database"
)

// BookmarkSource is the slice of the bird client the sync path needs.
type BookmarkSource interface {
	FetchBookmarks(ctx context.Context) (*bird.Response, error)
	FetchThread(ctx context.Context, postID string) ([]bird.Tweet, error)
}

var _ BookmarkSource = (*bird.Client)(nil)

type Result struct {
	Synced     int       `json:"synced"`
	LastSyncAt time.Time `json:"lastSyncAt"`
}

// Syncer drives one full synchronization pass: fetch, normalize,
// idempotent upsert, state bookkeeping.
type Syncer struct {
	source    BookmarkSource
	postRepo  database.PostRepository
	stateRepo database.SyncStateRepository
}

func NewSyncer(source BookmarkSource, postRepo database.PostRepository,
	stateRepo database.SyncStateRepository) *Syncer {
	return &Syncer{
		source:    source,
		postRepo:  postRepo,
		stateRepo: stateRepo,
	}
}

// Run executes one sync pass. The transaction is all-or-nothing: a
// failure anywhere leaves the post table untouched and the sync state
// row in 'error' with the message, and the error is returned for the
// caller to surface.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if err := s.stateRepo.Begin(ctx); err != nil {
		return nil, err
	}

	result, err := s.run(ctx)
	if err != nil {
		if failErr := s.stateRepo.Fail(ctx, err.Error()); failErr != nil {
			slog.Error("Failed to record sync error", "error", failErr)
		}
		return nil, err
	}

	return result, nil
}

func (s *Syncer) run(ctx context.Context) (*Result, error) {
	response, err := s.source.FetchBookmarks(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	flattened := flattenQuotes(response.Tweets)

	posts := make([]database.Post, 0, len(flattened))
	for _, tweet := range flattened {
		post, err := normalizeTweet(tweet, now)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := s.postRepo.UpsertPosts(ctx, posts, now); err != nil {
		return nil, err
	}

	lastSyncAt := time.Now().UTC()
	if err := s.stateRepo.Complete(ctx, lastSyncAt, response.NextCursor, len(response.Tweets)); err != nil {
		return nil, err
	}

	slog.Info("Sync completed", "fetched", len(response.Tweets), "stored", len(posts))

	return &Result{Synced: len(response.Tweets), LastSyncAt: lastSyncAt}, nil
}

// flattenQuotes collects every tweet transitively reachable through
// the quote relation into one flat list. Breadth-first over a work
// queue with a seen-set: first occurrence wins and quote cycles
// terminate.
func flattenQuotes(tweets []bird.Tweet) []bird.Tweet {
	queue := make([]bird.Tweet, len(tweets))
	copy(queue, tweets)

	var collected []bird.Tweet
	seen := make(map[string]bool)

	for len(queue) > 0 {
		tweet := queue[0]
		queue = queue[1:]

		if seen[tweet.ID] {
			continue
		}
		seen[tweet.ID] = true
		collected = append(collected, tweet)

		if tweet.QuotedTweet != nil {
			queue = append(queue, *tweet.QuotedTweet)
		}
	}

	return collected
}

// ParseTwitterTime converts the source's native timestamp format
// ("Sun Feb 22 18:55:16 +0000 2026") to a normalized UTC time.
// RFC3339 input is accepted too in case the source ever normalizes
// its own output.
func ParseTwitterTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RubyDate, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid twitter date: %q", value)
}

func normalizeTweet(tweet bird.Tweet, fetchedAt time.Time) (database.Post, error) {
	createdAt, err := ParseTwitterTime(tweet.CreatedAt)
	if err != nil {
		return database.Post{}, err
	}

	media := tweet.Media
	if media == nil {
		media = []bird.Media{}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return database.Post{}, fmt.Errorf("failed to serialize media: %w", err)
	}

	rawJSON, err := json.Marshal(tweet)
	if err != nil {
		return database.Post{}, fmt.Errorf("failed to serialize tweet: %w", err)
	}

	quotedID := ""
	if tweet.QuotedTweet != nil {
		quotedID = tweet.QuotedTweet.ID
	}

	return database.Post{
		ID:             tweet.ID,
		Text:           tweet.Text,
		AuthorID:       tweet.AuthorID,
		AuthorName:     tweet.Author.Name,
		AuthorHandle:   tweet.Author.Username,
		CreatedAt:      createdAt,
		FetchedAt:      fetchedAt,
		ReplyCount:     tweet.ReplyCount,
		RetweetCount:   tweet.RetweetCount,
		LikeCount:      tweet.LikeCount,
		InReplyToID:    tweet.InReplyToStatusID,
		ConversationID: tweet.ConversationID,
		IsThread:       tweet.InReplyToStatusID != "",
		MediaJSON:      string(mediaJSON),
		QuotedPostID:   quotedID,
		URL:            fmt.Sprintf("https://x.com/%s/status/%s", tweet.Author.Username, tweet.ID),
		RawJSON:        string(rawJSON),
	}, nil
}
