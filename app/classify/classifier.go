package classify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/serrrfirat/xmarks/app/claude"
	"github.com/serrrfirat/xmarks/app/database"
)

const (
	MinCategories = 10
	MaxCategories = 15

	// SampleWindowSize posts are drawn from each of the oldest, middle
	// and newest regions of the archive for discovery.
	SampleWindowSize = 50

	DefaultBatchSize = 300

	// FallbackCategoryName catches posts the model omits or maps to an
	// unknown category.
	FallbackCategoryName = "Uncategorized"
)

// Reasoner is the slice of the claude client the classifier needs.
type Reasoner interface {
	RunJSON(ctx context.Context, prompt string, v any) error
}

var _ Reasoner = (*claude.Client)(nil)

var nameFolder = cases.Fold()

// normalizeName case-folds and trims a category name so matching is
// insensitive to case and surrounding whitespace.
func normalizeName(name string) string {
	return nameFolder.String(strings.TrimSpace(name))
}

// Classifier drives the two LLM-backed passes: taxonomy discovery and
// batched assignment. Both share the singleton classification state
// row and are mutually exclusive through its guard.
type Classifier struct {
	reasoner     Reasoner
	postRepo     database.PostRepository
	categoryRepo database.CategoryRepository
	stateRepo    database.ClassificationStateRepository
	batchSize    int
}

func NewClassifier(reasoner Reasoner, postRepo database.PostRepository,
	categoryRepo database.CategoryRepository, stateRepo database.ClassificationStateRepository,
	batchSize int) *Classifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Classifier{
		reasoner:     reasoner,
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		stateRepo:    stateRepo,
		batchSize:    batchSize,
	}
}

type discoveredCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type discoveryResponse struct {
	Categories []discoveredCategory `json:"categories"`
}

// DiscoverTopics samples the archive, asks the model for a taxonomy,
// and atomically replaces the existing one. Assignments are cleared
// before the old categories are deleted, so a mid-failure leaves posts
// unassigned rather than pointing at stale ids.
func (c *Classifier) DiscoverTopics(ctx context.Context) error {
	if err := c.stateRepo.Begin(ctx, database.ClassificationStatusDiscovering, time.Now().UTC()); err != nil {
		return err
	}

	if err := c.discover(ctx); err != nil {
		c.failState(ctx, err)
		return err
	}

	return nil
}

func (c *Classifier) discover(ctx context.Context) error {
	err := c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		Phase:           ptr("sampling"),
		ProgressCurrent: ptr(0),
		ProgressTotal:   ptr(3),
	})
	if err != nil {
		return err
	}

	samples, err := c.samplePosts(ctx)
	if err != nil {
		return err
	}

	var response discoveryResponse
	if err := c.reasoner.RunJSON(ctx, buildDiscoveryPrompt(samples), &response); err != nil {
		return err
	}

	categories := cleanCategories(response.Categories)
	if len(categories) < MinCategories {
		return &InsufficientTaxonomyError{Got: len(categories)}
	}
	if len(categories) > MaxCategories {
		categories = categories[:MaxCategories]
	}

	if err := c.categoryRepo.DeleteAll(ctx); err != nil {
		return err
	}
	for _, category := range categories {
		if _, err := c.categoryRepo.Create(ctx, category.Name, category.Description, ""); err != nil {
			return err
		}
	}

	slog.Info("Topic discovery completed", "categories", len(categories), "samples", len(samples))

	return c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		Status:          ptr(database.ClassificationStatusIdle),
		Phase:           ptr(""),
		ProgressCurrent: ptr(0),
		ProgressTotal:   ptr(0),
		CompletedAt:     ptr(time.Now().UTC()),
	})
}

// samplePosts draws a representative sample: the oldest, middle and
// newest windows by creation time, deduplicated by id. The middle
// offset clamps to zero for small archives, so overlapping windows
// simply collapse.
func (c *Classifier) samplePosts(ctx context.Context) ([]database.SamplePost, error) {
	oldest, err := c.postRepo.GetSampleWindow(ctx, SampleWindowSize, 0, false)
	if err != nil {
		return nil, err
	}

	total, err := c.postRepo.GetPostCount(ctx)
	if err != nil {
		return nil, err
	}

	middleOffset := (total - SampleWindowSize) / 2
	if middleOffset < 0 {
		middleOffset = 0
	}

	middle, err := c.postRepo.GetSampleWindow(ctx, SampleWindowSize, middleOffset, false)
	if err != nil {
		return nil, err
	}

	newest, err := c.postRepo.GetSampleWindow(ctx, SampleWindowSize, 0, true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var merged []database.SamplePost
	for _, window := range [][]database.SamplePost{oldest, middle, newest} {
		for _, post := range window {
			if seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			merged = append(merged, post)
		}
	}

	return merged, nil
}

// cleanCategories trims, drops entries missing a name or description,
// and deduplicates by normalized name, first occurrence winning.
func cleanCategories(raw []discoveredCategory) []discoveredCategory {
	seen := make(map[string]bool)
	var cleaned []discoveredCategory

	for _, category := range raw {
		name := strings.TrimSpace(category.Name)
		description := strings.TrimSpace(category.Description)
		if name == "" || description == "" {
			continue
		}

		key := normalizeName(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, discoveredCategory{Name: name, Description: description})
	}

	return cleaned
}

type assignment struct {
	PostID       string `json:"postId"`
	CategoryName string `json:"categoryName"`
}

type assignmentResponse struct {
	Assignments []assignment `json:"assignments"`
}

// ClassifyBookmarks assigns every unclassified post to a category in
// fixed-size sequential batches. Every post in a processed batch ends
// up with a category: unknown names and omitted ids fall back to
// "Uncategorized". Committed batches survive a later failure.
func (c *Classifier) ClassifyBookmarks(ctx context.Context) error {
	if err := c.stateRepo.Begin(ctx, database.ClassificationStatusClassifying, time.Now().UTC()); err != nil {
		return err
	}

	if err := c.classify(ctx); err != nil {
		c.failState(ctx, err)
		return err
	}

	return nil
}

func (c *Classifier) classify(ctx context.Context) error {
	err := c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		Phase:           ptr("loading"),
		ProgressCurrent: ptr(0),
		ProgressTotal:   ptr(0),
	})
	if err != nil {
		return err
	}

	categories, err := c.categoryRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	nameToID := make(map[string]int64, len(categories))
	for _, category := range categories {
		nameToID[normalizeName(category.Name)] = category.ID
	}

	unclassified, err := c.postRepo.GetUnclassified(ctx)
	if err != nil {
		return err
	}

	batches := chunk(unclassified, c.batchSize)
	if err := c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		ProgressTotal: ptr(len(batches)),
	}); err != nil {
		return err
	}

	for i, batch := range batches {
		if err := c.classifyBatch(ctx, categories, nameToID, batch); err != nil {
			return err
		}

		if err := c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
			ProgressCurrent: ptr(i + 1),
		}); err != nil {
			return err
		}
	}

	slog.Info("Classification completed", "posts", len(unclassified), "batches", len(batches))

	return c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		Status:      ptr(database.ClassificationStatusIdle),
		Phase:       ptr(""),
		CompletedAt: ptr(time.Now().UTC()),
	})
}

func (c *Classifier) classifyBatch(ctx context.Context, categories []database.Category,
	nameToID map[string]int64, batch []database.SamplePost) error {
	batchIDs := make(map[string]bool, len(batch))
	for _, post := range batch {
		batchIDs[post.ID] = true
	}

	prompt := buildClassificationPrompt(categories, buildPostsXML(batch))

	var response assignmentResponse
	if err := c.reasoner.RunJSON(ctx, prompt, &response); err != nil {
		return err
	}

	assigned := make(map[string]bool, len(batch))

	for _, a := range response.Assignments {
		// The model sometimes invents ids; anything outside the batch
		// is ignored.
		if !batchIDs[a.PostID] {
			continue
		}

		categoryID, ok := nameToID[normalizeName(a.CategoryName)]
		if !ok {
			categoryID, err := c.ensureFallback(ctx, nameToID)
			if err != nil {
				return err
			}
			if err := c.categoryRepo.Assign(ctx, a.PostID, categoryID); err != nil {
				return err
			}
			assigned[a.PostID] = true
			continue
		}

		if err := c.categoryRepo.Assign(ctx, a.PostID, categoryID); err != nil {
			return err
		}
		assigned[a.PostID] = true
	}

	// Silent omission is not acceptable: whatever the model skipped
	// lands in the fallback bucket.
	for _, post := range batch {
		if assigned[post.ID] {
			continue
		}
		categoryID, err := c.ensureFallback(ctx, nameToID)
		if err != nil {
			return err
		}
		if err := c.categoryRepo.Assign(ctx, post.ID, categoryID); err != nil {
			return err
		}
	}

	return nil
}

// ensureFallback returns the "Uncategorized" category id, creating it
// on first use. The id is cached in the name map, so one row is shared
// across batches and across runs.
func (c *Classifier) ensureFallback(ctx context.Context, nameToID map[string]int64) (int64, error) {
	key := normalizeName(FallbackCategoryName)
	if id, ok := nameToID[key]; ok {
		return id, nil
	}

	created, err := c.categoryRepo.Create(ctx, FallbackCategoryName,
		"Fallback category when no confident match exists.", "")
	if err != nil {
		return 0, err
	}

	nameToID[key] = created.ID
	return created.ID, nil
}

func (c *Classifier) failState(ctx context.Context, cause error) {
	err := c.stateRepo.Update(ctx, database.ClassificationStateUpdate{
		Status:       ptr(database.ClassificationStatusError),
		ErrorMessage: ptr(cause.Error()),
	})
	if err != nil {
		slog.Error("Failed to record classification error", "error", err)
	}
}

func chunk(posts []database.SamplePost, size int) [][]database.SamplePost {
	var out [][]database.SamplePost
	for i := 0; i < len(posts); i += size {
		end := i + size
		if end > len(posts) {
			end = len(posts)
		}
		out = append(out, posts[i:end])
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
