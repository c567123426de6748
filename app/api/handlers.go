package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serrrfirat/xmarks/app/classify"
	"github.com/serrrfirat/xmarks/app/database"
	"github.com/serrrfirat/xmarks/app/syncer"
	"github.com/serrrfirat/xmarks/app/tasks"
)

func NewHandler(postRepo database.PostRepository, categoryRepo database.CategoryRepository,
	syncState database.SyncStateRepository, classifyState database.ClassificationStateRepository,
	s *syncer.Syncer, threads ThreadsInterface, classifier *classify.Classifier,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		postRepo:        postRepo,
		categoryRepo:    categoryRepo,
		syncState:       syncState,
		classifyState:   classifyState,
		threads:         threads,
		scheduler:       scheduler,
		newSyncTask:     func() tasks.TaskInterface { return tasks.NewSyncBookmarksTask(s) },
		newDiscoverTask: func() tasks.TaskInterface { return tasks.NewDiscoverTopicsTask(classifier) },
		newClassifyTask: func() tasks.TaskInterface { return tasks.NewClassifyBookmarksTask(classifier) },
	}
}

// StartSync acknowledges immediately; the pass itself runs on a
// worker and is observed through GET /api/sync/status.
func (h *Handler) StartSync(c *gin.Context) {
	state, err := h.syncState.Get(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sync_state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sync state"})
		return
	}

	if state.Status == database.SyncStatusSyncing {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
		return
	}

	if err := h.scheduler.EnqueueTask(h.newSyncTask()); err != nil {
		slog.Error("Failed to enqueue sync task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	state, err := h.syncState.Get(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sync_state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get sync status"})
		return
	}

	c.JSON(http.StatusOK, syncStatusResponse{
		LastSyncAt:  state.LastSyncAt,
		LastCursor:  state.LastCursor,
		TotalSynced: state.TotalSynced,
		Status:      state.Status,
		Error:       state.ErrorMessage,
	})
}

func (h *Handler) StartDiscovery(c *gin.Context) {
	h.startClassificationTask(c, h.newDiscoverTask)
}

func (h *Handler) StartClassification(c *gin.Context) {
	h.startClassificationTask(c, h.newClassifyTask)
}

// startClassificationTask rejects with a conflict while either
// classification-family operation is running. The persisted guard in
// the orchestrator closes the remaining race between this check and
// the worker picking the task up.
func (h *Handler) startClassificationTask(c *gin.Context, newTask func() tasks.TaskInterface) {
	state, err := h.classifyState.Get(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_classification_state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get classification state"})
		return
	}

	if state.Status == database.ClassificationStatusDiscovering ||
		state.Status == database.ClassificationStatusClassifying {
		c.JSON(http.StatusConflict, gin.H{"error": "classification already running"})
		return
	}

	if err := h.scheduler.EnqueueTask(newTask()); err != nil {
		slog.Error("Failed to enqueue classification task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *Handler) GetClassificationStatus(c *gin.Context) {
	state, err := h.classifyState.Get(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_classification_state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get classification status"})
		return
	}

	c.JSON(http.StatusOK, classificationStatusResponse{
		Status:          state.Status,
		Phase:           state.Phase,
		ProgressCurrent: state.ProgressCurrent,
		ProgressTotal:   state.ProgressTotal,
		ErrorMessage:    state.ErrorMessage,
		StartedAt:       state.StartedAt,
		CompletedAt:     state.CompletedAt,
	})
}

func (h *Handler) GetTopics(c *gin.Context) {
	categories, err := h.categoryRepo.GetAllWithCounts(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_topics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get topics"})
		return
	}

	topics := make([]topicResponse, 0, len(categories))
	for _, category := range categories {
		topics = append(topics, topicResponse{
			ID:          category.ID,
			Name:        category.Name,
			Description: category.Description,
			Emoji:       category.Emoji,
			CreatedAt:   category.CreatedAt,
			PostCount:   category.PostCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": topics})
}

func (h *Handler) GetThread(c *gin.Context) {
	postID := c.Param("id")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post id required"})
		return
	}

	posts, err := h.threads.Get(c.Request.Context(), postID)
	if err != nil {
		slog.Error("Thread lookup failed", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch thread"})
		return
	}

	thread := make([]threadPostResponse, 0, len(posts))
	for _, post := range posts {
		thread = append(thread, threadPostResponse{
			ID:           post.ID,
			Text:         post.Text,
			AuthorName:   post.AuthorName,
			AuthorHandle: post.AuthorHandle,
			CreatedAt:    post.CreatedAt,
			InReplyToID:  post.InReplyToID,
			URL:          post.URL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": thread})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if postCount, err := h.postRepo.GetPostCount(c.Request.Context()); err == nil {
		health["posts"] = postCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := gin.H{}

	if postCount, err := h.postRepo.GetPostCount(ctx); err == nil {
		stats["posts"] = postCount
	}
	if unclassified, err := h.categoryRepo.GetUnclassifiedCount(ctx); err == nil {
		stats["unclassified"] = unclassified
	}
	if categories, err := h.categoryRepo.GetAll(ctx); err == nil {
		stats["categories"] = len(categories)
	}
	if state, err := h.syncState.Get(ctx); err == nil {
		stats["last_sync_at"] = state.LastSyncAt
		stats["sync_status"] = state.Status
	}

	c.JSON(http.StatusOK, stats)
}
