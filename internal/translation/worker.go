package translation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
	"github.com/KhanPromiseP/cverra-sub006/internal/metrics"
)

const (
	queueKey       = "translations"
	failedQueueKey = "translations:failed"
	maxQueueTries  = 3
)

type QueuedJob struct {
	ResumeID int       `json:"resume_id"`
	Language string    `json:"language"`
	AIModel  string    `json:"ai_model,omitempty"`
	Force    bool      `json:"force"`
	Tries    int       `json:"tries"`
	Created  time.Time `json:"created"`
}

// Worker drains the Redis translation queue in the background so clients can
// enqueue a job and poll its status instead of holding a request open.
type Worker struct {
	rdb     *redis.Client
	service Service
}

func NewWorker(rdb *redis.Client, service Service) *Worker {
	return &Worker{rdb: rdb, service: service}
}

// Enqueue pushes a translation job onto the queue.
func (w *Worker) Enqueue(ctx context.Context, job QueuedJob) error {
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := w.rdb.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue translation for resume %d: %v", job.ResumeID, err)
		return err
	}

	if length, err := w.rdb.LLen(ctx, queueKey).Result(); err == nil {
		metrics.TranslationQueueLength.Set(float64(length))
	}

	logger.Infof("Translation queued: resume %d -> %s", job.ResumeID, job.Language)
	return nil
}

func (w *Worker) Start(ctx context.Context) {
	logger.Info("Translation worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Translation worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	result, err := w.rdb.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job QueuedJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad translation job data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Translating resume %d -> %s (attempt %d)", job.ResumeID, job.Language, job.Tries)

	opts := Options{Force: job.Force, UseCache: !job.Force, AIModel: job.AIModel}

	// A failed first attempt persists a FAILED row, which Translate refuses
	// to redo; requeued attempts go through the retry path instead.
	translate := w.service.Translate
	if job.Tries > 1 {
		translate = w.service.RetryFailed
	}

	if _, err := translate(ctx, job.ResumeID, job.Language, opts); err != nil {
		logger.Errorf("Queued translation of resume %d -> %s failed: %v", job.ResumeID, job.Language, err)

		if job.Tries < maxQueueTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			w.rdb.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying translation of resume %d -> %s (attempt %d)", job.ResumeID, job.Language, job.Tries+1)
		} else {
			logger.Errorf("Translation of resume %d -> %s failed after %d queue attempts", job.ResumeID, job.Language, maxQueueTries)
			w.saveFailed(job, err)
		}
		return
	}

	if length, err := w.rdb.LLen(ctx, queueKey).Result(); err == nil {
		metrics.TranslationQueueLength.Set(float64(length))
	}
}

func (w *Worker) saveFailed(job QueuedJob, cause error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	w.rdb.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Translation job moved to failed queue: resume %d -> %s", job.ResumeID, job.Language)
}

func (w *Worker) QueueLength(ctx context.Context) int64 {
	length, _ := w.rdb.LLen(ctx, queueKey).Result()
	return length
}
