package processor

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"
	"orderservice/pkg/logger"
	"orderservice/pkg/metrics"

	"github.com/google/uuid"
)

// ErrQueueFull очередь импорта переполнена
var ErrQueueFull = errors.New("import queue is full")

// importJob задача импорта загруженного файла
type importJob struct {
	taskID   string
	userID   uuid.UUID
	fileName string
	filePath string
}

// ImportWorkerPool обрабатывает загруженные прайс-листы в фоне
// Клиент получает task_id сразу, статус хранится в MongoDB
type ImportWorkerPool struct {
	importer service.ImportService
	tasks    repository.ImportTaskRepository
	jobs     chan importJob
	workers  int
	wg       sync.WaitGroup
}

// NewImportWorkerPool создает пул воркеров импорта
func NewImportWorkerPool(importer service.ImportService, tasks repository.ImportTaskRepository, workers, queueSize int) *ImportWorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &ImportWorkerPool{
		importer: importer,
		tasks:    tasks,
		jobs:     make(chan importJob, queueSize),
		workers:  workers,
	}
}

// Start запускает воркеров
func (p *ImportWorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	logger.Info().Int("workers", p.workers).Msg("import worker pool started")
}

// Stop закрывает очередь и ждет завершения текущих задач
func (p *ImportWorkerPool) Stop() {
	close(p.jobs)
	p.wg.Wait()

	logger.Info().Msg("import worker pool stopped")
}

// Submit регистрирует задачу импорта и ставит её в очередь
// Файл должен быть уже сохранён во временный каталог; воркер удалит его
// после обработки независимо от результата
func (p *ImportWorkerPool) Submit(ctx context.Context, userID uuid.UUID, fileName, filePath string) (string, error) {
	taskID := uuid.NewString()

	task := &entity.ImportTask{
		TaskID:    taskID,
		UserID:    userID.String(),
		FileName:  fileName,
		Status:    entity.ImportTaskQueued,
		CreatedAt: time.Now(),
	}

	if err := p.tasks.Create(ctx, task); err != nil {
		return "", err
	}

	job := importJob{
		taskID:   taskID,
		userID:   userID,
		fileName: fileName,
		filePath: filePath,
	}

	select {
	case p.jobs <- job:
		return taskID, nil
	default:
		if err := p.tasks.Finish(ctx, taskID, nil, ErrQueueFull.Error()); err != nil {
			logger.Error().Err(err).Str("task_id", taskID).Msg("failed to mark task rejected")
		}
		return "", ErrQueueFull
	}
}

func (p *ImportWorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.process(ctx, job)
	}
}

func (p *ImportWorkerPool) process(ctx context.Context, job importJob) {
	defer func() {
		if err := os.Remove(job.filePath); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", job.filePath).Msg("failed to remove temp import file")
		}
	}()

	if err := p.tasks.MarkRunning(ctx, job.taskID); err != nil {
		logger.Error().Err(err).Str("task_id", job.taskID).Msg("failed to mark task running")
	}

	file, err := os.Open(job.filePath)
	if err != nil {
		p.finish(ctx, job.taskID, nil, err)
		return
	}

	stats, err := p.importer.ImportCatalog(ctx, job.userID, job.fileName, file)
	file.Close()

	p.finish(ctx, job.taskID, stats, err)
}

func (p *ImportWorkerPool) finish(ctx context.Context, taskID string, stats *entity.ImportStats, importErr error) {
	errText := ""
	if importErr != nil {
		errText = importErr.Error()
		metrics.ImportTasks.WithLabelValues("error").Inc()
		logger.Error().Err(importErr).Str("task_id", taskID).Msg("import task failed")
	} else {
		metrics.ImportTasks.WithLabelValues("done").Inc()
	}

	if err := p.tasks.Finish(ctx, taskID, stats, errText); err != nil {
		logger.Error().Err(err).Str("task_id", taskID).Msg("failed to finish import task")
	}
}
