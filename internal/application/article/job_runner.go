package article

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/infrastructure/messaging"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/pkg/logger"
)

// JobPublisher 投递生成任务
type JobPublisher interface {
	PublishArticleGen(ctx context.Context, job *messaging.ArticleGenMessage) (string, error)
}

// Runner 流水线执行入口
type Runner interface {
	Run(ctx context.Context, req GenerationRequest, opts RunOptions) (*Result, error)
}

// JobRunner 异步生成任务：HTTP 侧创建并投递，worker 侧消费并执行
type JobRunner struct {
	jobs       repository.JobRepository
	runner     Runner
	publisher  JobPublisher
	maxRetries int
}

// NewJobRunner 创建任务执行器，maxRetries 应与流的重投上限一致
func NewJobRunner(jobs repository.JobRepository, runner Runner, publisher JobPublisher, maxRetries int) *JobRunner {
	return &JobRunner{jobs: jobs, runner: runner, publisher: publisher, maxRetries: maxRetries}
}

// SubmitInput 提交参数
type SubmitInput struct {
	Request        GenerationRequest
	Trigger        entity.JobTrigger
	IdempotencyKey string
	RequestID      string
	TraceID        string
}

// Submit 创建任务并投递到流；相同幂等键返回已有任务
func (r *JobRunner) Submit(ctx context.Context, in SubmitInput) (*entity.GenerationJob, error) {
	req := in.Request
	if err := req.Validate(); err != nil {
		return nil, pipelineError(ReasonConfiguration, StageFetchConfig, DetailInvalidRequest, err)
	}

	if in.IdempotencyKey != "" {
		existing, err := r.jobs.GetByIdempotencyKey(ctx, req.TenantID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	trigger := in.Trigger
	if trigger == "" {
		trigger = entity.TriggerManual
	}
	job := entity.NewGenerationJob(req.TenantID, req.CategoryID, req.WriterID, req.ImagePatternID, trigger)
	job.ID = uuid.New().String()
	job.IdempotencyKey = in.IdempotencyKey

	if err := r.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	_, err := r.publisher.PublishArticleGen(ctx, &messaging.ArticleGenMessage{
		JobID:          job.ID,
		TenantID:       job.TenantID,
		CategoryID:     job.CategoryID,
		WriterID:       job.WriterID,
		ImagePatternID: job.ImagePatternID,
		Trigger:        string(job.Trigger),
		IdempotencyKey: job.IdempotencyKey,
		RequestID:      in.RequestID,
		TraceID:        in.TraceID,
	})
	if err != nil {
		job.Fail("enqueue", err.Error())
		if uerr := r.jobs.Update(ctx, job); uerr != nil {
			logger.Error(ctx, "failed to mark job as failed", uerr, "job_id", job.ID)
		}
		return nil, fmt.Errorf("publish job: %w", err)
	}

	logger.Info(ctx, "generation job submitted", "job_id", job.ID, "category_id", job.CategoryID)
	return job, nil
}

// Handle 消费一条 article_gen 消息。
// 锁冲突与 provider 失败返回错误以便流重投，其余失败直接落库为 failed。
func (r *JobRunner) Handle(ctx context.Context, msg *messaging.Message) error {
	var payload messaging.ArticleGenMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return err
	}

	job, err := r.jobs.GetByID(ctx, payload.TenantID, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		logger.Warn(ctx, "job not found, dropping message", "job_id", payload.JobID)
		return nil
	}
	if job.IsTerminal() {
		logger.Info(ctx, "job already finished, skipping", "job_id", job.ID, "status", job.Status)
		return nil
	}

	job.Start()
	if err := r.jobs.Update(ctx, job); err != nil {
		return err
	}

	req := GenerationRequest{
		TenantID:       job.TenantID,
		CategoryID:     job.CategoryID,
		WriterID:       job.WriterID,
		ImagePatternID: job.ImagePatternID,
	}
	res, runErr := r.runner.Run(ctx, req, RunOptions{
		JobID:    job.ID,
		Trigger:  job.Trigger,
		Progress: jobProgress{jobs: r.jobs, jobID: job.ID},
	})

	if runErr == nil {
		job.Complete(res.ArticleID, res.Title)
		return r.jobs.Update(context.WithoutCancel(ctx), job)
	}

	if retryable(runErr) && job.RetryCount < r.maxRetries {
		job.Retry()
		if err := r.jobs.Update(context.WithoutCancel(ctx), job); err != nil {
			logger.Error(ctx, "failed to reset job for retry", err, "job_id", job.ID)
		}
		return runErr
	}

	reason := string(ReasonOf(runErr))
	if reason == "" {
		reason = "error"
	}
	job.Fail(reason, runErr.Error())
	return r.jobs.Update(context.WithoutCancel(ctx), job)
}

func retryable(err error) bool {
	return errors.Is(err, redis.ErrLockHeld) || ReasonOf(err) == ReasonProvider
}

// jobProgress 阶段完成后更新任务进度，失败只记录日志
type jobProgress struct {
	jobs  repository.JobRepository
	jobID string
}

func (p jobProgress) Report(ctx context.Context, stage Stage, progress int) {
	if err := p.jobs.UpdateProgress(ctx, p.jobID, string(stage), progress); err != nil {
		logger.Warn(ctx, "failed to update job progress", "job_id", p.jobID, "stage", stage, "error", err)
	}
}
