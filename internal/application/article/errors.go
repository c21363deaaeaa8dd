package article

import (
	"context"
	"errors"
	"fmt"

	"z-article-ai-api/internal/application/quota"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	apperrors "z-article-ai-api/pkg/errors"
)

// Reason 失败分类
type Reason string

const (
	ReasonConfiguration       Reason = "configuration"
	ReasonUniquenessExhausted Reason = "uniqueness_exhausted"
	ReasonRequiredAsset       Reason = "required_asset"
	ReasonPersistence         Reason = "persistence"
	ReasonProvider            Reason = "provider"
)

// 配置错误的细分
const (
	DetailMissingCredentials   = "missing_credentials"
	DetailInvalidRequest       = "invalid_request"
	DetailCategoryNotFound     = "category_not_found"
	DetailWriterNotFound       = "writer_not_found"
	DetailImagePatternNotFound = "image_pattern_not_found"
	DetailKeywordExhausted     = "keyword_exhausted"
	DetailSlugExhausted        = "slug_exhausted"
)

// PipelineError 导致整次运行失败的错误
type PipelineError struct {
	Reason Reason
	Stage  Stage
	Detail string
	Err    error
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("article pipeline failed at %s (%s", e.Stage, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func pipelineError(reason Reason, stage Stage, detail string, err error) *PipelineError {
	return &PipelineError{Reason: reason, Stage: stage, Detail: detail, Err: err}
}

// ReasonOf 取失败分类，非流水线错误返回空串
func ReasonOf(err error) Reason {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

// ToAppError 转换为对外错误码
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.ErrLockHeld) {
		return apperrors.ErrGenerationInProgress
	}
	var qe quota.TokenQuotaExceededError
	if errors.As(err, &qe) {
		return apperrors.Wrap(err, apperrors.CodeQuotaExceeded, "token quota exceeded")
	}

	var pe *PipelineError
	if !errors.As(err, &pe) {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "article generation timed out")
		}
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "article generation failed")
	}

	switch pe.Reason {
	case ReasonConfiguration:
		switch pe.Detail {
		case DetailCategoryNotFound:
			return apperrors.Wrap(err, apperrors.CodeCategoryNotFound, "category not found")
		case DetailWriterNotFound:
			return apperrors.Wrap(err, apperrors.CodeWriterNotFound, "writer not found")
		case DetailImagePatternNotFound:
			return apperrors.Wrap(err, apperrors.CodeImagePatternNotFound, "image pattern not found")
		}
		return apperrors.Wrap(err, apperrors.CodePipelineConfig, "pipeline configuration error").WithDetail(pe.Detail)
	case ReasonUniquenessExhausted:
		return apperrors.Wrap(err, apperrors.CodeUniquenessExhausted, "could not produce a unique value").WithDetail(pe.Detail)
	case ReasonRequiredAsset:
		return apperrors.Wrap(err, apperrors.CodeRequiredAsset, "featured image could not be produced")
	case ReasonPersistence:
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist article")
	default:
		return apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "provider call failed").WithDetail(string(pe.Stage))
	}
}
