package worker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/pkg/imaging"
	"github.com/admin/tg-bots/photo-bot/internal/pkg/retry"
	"github.com/admin/tg-bots/photo-bot/internal/ports/events"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/texts"
	"github.com/google/uuid"
)

const resultContentType = "image/png"

// runJob прогоняет одну джобу через пайплайн. Любая ошибка терминальна
// для джобы: возврат кредитов делает тот единственный вызов, которому
// условный переход из processing вернул true. Блокировка модерацией не
// ошибка очереди, такая джоба уходит в done без результата.
func (s *Service) runJob(ctx context.Context, job *domain.Job) {
	session, err := s.SessionRepo.GetByID(ctx, job.SessionID)
	if err != nil {
		s.failJob(ctx, job, nil, nil, fmt.Errorf("failed to load session: %w", err))
		return
	}
	user, err := s.UserRepo.GetByID(ctx, job.UserID)
	if err != nil {
		s.failJob(ctx, job, session, nil, fmt.Errorf("failed to load user: %w", err))
		return
	}

	sourceFileID := session.SourceFileID()
	if sourceFileID == "" || session.PromptFinal == nil || *session.PromptFinal == "" {
		s.failJob(ctx, job, session, user, fmt.Errorf("session %s has no source photo or prompt", session.ID))
		return
	}

	sourceImage, err := s.downloadSource(ctx, sourceFileID)
	if err != nil {
		s.failJob(ctx, job, session, user, fmt.Errorf("failed to fetch source photo: %w", err))
		return
	}

	params := session.Params(s.Cfg.DefaultModel)
	generated, err := s.generate(ctx, *session.PromptFinal, sourceImage, params)
	if err != nil {
		if block, ok := domain.IsModerationBlock(err); ok {
			s.handleModerationBlock(ctx, job, session, user, block)
			return
		}
		s.failJob(ctx, job, session, user, err)
		return
	}

	s.updateProgress(ctx, session, texts.ProgressPostProcessing(user.Lang))

	processed, err := s.postProcess(generated, params)
	if err != nil {
		s.failJob(ctx, job, session, user, fmt.Errorf("failed to post-process image: %w", err))
		return
	}

	result := &domain.Result{
		ID:                uuid.New(),
		UserID:            user.ID,
		SessionID:         session.ID,
		SourcePhotoFileID: sourceFileID,
		UserInput:         session.UserInput,
		GeneratedPrompt:   session.PromptFinal,
		StoragePath:       fmt.Sprintf("results/%s/%s.png", user.ID, job.ID),
		Model:             params.Model,
		AspectRatio:       params.AspectRatio,
		Quality:           params.Quality,
		Env:               job.Env,
		CreatedAt:         time.Now(),
	}
	if err := s.ResultRepo.Create(ctx, result); err != nil {
		s.failJob(ctx, job, session, user, fmt.Errorf("failed to persist result: %w", err))
		return
	}

	var fileID string
	err = retry.Do(ctx, s.Log, retry.Options{Name: "telegram send photo"}, func(ctx context.Context) error {
		var err error
		fileID, err = s.Telegram.SendPhoto(ctx, user.TelegramChatID, processed,
			fmt.Sprintf("%s.png", job.ID), texts.ResultKeyboard(user.Lang))
		return err
	})
	if err != nil {
		s.failJob(ctx, job, session, user, fmt.Errorf("failed to deliver result: %w", err))
		return
	}

	if err := s.ResultRepo.SetTelegramFileID(ctx, result.ID, fileID); err != nil {
		s.Log.Warn("failed to save result file id",
			"error", err,
			"result_id", result.ID,
		)
	}
	if err := s.SessionRepo.CompleteResult(ctx, session.ID, fileID); err != nil {
		s.Log.Error("failed to complete session",
			"error", err,
			"session_id", session.ID,
		)
	}
	if err := s.UserRepo.IncrementGenerations(ctx, user.ID); err != nil {
		s.Log.Warn("failed to increment generation counter",
			"error", err,
			"user_id", user.ID,
		)
	}

	s.deleteProgress(ctx, session)
	go s.mirrorResult(context.WithoutCancel(ctx), job, session, user, result, sourceImage, processed, params.Model)

	if err := s.JobRepo.MarkDone(ctx, job.ID); err != nil {
		s.Log.Error("failed to mark job done",
			"error", err,
			"job_id", job.ID,
		)
		return
	}

	s.Log.Info("job done",
		"job_id", job.ID,
		"session_id", session.ID,
		"user_id", user.ID,
		"model", params.Model,
	)
}

// downloadSource резолвит file_id и скачивает исходное фото с ретраями
func (s *Service) downloadSource(ctx context.Context, fileID string) ([]byte, error) {
	var filePath string
	err := retry.Do(ctx, s.Log, retry.Options{Name: "telegram get file path"}, func(ctx context.Context) error {
		var err error
		filePath, err = s.Telegram.GetFilePath(ctx, fileID)
		return err
	})
	if err != nil {
		return nil, err
	}

	var data []byte
	err = retry.Do(ctx, s.Log, retry.Options{Name: "telegram download file"}, func(ctx context.Context) error {
		var err error
		data, err = s.Telegram.DownloadFile(ctx, filePath)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// generate зовёт API генерации с ретраями по транзиентным ошибкам.
// Блокировка модерацией не ретраится.
func (s *Service) generate(ctx context.Context, prompt string, sourceImage []byte, params domain.GenerationParams) ([]byte, error) {
	var result *service.GenerateImageResult
	err := retry.Do(ctx, s.Log, retry.Options{
		Name: "image generation",
		Retryable: func(err error) bool {
			if _, ok := domain.IsModerationBlock(err); ok {
				return false
			}
			return retry.IsTransient(err)
		},
	}, func(ctx context.Context) error {
		var err error
		result, err = s.Generator.GenerateImage(ctx, service.GenerateImageRequest{
			Prompt:      prompt,
			Image:       sourceImage,
			MimeType:    http.DetectContentType(sourceImage),
			Model:       params.Model,
			AspectRatio: params.AspectRatio,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result.Image, nil
}

// postProcess подгоняет результат под аспект и качество сессии
func (s *Service) postProcess(data []byte, params domain.GenerationParams) ([]byte, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}
	width, height := params.OutputDimensions()
	return imaging.EncodePNG(imaging.CoverResize(img, width, height))
}

// handleModerationBlock закрывает джобу по блокировке модерацией. Для
// очереди это успешный исход без результата, джоба уходит в done.
// Оператору алерт, пользователю возврат и кнопка повтора
func (s *Service) handleModerationBlock(ctx context.Context, job *domain.Job, session *domain.Session, user *domain.User, block *domain.ModerationBlockError) {
	settled, err := s.JobRepo.MarkDoneFromProcessing(ctx, job.ID)
	if err != nil {
		s.Log.Error("failed to settle moderated job",
			"error", err,
			"job_id", job.ID,
		)
	}
	if settled {
		s.refundSession(ctx, job, session)
	}

	if err := s.Alerter.SendAlert(ctx, texts.OperatorModerationBlock(user.DisplayName(), block.Reason, session.UserInput)); err != nil {
		s.Log.Warn("failed to send moderation alert", "error", err, "job_id", job.ID)
	}

	s.deleteProgress(ctx, session)
	if err := s.Telegram.SendMessageWithKeyboard(ctx, user.TelegramChatID,
		texts.ModerationBlocked(user.Lang), texts.RetryKeyboard(user.Lang)); err != nil {
		s.Log.Warn("failed to notify user about moderation block", "error", err, "user_id", user.ID)
	}

	s.sendEvent(ctx, job, "moderation_block", "", block.Reason)
	s.Log.Info("job blocked by moderation",
		"job_id", job.ID,
		"session_id", session.ID,
		"reason", block.Reason,
		"refunded", settled,
	)
}

// failJob терминализирует джобу с ошибкой. Если сессия или пользователь
// не были загружены в пайплайне, пробует загрузить их здесь ещё раз:
// без сессии невозможен возврат кредитов, без пользователя уведомление.
func (s *Service) failJob(ctx context.Context, job *domain.Job, session *domain.Session, user *domain.User, jobErr error) {
	s.Log.Error("job failed",
		"error", jobErr,
		"job_id", job.ID,
		"session_id", job.SessionID,
	)

	if session == nil {
		var err error
		session, err = s.SessionRepo.GetByID(ctx, job.SessionID)
		if err != nil {
			s.Log.Error("failed to load session for refund",
				"error", err,
				"job_id", job.ID,
				"session_id", job.SessionID,
			)
			session = nil
		}
	}
	if user == nil {
		var err error
		user, err = s.UserRepo.GetByID(ctx, job.UserID)
		if err != nil {
			s.Log.Error("failed to load user for failure notice",
				"error", err,
				"job_id", job.ID,
				"user_id", job.UserID,
			)
			user = nil
		}
	}

	s.terminalizeJob(ctx, job, session, jobErr.Error())

	if err := s.Alerter.SendAlert(ctx, texts.OperatorJobError(job.ID.String(), jobErr.Error())); err != nil {
		s.Log.Warn("failed to send job error alert", "error", err, "job_id", job.ID)
	}

	if user == nil || session == nil {
		return
	}
	s.deleteProgress(ctx, session)
	if err := s.Telegram.SendMessageWithKeyboard(ctx, user.TelegramChatID,
		texts.GenerationFailed(user.Lang), texts.RetryKeyboard(user.Lang)); err != nil {
		s.Log.Warn("failed to notify user about failure", "error", err, "user_id", user.ID)
	}

	s.sendEvent(ctx, job, "error", "", jobErr.Error())
}

// terminalizeJob переводит джобу в error и, если именно этот вызов её
// терминализировал, возвращает кредиты сессии и возвращает её в
// wait_description. Условный MarkError гарантирует один возврат на джобу.
func (s *Service) terminalizeJob(ctx context.Context, job *domain.Job, session *domain.Session, errorText string) bool {
	terminalized, err := s.JobRepo.MarkError(ctx, job.ID, errorText)
	if err != nil {
		s.Log.Error("failed to mark job error",
			"error", err,
			"job_id", job.ID,
		)
		return false
	}
	if !terminalized {
		return false
	}

	s.refundSession(ctx, job, session)
	return true
}

// refundSession возвращает кредиты, списанные при постановке джобы, и
// откатывает сессию в wait_description. Зовётся только тем вызовом,
// который перевёл джобу в терминальный статус.
func (s *Service) refundSession(ctx context.Context, job *domain.Job, session *domain.Session) {
	if session == nil {
		return
	}

	if session.CreditsSpent > 0 {
		if _, err := s.UserRepo.AddCredits(ctx, session.UserID, session.CreditsSpent); err != nil {
			s.Log.Error("failed to refund credits",
				"error", err,
				"job_id", job.ID,
				"user_id", session.UserID,
				"amount", session.CreditsSpent,
			)
		}
	}
	if err := s.SessionRepo.UpdateState(ctx, session.ID, domain.SessionWaitDesc); err != nil {
		s.Log.Error("failed to reset session state",
			"error", err,
			"session_id", session.ID,
		)
	}
}

// mirrorResult фоновая зеркалка результата: S3, бизнес-уведомление с
// парой исходник и результат, событие в шину. Ошибки логируются и не
// влияют на доставку.
func (s *Service) mirrorResult(ctx context.Context, job *domain.Job, session *domain.Session, user *domain.User, result *domain.Result, source, data []byte, model string) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := s.S3.PutFile(ctx, result.StoragePath, data, resultContentType); err != nil {
		s.Log.Warn("failed to mirror result to storage",
			"error", err,
			"result_id", result.ID,
			"path", result.StoragePath,
		)
	}
	if err := s.Alerter.SendNotification(ctx, texts.OperatorGenerationDone(user.DisplayName(), model, session.UserInput), source, data); err != nil {
		s.Log.Warn("failed to send business notification",
			"error", err,
			"result_id", result.ID,
		)
	}
	s.sendEvent(ctx, job, "done", model, "")
}

func (s *Service) sendEvent(ctx context.Context, job *domain.Job, kind, model, errText string) {
	if s.Producer == nil {
		return
	}
	event := events.GenerationEvent{
		Kind:      kind,
		JobID:     job.ID,
		SessionID: job.SessionID,
		UserID:    job.UserID,
		Model:     model,
		Error:     errText,
	}
	if err := s.Producer.SendGenerationEvent(ctx, event); err != nil {
		s.Log.Warn("failed to send generation event",
			"error", err,
			"job_id", job.ID,
			"kind", kind,
		)
	}
}

// updateProgress правит сообщение-индикатор, если оно есть
func (s *Service) updateProgress(ctx context.Context, session *domain.Session, text string) {
	if session.ProgressChatID == nil || session.ProgressMessageID == nil {
		return
	}
	if err := s.Telegram.EditMessageText(ctx, *session.ProgressChatID, *session.ProgressMessageID, text); err != nil {
		s.Log.Debug("failed to edit progress message",
			"error", err,
			"session_id", session.ID,
		)
	}
}

// deleteProgress убирает сообщение-индикатор после терминального исхода
func (s *Service) deleteProgress(ctx context.Context, session *domain.Session) {
	if session.ProgressChatID == nil || session.ProgressMessageID == nil {
		return
	}
	if err := s.Telegram.DeleteMessage(ctx, *session.ProgressChatID, *session.ProgressMessageID); err != nil {
		s.Log.Debug("failed to delete progress message",
			"error", err,
			"session_id", session.ID,
		)
	}
}
