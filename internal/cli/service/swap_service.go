package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/repo"
)

// ResultsDirName is the folder for try-on results inside the user data dir.
const ResultsDirName = "swap_results"

// SwapRequest describes one try-on.
type SwapRequest struct {
	PersonImage string
	SourceType  string // model.SourceCloset, model.SourceOutfit or model.SourceCustom
	SourceID    int64  // closet item or outfit id
	// GarmentImage is the garment photo for SourceCustom.
	GarmentImage string
}

// TryOner calls the remote try-on.
type TryOner interface {
	TryOn(ctx context.Context, person, cloth []byte, personName, clothName string) ([]byte, string, error)
}

// SwapService — примерка и её история.
type SwapService struct {
	jobs      repo.SwapJobRepository
	closet    repo.ClosetRepository
	outfits   repo.OutfitRepository
	tryOn     TryOner
	resultDir string
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewSwapService создаёт сервис. tryOn может быть nil: примерка вещей тогда недоступна.
func NewSwapService(jobs repo.SwapJobRepository, closet repo.ClosetRepository, outfits repo.OutfitRepository, tryOn TryOner, resultDir string, log *zap.SugaredLogger) *SwapService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SwapService{
		jobs:      jobs,
		closet:    closet,
		outfits:   outfits,
		tryOn:     tryOn,
		resultDir: resultDir,
		log:       log,
		now:       time.Now,
	}
}

// History streams the jobs, newest first.
func (s *SwapService) History(ctx context.Context) <-chan []model.SwapJob {
	return s.jobs.ObserveHistory(ctx)
}

// Get returns one job.
func (s *SwapService) Get(ctx context.Context, id int64) (*model.SwapJob, error) {
	return s.jobs.Get(ctx, id)
}

// Run выполняет примерку и возвращает сохранённую запись истории.
// Образ из каталога даёт заглушку: результатом становится фото человека.
// При ошибке сервера запись остаётся со статусом «失败», ошибка возвращается вместе с ней.
func (s *SwapService) Run(ctx context.Context, req SwapRequest) (*model.SwapJob, error) {
	person := strings.TrimSpace(req.PersonImage)
	if person == "" {
		return nil, errors.New("person photo is required")
	}
	if _, err := os.Stat(person); err != nil {
		return nil, fmt.Errorf("person photo: %w", err)
	}

	job := model.SwapJob{
		SourceType:     req.SourceType,
		SourceRefID:    req.SourceID,
		PersonImageURI: person,
		Status:         model.StatusPending,
	}
	switch req.SourceType {
	case model.SourceOutfit:
		o, err := s.outfits.Get(ctx, req.SourceID)
		if err != nil {
			return nil, fmt.Errorf("outfit %d: %w", req.SourceID, err)
		}
		job.OutfitID = o.ID
		job.SourceTitle = o.Title
		job.ResultImageURI = person
		job.Status = model.StatusPlaceholder
		return s.insert(ctx, job)
	case model.SourceCloset:
		it, err := s.closet.Get(ctx, req.SourceID)
		if err != nil {
			return nil, fmt.Errorf("closet item %d: %w", req.SourceID, err)
		}
		if it.ImageURI == "" {
			return nil, fmt.Errorf("closet item %d has no photo", it.ID)
		}
		job.SourceTitle = it.Name
		job.SourceImageURI = it.ImageURI
	case model.SourceCustom:
		if strings.TrimSpace(req.GarmentImage) == "" {
			return nil, errors.New("garment photo is required")
		}
		job.SourceTitle = strings.TrimSuffix(filepath.Base(req.GarmentImage), filepath.Ext(req.GarmentImage))
		job.SourceImageURI = req.GarmentImage
	default:
		return nil, fmt.Errorf("unknown source type %q", req.SourceType)
	}

	if s.tryOn == nil {
		return nil, ErrNoBackend
	}
	personData, err := os.ReadFile(person)
	if err != nil {
		return nil, fmt.Errorf("read person photo: %w", err)
	}
	clothData, err := os.ReadFile(job.SourceImageURI)
	if err != nil {
		return nil, fmt.Errorf("read garment photo: %w", err)
	}

	saved, err := s.insert(ctx, job)
	if err != nil {
		return nil, err
	}
	img, contentType, err := s.tryOn.TryOn(ctx, personData, clothData, filepath.Base(person), filepath.Base(job.SourceImageURI))
	if err == nil {
		var path string
		path, err = s.saveResult(img, contentType)
		if err == nil {
			if ferr := s.jobs.Finish(ctx, saved.ID, model.StatusDone, path); ferr != nil {
				return nil, ferr
			}
			saved.Status, saved.ResultImageURI = model.StatusDone, path
			s.log.Infow("try-on done", "job", saved.ID, "result", path)
			return saved, nil
		}
	}
	s.log.Warnw("try-on failed", "job", saved.ID, "error", err)
	// контекст запроса мог уже истечь, статус пишем в любом случае
	if ferr := s.jobs.Finish(context.WithoutCancel(ctx), saved.ID, model.StatusFailed, ""); ferr != nil {
		s.log.Errorw("try-on status not saved", "job", saved.ID, "error", ferr)
	}
	saved.Status = model.StatusFailed
	return saved, fmt.Errorf("try-on: %w", err)
}

func (s *SwapService) insert(ctx context.Context, job model.SwapJob) (*model.SwapJob, error) {
	id, err := s.jobs.Insert(ctx, job)
	if err != nil {
		return nil, err
	}
	return s.jobs.Get(ctx, id)
}

// saveResult пишет swap_results/result_<ms>.<png|jpg>.
func (s *SwapService) saveResult(img []byte, contentType string) (string, error) {
	if len(img) == 0 {
		return "", errors.New("empty result image")
	}
	if err := os.MkdirAll(s.resultDir, 0o700); err != nil {
		return "", err
	}
	ext := "jpg"
	if strings.Contains(strings.ToLower(contentType), "png") {
		ext = "png"
	}
	path := filepath.Join(s.resultDir, fmt.Sprintf("result_%d.%s", s.now().UnixMilli(), ext))
	if err := os.WriteFile(path, img, 0o600); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return path, nil
}

// Delete удаляет запись и файл результата. Фото человека не трогается.
func (s *SwapService) Delete(ctx context.Context, id int64) error {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	if job.ResultImageURI != "" && job.ResultImageURI != job.PersonImageURI {
		if err := removeInside(job.ResultImageURI, s.resultDir); err != nil {
			s.log.Warnw("try-on result not removed", "path", job.ResultImageURI, "error", err)
		}
	}
	return nil
}
