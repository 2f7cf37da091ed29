package inmem

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// ResourceRepository is the in-memory resources table
type ResourceRepository struct {
	s *Store
}

func copyResource(res *models.Resource, withFile bool) *models.Resource {
	cp := *res
	cp.FileName = strPtr(res.FileName)
	cp.MimeType = strPtr(res.MimeType)
	cp.ExternalURL = strPtr(res.ExternalURL)
	cp.ImageURL = strPtr(res.ImageURL)
	cp.Description = strPtr(res.Description)
	if res.FileSize != nil {
		size := *res.FileSize
		cp.FileSize = &size
	}
	if res.UnitNumber != nil {
		unit := *res.UnitNumber
		cp.UnitNumber = &unit
	}
	cp.FileData = nil
	if withFile && res.FileData != nil {
		cp.FileData = append([]byte(nil), res.FileData...)
	}
	cp.HasFile = res.MediaKind != models.MediaVideoURL
	cp.Subject = nil
	return &cp
}

// checkPayload mirrors the resources_payload_check constraint
func checkPayload(res *models.Resource) error {
	if res.MediaKind == models.MediaVideoURL {
		if res.ExternalURL == nil || len(res.FileData) > 0 {
			return fmt.Errorf("%w: resources_payload_check", apperrors.ErrValidationFailed)
		}
		return nil
	}
	if len(res.FileData) == 0 || res.ExternalURL != nil {
		return fmt.Errorf("%w: resources_payload_check", apperrors.ErrValidationFailed)
	}
	return nil
}

func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subjects[res.SubjectID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	if err := checkPayload(res); err != nil {
		return err
	}
	res.ID = uuid.New()
	res.CreatedAt = r.s.tick()
	res.UpdatedAt = res.CreatedAt
	res.HasFile = res.MediaKind != models.MediaVideoURL
	r.s.resources[res.ID] = copyResource(res, true)
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if res, ok := r.s.resources[id]; ok {
		return copyResource(res, false), nil
	}
	return nil, apperrors.ErrStudyResourceNotFound
}

func (r *ResourceRepository) GetWithFile(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.resources[id]
	if !ok || !res.IsActive {
		return nil, apperrors.ErrStudyResourceNotFound
	}
	cp := copyResource(res, true)
	cp.HasFile = len(cp.FileData) > 0
	return cp, nil
}

// ListBySubject orders by unit number with missing units last, then newest first
func (r *ResourceRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID, category *models.ResourceCategory) ([]*models.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []*models.Resource{}
	for _, res := range r.s.resources {
		if res.SubjectID != subjectID || !res.IsActive {
			continue
		}
		if category != nil && res.Category != *category {
			continue
		}
		list = append(list, copyResource(res, false))
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.UnitNumber != nil && b.UnitNumber != nil && *a.UnitNumber != *b.UnitNumber:
			return *a.UnitNumber < *b.UnitNumber
		case a.UnitNumber != nil && b.UnitNumber == nil:
			return true
		case a.UnitNumber == nil && b.UnitNumber != nil:
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return list, nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.resources[res.ID]
	if !ok {
		return apperrors.ErrStudyResourceNotFound
	}
	updated := copyResource(existing, true)
	updated.Title = res.Title
	updated.Description = strPtr(res.Description)
	updated.ImageURL = strPtr(res.ImageURL)
	updated.UnitNumber = res.UnitNumber
	updated.ExternalURL = strPtr(res.ExternalURL)
	updated.IsActive = res.IsActive
	if err := checkPayload(updated); err != nil {
		return err
	}
	updated.UpdatedAt = r.s.tick()
	res.UpdatedAt = updated.UpdatedAt
	r.s.resources[res.ID] = updated
	return nil
}

func (r *ResourceRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return apperrors.ErrStudyResourceNotFound
	}
	res.IsActive = active
	res.UpdatedAt = r.s.tick()
	return nil
}

func (r *ResourceRepository) ExistsByFileName(ctx context.Context, subjectID uuid.UUID, fileName string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, res := range r.s.resources {
		if res.SubjectID == subjectID && res.FileName != nil && *res.FileName == fileName {
			return true, nil
		}
	}
	return false, nil
}

func (r *ResourceRepository) ExistsByURL(ctx context.Context, subjectID uuid.UUID, url string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, res := range r.s.resources {
		if res.SubjectID == subjectID && res.ExternalURL != nil && *res.ExternalURL == url {
			return true, nil
		}
	}
	return false, nil
}
