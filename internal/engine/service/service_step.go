package service

import (
	"slices"
	"strings"

	"github.com/go-arcade/qaboard/internal/engine/model"
)

// AddStep appends a pending step. The description is trimmed and must not
// be empty.
func (s *BoardService) AddStep(teamId, featureId int64, description string) (model.Feature, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Feature{}, ErrEmptyDescription
	}
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		f.Steps = append(f.Steps, model.Step{
			Id:          s.seq.Next(),
			Number:      len(f.Steps) + 1,
			Description: description,
			Order:       len(f.Steps),
			Status:      model.StatusPending,
		})
		return nil
	})
}

func (s *BoardService) UpdateStep(teamId, featureId, stepId int64, description string) (model.Feature, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Feature{}, ErrEmptyDescription
	}
	return s.editStep(teamId, featureId, stepId, func(st *model.Step) error {
		st.Description = description
		return nil
	})
}

// RemoveStep deletes a step and renumbers number/order.
func (s *BoardService) RemoveStep(teamId, featureId, stepId int64) (model.Feature, error) {
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		i := indexOfStep(f.Steps, stepId)
		if i < 0 {
			return ErrStepNotFound
		}
		f.Steps = slices.Delete(f.Steps, i, i+1)
		f.Renumber()
		return nil
	})
}

func (s *BoardService) ReorderSteps(teamId, featureId int64, from, to int) (model.Feature, error) {
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		steps, err := move(f.Steps, from, to)
		if err != nil {
			return err
		}
		f.Steps = steps
		f.Renumber()
		return nil
	})
}

func (s *BoardService) MoveStep(teamId, featureId, stepId int64, to int) (model.Feature, error) {
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		from := indexOfStep(f.Steps, stepId)
		if from < 0 {
			return ErrStepNotFound
		}
		steps, err := move(f.Steps, from, to)
		if err != nil {
			return err
		}
		f.Steps = steps
		f.Renumber()
		return nil
	})
}

// VerifyStep records a verification result. Submitting the current status
// again toggles the step back to pending; pending clears lastVerified.
func (s *BoardService) VerifyStep(teamId, featureId, stepId int64, status model.Status) (model.Feature, error) {
	if !status.Valid() {
		return model.Feature{}, ErrInvalidStatus
	}
	return s.editStep(teamId, featureId, stepId, func(st *model.Step) error {
		if st.Status == status {
			status = model.StatusPending
		}
		st.Status = status
		if status == model.StatusPending {
			st.LastVerified = nil
			return nil
		}
		ts := s.nowMilli()
		st.LastVerified = &ts
		return nil
	})
}
