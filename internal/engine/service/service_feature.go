package service

import (
	"slices"
	"strings"

	"github.com/go-arcade/qaboard/internal/engine/model"
)

// AddFeature appends a feature numbered len+1.
func (s *BoardService) AddFeature(teamId int64, name, description string) (model.Feature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Feature{}, ErrEmptyName
	}
	var out model.Feature
	_, err := s.editTeam(teamId, func(t *model.Team) error {
		out = model.Feature{
			Id:            s.seq.Next(),
			Number:        len(t.Features) + 1,
			Name:          name,
			Description:   strings.TrimSpace(description),
			Steps:         []model.Step{},
			Comments:      []model.Comment{},
			Verifications: []model.Verification{},
		}
		t.Features = append(t.Features, out)
		return nil
	})
	if err != nil {
		return model.Feature{}, err
	}
	return out, nil
}

// UpdateFeature changes name and description.
func (s *BoardService) UpdateFeature(teamId, featureId int64, name, description string) (model.Feature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Feature{}, ErrEmptyName
	}
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		f.Name = name
		f.Description = strings.TrimSpace(description)
		return nil
	})
}

// DeleteFeature removes a feature and renumbers the rest 1..n.
func (s *BoardService) DeleteFeature(teamId, featureId int64) (model.Team, error) {
	return s.editTeam(teamId, func(t *model.Team) error {
		i := indexOfFeature(t.Features, featureId)
		if i < 0 {
			return ErrFeatureNotFound
		}
		t.Features = slices.Delete(t.Features, i, i+1)
		t.Renumber()
		return nil
	})
}

// ReorderFeatures moves the feature at from to to and renumbers.
func (s *BoardService) ReorderFeatures(teamId int64, from, to int) (model.Team, error) {
	return s.editTeam(teamId, func(t *model.Team) error {
		features, err := move(t.Features, from, to)
		if err != nil {
			return err
		}
		t.Features = features
		t.Renumber()
		return nil
	})
}

// MoveFeature moves a feature to index to.
func (s *BoardService) MoveFeature(teamId, featureId int64, to int) (model.Team, error) {
	return s.editTeam(teamId, func(t *model.Team) error {
		from := indexOfFeature(t.Features, featureId)
		if from < 0 {
			return ErrFeatureNotFound
		}
		features, err := move(t.Features, from, to)
		if err != nil {
			return err
		}
		t.Features = features
		t.Renumber()
		return nil
	})
}

// SearchFeatures returns the team's features whose name, description, step
// descriptions or comments contain query, case-insensitively. An empty query
// returns every feature.
func (s *BoardService) SearchFeatures(teamId int64, query string) ([]model.Feature, error) {
	t, err := s.Team(teamId)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return t.Features, nil
	}

	out := make([]model.Feature, 0)
	for _, f := range t.Features {
		if featureMatches(f, q) {
			out = append(out, f)
		}
	}
	return out, nil
}

func featureMatches(f model.Feature, q string) bool {
	if strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Description), q) {
		return true
	}
	for _, st := range f.Steps {
		if strings.Contains(strings.ToLower(st.Description), q) {
			return true
		}
	}
	for _, c := range f.Comments {
		if strings.Contains(strings.ToLower(c.Text), q) {
			return true
		}
	}
	return false
}
