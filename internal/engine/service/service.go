package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/id"
	"github.com/go-arcade/qaboard/pkg/storage"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: service.go
 * @description: 团队树操作，所有修改都经过同步引擎
 */

// TeamStore is the part of the sync engine the service mutates through.
type TeamStore interface {
	Teams() []model.Team
	UpdateTeams(fn func([]model.Team) ([]model.Team, error)) ([]model.Team, error)
	AddGlobalVerification(ctx context.Context, entry model.GlobalVerification) syncer.Result
}

var _ TeamStore = (*syncer.Engine)(nil)

const defaultAuthor = "User"

// BoardService implements the team / feature / step operations.
type BoardService struct {
	store    TeamStore
	seq      *id.Sequence
	media    storage.Provider
	mediaCfg storage.Storage
	now      func() time.Time

	// 会话内的回收站，不持久化
	trashMu sync.Mutex
	trash   []model.Team
}

func NewBoardService(store TeamStore, media storage.Provider, mediaCfg storage.Storage) *BoardService {
	mediaCfg.SetDefaults()
	return &BoardService{
		store:    store,
		seq:      id.NewSequence(),
		media:    media,
		mediaCfg: mediaCfg,
		now:      time.Now,
	}
}

// Teams returns the current team list.
func (s *BoardService) Teams() []model.Team {
	return s.store.Teams()
}

// Team returns one team by id.
func (s *BoardService) Team(teamId int64) (model.Team, error) {
	teams := s.store.Teams()
	i := indexOfTeam(teams, teamId)
	if i < 0 {
		return model.Team{}, ErrTeamNotFound
	}
	return teams[i], nil
}

// editTeam runs fn against one team inside a single engine update.
func (s *BoardService) editTeam(teamId int64, fn func(t *model.Team) error) (model.Team, error) {
	var out model.Team
	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		i := indexOfTeam(teams, teamId)
		if i < 0 {
			return nil, ErrTeamNotFound
		}
		if err := fn(&teams[i]); err != nil {
			return nil, err
		}
		out = teams[i].Clone()
		return teams, nil
	})
	return out, err
}

// editFeature runs fn against one feature of a team.
func (s *BoardService) editFeature(teamId, featureId int64, fn func(t *model.Team, f *model.Feature) error) (model.Feature, error) {
	var out model.Feature
	_, err := s.editTeam(teamId, func(t *model.Team) error {
		i := indexOfFeature(t.Features, featureId)
		if i < 0 {
			return ErrFeatureNotFound
		}
		if err := fn(t, &t.Features[i]); err != nil {
			return err
		}
		out = t.Features[i].Clone()
		return nil
	})
	return out, err
}

func (s *BoardService) editStep(teamId, featureId, stepId int64, fn func(st *model.Step) error) (model.Feature, error) {
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		i := indexOfStep(f.Steps, stepId)
		if i < 0 {
			return ErrStepNotFound
		}
		return fn(&f.Steps[i])
	})
}

func (s *BoardService) nowMilli() int64 {
	return s.now().UnixMilli()
}

func indexOfTeam(teams []model.Team, teamId int64) int {
	return slices.IndexFunc(teams, func(t model.Team) bool { return t.Id == teamId })
}

func indexOfFeature(features []model.Feature, featureId int64) int {
	return slices.IndexFunc(features, func(f model.Feature) bool { return f.Id == featureId })
}

func indexOfStep(steps []model.Step, stepId int64) int {
	return slices.IndexFunc(steps, func(s model.Step) bool { return s.Id == stepId })
}

// move 把 from 位置的元素移动到 to
func move[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, ErrInvalidIndex
	}
	if from == to {
		return list, nil
	}
	item := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, item), nil
}
