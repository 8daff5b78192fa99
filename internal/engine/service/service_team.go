package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/log"
)

// ExportVersion 导出文件格式版本
const ExportVersion = "1.0"

// TeamExport is the envelope written by ExportTeam and read by ImportTeam.
type TeamExport struct {
	Version    string      `json:"version"`
	ExportDate string      `json:"exportDate"`
	Team       *model.Team `json:"team"`
}

// AddTeam appends a new empty team. An empty name becomes "Team N".
func (s *BoardService) AddTeam(name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	var out model.Team
	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		if name == "" {
			name = fmt.Sprintf("Team %d", len(teams)+1)
		}
		out = model.Team{
			Id:       s.seq.Next(),
			Name:     name,
			Order:    len(teams),
			Features: []model.Feature{},
		}
		return append(teams, out), nil
	})
	if err != nil {
		return model.Team{}, err
	}
	log.Infow("team created", "teamId", out.Id, "name", out.Name)
	return out, nil
}

func (s *BoardService) RenameTeam(teamId int64, name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, ErrEmptyName
	}
	return s.editTeam(teamId, func(t *model.Team) error {
		t.Name = name
		return nil
	})
}

// TogglePin flips the pinned flag.
func (s *BoardService) TogglePin(teamId int64) (model.Team, error) {
	return s.editTeam(teamId, func(t *model.Team) error {
		t.IsPinned = !t.IsPinned
		return nil
	})
}

// DeleteTeam removes a team and keeps it in the session trash. The next save
// cycle deletes it remotely.
func (s *BoardService) DeleteTeam(teamId int64) error {
	var removed model.Team
	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		i := indexOfTeam(teams, teamId)
		if i < 0 {
			return nil, ErrTeamNotFound
		}
		removed = teams[i]
		teams = slices.Delete(teams, i, i+1)
		renumberTeams(teams)
		return teams, nil
	})
	if err != nil {
		return err
	}

	s.trashMu.Lock()
	s.trash = append(s.trash, removed)
	s.trashMu.Unlock()
	log.Infow("team moved to trash", "teamId", teamId, "name", removed.Name)
	return nil
}

// Trash lists deleted teams of this session.
func (s *BoardService) Trash() []model.Team {
	s.trashMu.Lock()
	defer s.trashMu.Unlock()
	return model.CloneTeams(s.trash)
}

// RestoreTeam moves a team from the trash back to the end of the list.
func (s *BoardService) RestoreTeam(teamId int64) (model.Team, error) {
	s.trashMu.Lock()
	defer s.trashMu.Unlock()

	i := indexOfTeam(s.trash, teamId)
	if i < 0 {
		return model.Team{}, ErrNotInTrash
	}
	restored := s.trash[i].Clone()

	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		restored.Order = len(teams)
		return append(teams, restored), nil
	})
	if err != nil {
		return model.Team{}, err
	}
	s.trash = slices.Delete(s.trash, i, i+1)
	return restored, nil
}

// EmptyTrash drops every team in the trash.
func (s *BoardService) EmptyTrash() int {
	s.trashMu.Lock()
	defer s.trashMu.Unlock()
	n := len(s.trash)
	s.trash = nil
	return n
}

// ReorderTeams moves the team at from to to and rewrites every order.
func (s *BoardService) ReorderTeams(from, to int) ([]model.Team, error) {
	return s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		teams, err := move(teams, from, to)
		if err != nil {
			return nil, err
		}
		renumberTeams(teams)
		return teams, nil
	})
}

// DuplicateTeam appends a copy named "{name} (copy)". With withData the
// copy keeps step states, media and comments; otherwise steps are reset to
// pending and comments dropped.
func (s *BoardService) DuplicateTeam(teamId int64, withData bool) (model.Team, error) {
	var out model.Team
	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		i := indexOfTeam(teams, teamId)
		if i < 0 {
			return nil, ErrTeamNotFound
		}
		out = teams[i].Clone()
		out.Id = s.seq.Next()
		out.Name = teams[i].Name + " (copy)"
		out.Order = len(teams)
		out.IsPinned = false
		for fi := range out.Features {
			f := &out.Features[fi]
			f.Id = s.seq.Next()
			if withData {
				continue
			}
			f.Comments = []model.Comment{}
			for si := range f.Steps {
				f.Steps[si].Status = model.StatusPending
				f.Steps[si].LastVerified = nil
				f.Steps[si].Media = nil
			}
		}
		return append(teams, out), nil
	})
	if err != nil {
		return model.Team{}, err
	}
	return out, nil
}

// ExportTeam wraps a team in the export envelope.
func (s *BoardService) ExportTeam(teamId int64) (TeamExport, error) {
	t, err := s.Team(teamId)
	if err != nil {
		return TeamExport{}, err
	}
	return TeamExport{
		Version:    ExportVersion,
		ExportDate: s.now().UTC().Format(time.RFC3339Nano),
		Team:       &t,
	}, nil
}

// ImportTeam appends an exported team with fresh ids. A name already in use
// gets an "(imported HH:MM:SS)" suffix.
func (s *BoardService) ImportTeam(data TeamExport) (model.Team, error) {
	// 1. 校验导出文件
	if data.Version == "" || data.Team == nil {
		return model.Team{}, ErrInvalidImport
	}

	// 2. 重新分配 id
	imported := data.Team.Clone()
	imported.Normalize()
	imported.Id = s.seq.Next()
	for fi := range imported.Features {
		f := &imported.Features[fi]
		f.Id = s.seq.Next()
		for si := range f.Steps {
			f.Steps[si].Id = s.seq.Next()
		}
		for ci := range f.Comments {
			f.Comments[ci].Id = s.seq.Next()
		}
	}

	// 3. 处理重名并追加
	_, err := s.store.UpdateTeams(func(teams []model.Team) ([]model.Team, error) {
		if slices.ContainsFunc(teams, func(t model.Team) bool { return t.Name == imported.Name }) {
			imported.Name = fmt.Sprintf("%s (imported %s)", imported.Name, s.now().Format(time.TimeOnly))
		}
		imported.Order = len(teams)
		return append(teams, imported), nil
	})
	if err != nil {
		return model.Team{}, err
	}
	log.Infow("team imported", "teamId", imported.Id, "name", imported.Name, "features", len(imported.Features))
	return imported, nil
}

func renumberTeams(teams []model.Team) {
	for i := range teams {
		teams[i].Order = i
	}
}
