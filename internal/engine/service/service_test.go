package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	teams   []model.Team
	log     []model.GlobalVerification
	updates int
}

func (f *fakeStore) Teams() []model.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.CloneTeams(f.teams)
}

func (f *fakeStore) UpdateTeams(fn func([]model.Team) ([]model.Team, error)) ([]model.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(model.CloneTeams(f.teams))
	if err != nil {
		return nil, err
	}
	f.teams = next
	f.updates++
	return model.CloneTeams(next), nil
}

func (f *fakeStore) AddGlobalVerification(_ context.Context, e model.GlobalVerification) syncer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append([]model.GlobalVerification{e}, f.log...)
	return syncer.Result{Id: e.Id, Outcome: syncer.OutcomeRemote}
}

type memMedia struct {
	objects map[string][]byte
	deleted []string
}

func (m *memMedia) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := "step-media/" + name
	m.objects[key] = b
	return key, nil
}

func (m *memMedia) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (m *memMedia) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*BoardService, *fakeStore, *memMedia) {
	t.Helper()
	st := &fakeStore{teams: []model.Team{}}
	media := &memMedia{objects: map[string][]byte{}}
	s := NewBoardService(st, media, storage.Storage{})
	s.now = func() time.Time { return fixedNow }
	return s, st, media
}

// seedTeam 创建一个带两个功能、每个功能两个步骤的团队
func seedTeam(t *testing.T, s *BoardService) (model.Team, model.Feature, model.Feature) {
	t.Helper()
	team, err := s.AddTeam("Alpha")
	require.NoError(t, err)
	f1, err := s.AddFeature(team.Id, "Login", "sign in flow")
	require.NoError(t, err)
	f2, err := s.AddFeature(team.Id, "Logout", "")
	require.NoError(t, err)
	for _, f := range []model.Feature{f1, f2} {
		_, err = s.AddStep(team.Id, f.Id, "open page")
		require.NoError(t, err)
		_, err = s.AddStep(team.Id, f.Id, "click button")
		require.NoError(t, err)
	}
	team, err = s.Team(team.Id)
	require.NoError(t, err)
	return team, team.Features[0], team.Features[1]
}

func TestAddTeam_DefaultName(t *testing.T) {
	s, _, _ := newTestService(t)
	a, err := s.AddTeam("  ")
	require.NoError(t, err)
	assert.Equal(t, "Team 1", a.Name)
	b, err := s.AddTeam("QA")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Order)
	assert.Greater(t, b.Id, a.Id)
}

func TestDeleteAndRestoreTeam(t *testing.T) {
	s, _, _ := newTestService(t)
	a, _ := s.AddTeam("A")
	b, _ := s.AddTeam("B")
	c, _ := s.AddTeam("C")

	require.NoError(t, s.DeleteTeam(a.Id))
	teams := s.Teams()
	require.Len(t, teams, 2)
	assert.Equal(t, []int{0, 1}, []int{teams[0].Order, teams[1].Order})
	assert.Equal(t, b.Id, teams[0].Id)
	assert.Len(t, s.Trash(), 1)

	restored, err := s.RestoreTeam(a.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Order)
	assert.Empty(t, s.Trash())
	assert.Equal(t, []int64{b.Id, c.Id, a.Id}, teamIds(s.Teams()))

	_, err = s.RestoreTeam(a.Id)
	assert.ErrorIs(t, err, ErrNotInTrash)
	assert.ErrorIs(t, s.DeleteTeam(999), ErrTeamNotFound)

	require.NoError(t, s.DeleteTeam(c.Id))
	assert.Equal(t, 1, s.EmptyTrash())
	assert.Empty(t, s.Trash())
}

func TestReorderTeams(t *testing.T) {
	s, _, _ := newTestService(t)
	a, _ := s.AddTeam("A")
	b, _ := s.AddTeam("B")
	c, _ := s.AddTeam("C")

	teams, err := s.ReorderTeams(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.Id, c.Id, a.Id}, teamIds(teams))
	for i, tm := range teams {
		assert.Equal(t, i, tm.Order)
	}

	_, err = s.ReorderTeams(0, 5)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestDuplicateTeam(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, _ := seedTeam(t, s)
	_, err := s.VerifyStep(team.Id, f1.Id, f1.Steps[0].Id, model.StatusWorking)
	require.NoError(t, err)
	_, err = s.AddComment(team.Id, f1.Id, "looks good", "")
	require.NoError(t, err)

	full, err := s.DuplicateTeam(team.Id, true)
	require.NoError(t, err)
	assert.Equal(t, "Alpha (copy)", full.Name)
	assert.NotEqual(t, f1.Id, full.Features[0].Id)
	assert.Equal(t, model.StatusWorking, full.Features[0].Steps[0].Status)
	assert.Len(t, full.Features[0].Comments, 1)

	blank, err := s.DuplicateTeam(team.Id, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, blank.Features[0].Steps[0].Status)
	assert.Nil(t, blank.Features[0].Steps[0].LastVerified)
	assert.Empty(t, blank.Features[0].Comments)
	assert.Equal(t, 2, blank.Order)
}

func TestExportImportTeam(t *testing.T) {
	s, _, _ := newTestService(t)
	team, _, _ := seedTeam(t, s)

	exp, err := s.ExportTeam(team.Id)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, exp.Version)

	imported, err := s.ImportTeam(exp)
	require.NoError(t, err)
	assert.Equal(t, "Alpha (imported 10:30:00)", imported.Name)
	assert.NotEqual(t, team.Id, imported.Id)
	assert.NotEqual(t, team.Features[0].Steps[0].Id, imported.Features[0].Steps[0].Id)
	assert.Len(t, s.Teams(), 2)

	_, err = s.ImportTeam(TeamExport{Version: "1.0"})
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestFeatures_NumberingStaysDense(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, f2 := seedTeam(t, s)
	f3, err := s.AddFeature(team.Id, "Profile", "")
	require.NoError(t, err)
	assert.Equal(t, 3, f3.Number)

	got, err := s.DeleteFeature(team.Id, f1.Id)
	require.NoError(t, err)
	require.Len(t, got.Features, 2)
	assert.Equal(t, f2.Id, got.Features[0].Id)
	assert.Equal(t, []int{1, 2}, []int{got.Features[0].Number, got.Features[1].Number})

	got, err = s.MoveFeature(team.Id, f3.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, f3.Id, got.Features[0].Id)
	assert.Equal(t, 1, got.Features[0].Number)

	got, err = s.ReorderFeatures(team.Id, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, f2.Id, got.Features[0].Id)

	_, err = s.AddFeature(team.Id, " ", "")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.UpdateFeature(team.Id, 12345, "x", "")
	assert.ErrorIs(t, err, ErrFeatureNotFound)
}

func TestSteps(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, _ := seedTeam(t, s)

	f, err := s.AddStep(team.Id, f1.Id, "  submit form  ")
	require.NoError(t, err)
	require.Len(t, f.Steps, 3)
	last := f.Steps[2]
	assert.Equal(t, "submit form", last.Description)
	assert.Equal(t, 3, last.Number)
	assert.Equal(t, 2, last.Order)
	assert.Equal(t, model.StatusPending, last.Status)

	_, err = s.AddStep(team.Id, f1.Id, "   ")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	f, err = s.RemoveStep(team.Id, f1.Id, f.Steps[0].Id)
	require.NoError(t, err)
	require.Len(t, f.Steps, 2)
	for i, st := range f.Steps {
		assert.Equal(t, i+1, st.Number)
		assert.Equal(t, i, st.Order)
	}

	f, err = s.MoveStep(team.Id, f1.Id, last.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, last.Id, f.Steps[0].Id)
	assert.Equal(t, 1, f.Steps[0].Number)

	f, err = s.UpdateStep(team.Id, f1.Id, last.Id, "submit")
	require.NoError(t, err)
	assert.Equal(t, "submit", f.Steps[0].Description)
}

func TestVerifyStep_Toggle(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, _ := seedTeam(t, s)
	stepId := f1.Steps[0].Id

	f, err := s.VerifyStep(team.Id, f1.Id, stepId, model.StatusWorking)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWorking, f.Steps[0].Status)
	require.NotNil(t, f.Steps[0].LastVerified)
	assert.Equal(t, fixedNow.UnixMilli(), *f.Steps[0].LastVerified)

	// 同一状态再次提交回到 pending
	f, err = s.VerifyStep(team.Id, f1.Id, stepId, model.StatusWorking)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, f.Steps[0].Status)
	assert.Nil(t, f.Steps[0].LastVerified)

	f, err = s.VerifyStep(team.Id, f1.Id, stepId, model.StatusNotWorking)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotWorking, f.Steps[0].Status)

	_, err = s.VerifyStep(team.Id, f1.Id, stepId, "maybe")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.VerifyStep(team.Id, f1.Id, 777, model.StatusWorking)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestComments(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, _ := seedTeam(t, s)

	f, err := s.AddComment(team.Id, f1.Id, "  broken on safari ", "")
	require.NoError(t, err)
	require.Len(t, f.Comments, 1)
	c := f.Comments[0]
	assert.Equal(t, "broken on safari", c.Text)
	assert.Equal(t, "User", c.Author)
	assert.Equal(t, fixedNow.UnixMilli(), c.Timestamp)

	f, err = s.UpdateComment(team.Id, f1.Id, c.Id, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", f.Comments[0].Text)

	_, err = s.UpdateComment(team.Id, f1.Id, c.Id, "")
	assert.ErrorIs(t, err, ErrEmptyComment)

	f, err = s.DeleteComment(team.Id, f1.Id, c.Id)
	require.NoError(t, err)
	assert.Empty(t, f.Comments)
	_, err = s.DeleteComment(team.Id, f1.Id, c.Id)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestSearchFeatures(t *testing.T) {
	s, _, _ := newTestService(t)
	team, f1, f2 := seedTeam(t, s)
	_, err := s.AddComment(team.Id, f2.Id, "Crash on Android", "ana")
	require.NoError(t, err)

	got, err := s.SearchFeatures(team.Id, "SIGN IN")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f1.Id, got[0].Id)

	got, err = s.SearchFeatures(team.Id, "android")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f2.Id, got[0].Id)

	got, err = s.SearchFeatures(team.Id, "click")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.SearchFeatures(team.Id, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUploadAndDetachMedia(t *testing.T) {
	s, _, media := newTestService(t)
	team, f1, _ := seedTeam(t, s)
	stepId := f1.Steps[0].Id

	m, err := s.UploadMedia(context.Background(), team.Id, f1.Id, stepId, Upload{
		FileName:    "shot.png",
		ContentType: "image/png",
		Size:        3,
		Body:        bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MediaPhoto, m.Type)
	assert.Contains(t, m.Url, "/api/v1/media/step-media/")
	assert.Contains(t, m.Url, ".png")
	require.Len(t, media.objects, 1)

	got, err := s.Team(team.Id)
	require.NoError(t, err)
	require.Len(t, got.Features[0].Steps[0].Media, 1)

	_, err = s.DetachMedia(context.Background(), team.Id, f1.Id, stepId, m.Id)
	require.NoError(t, err)
	assert.Len(t, media.deleted, 1)
	assert.Empty(t, media.objects)

	_, err = s.DetachMedia(context.Background(), team.Id, f1.Id, stepId, m.Id)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestUploadMedia_Validation(t *testing.T) {
	s, _, media := newTestService(t)
	team, f1, _ := seedTeam(t, s)
	stepId := f1.Steps[0].Id

	_, err := s.UploadMedia(context.Background(), team.Id, f1.Id, stepId, Upload{
		FileName: "notes.txt", ContentType: "text/plain", Size: 1, Body: bytes.NewReader([]byte("x")),
	})
	assert.ErrorIs(t, err, ErrInvalidMedia)

	_, err = s.UploadMedia(context.Background(), team.Id, f1.Id, stepId, Upload{
		FileName: "big.mp4", ContentType: "video/mp4", Size: MaxVideoSize + 1, Body: bytes.NewReader(nil),
	})
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	_, err = s.UploadMedia(context.Background(), team.Id, f1.Id, 4242, Upload{
		FileName: "a.png", ContentType: "image/png", Size: 1, Body: bytes.NewReader([]byte("x")),
	})
	assert.ErrorIs(t, err, ErrStepNotFound)
	assert.Empty(t, media.objects)
}

func TestResetFeature(t *testing.T) {
	s, st, _ := newTestService(t)
	team, f1, f2 := seedTeam(t, s)
	_, err := s.VerifyStep(team.Id, f1.Id, f1.Steps[0].Id, model.StatusWorking)
	require.NoError(t, err)
	_, err = s.VerifyStep(team.Id, f2.Id, f2.Steps[0].Id, model.StatusNotWorking)
	require.NoError(t, err)
	_, err = s.AddComment(team.Id, f1.Id, "ok", "")
	require.NoError(t, err)

	res, err := s.ResetFeature(context.Background(), team.Id, f1.Id)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Synced())

	require.Len(t, st.log, 1)
	entry := st.log[0]
	assert.Equal(t, "Alpha", entry.TeamName)
	assert.Equal(t, f1.Id, entry.FeatureId)
	assert.Equal(t, model.StatusWorking, entry.Steps[0].Status)
	assert.Len(t, entry.Comments, 1)

	reset := res.Team.Features[0]
	for _, step := range reset.Steps {
		assert.Equal(t, model.StatusPending, step.Status)
		assert.Nil(t, step.LastVerified)
	}
	assert.Empty(t, reset.Comments)
	require.Len(t, reset.Verifications, 1)
	assert.Equal(t, model.StatusWorking, reset.Verifications[0].Steps[0].Status)

	// 其它功能不受影响
	assert.Equal(t, model.StatusNotWorking, res.Team.Features[1].Steps[0].Status)

	_, err = s.ResetFeature(context.Background(), team.Id, 999)
	assert.ErrorIs(t, err, ErrFeatureNotFound)
}

func TestResetTeam_SharedTimestamp(t *testing.T) {
	s, st, _ := newTestService(t)
	team, _, _ := seedTeam(t, s)

	res, err := s.ResetTeam(context.Background(), team.Id)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	require.Len(t, st.log, 2)
	assert.Equal(t, st.log[0].Timestamp, st.log[1].Timestamp)
	assert.NotEqual(t, st.log[0].Id, st.log[1].Id)

	empty, err := s.AddTeam("Empty")
	require.NoError(t, err)
	res, err = s.ResetTeam(context.Background(), empty.Id)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestFailedEditDoesNotSave(t *testing.T) {
	s, st, _ := newTestService(t)
	team, _, _ := seedTeam(t, s)
	before := st.updates
	_, err := s.RenameTeam(team.Id, "")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.AddStep(team.Id, 555, "x")
	assert.ErrorIs(t, err, ErrFeatureNotFound)
	assert.Equal(t, before, st.updates)
}

func teamIds(teams []model.Team) []int64 {
	out := make([]int64, len(teams))
	for i, t := range teams {
		out[i] = t.Id
	}
	return out
}
