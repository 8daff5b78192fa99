package store

import (
	"context"
	"errors"
	"testing"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("quota exceeded")
}
func (brokenKV) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (brokenKV) Del(context.Context, ...string) error      { return errors.New("quota exceeded") }
func (brokenKV) Close() error                              { return nil }

func newMemoryStore(t *testing.T) (*LocalStore, cache.KV) {
	t.Helper()
	kv, err := NewKV(Conf{Backend: BackendMemory}, cache.Redis{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewLocalStore(kv), kv
}

func TestLocalStore_EmptyDefaults(t *testing.T) {
	s, _ := newMemoryStore(t)
	assert.Equal(t, []model.Team{}, s.GetTeams())
	assert.Equal(t, []model.GlobalVerification{}, s.GetVerifications())
}

func TestLocalStore_SaveAndLoad(t *testing.T) {
	s, _ := newMemoryStore(t)

	teams := []model.Team{{Id: 1, Name: "Alpha", Features: []model.Feature{{Id: 2, Number: 1, Name: "Login"}}}}
	s.SaveTeams(teams)

	got := s.GetTeams()
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Name)
	// 读出时补齐空数组
	assert.NotNil(t, got[0].Features[0].Steps)

	log := []model.GlobalVerification{{Id: "b", Timestamp: 2}, {Id: "a", Timestamp: 1}}
	s.SaveVerifications(log)
	assert.Equal(t, []string{"b", "a"}, ids(s.GetVerifications()))

	s.Clear()
	assert.Empty(t, s.GetTeams())
	assert.Empty(t, s.GetVerifications())
}

func TestLocalStore_CorruptValue(t *testing.T) {
	s, kv := newMemoryStore(t)
	require.NoError(t, kv.Set(context.Background(), TeamsKey, []byte("{not json")))
	assert.Equal(t, []model.Team{}, s.GetTeams())
}

func TestLocalStore_NeverFails(t *testing.T) {
	s := NewLocalStore(brokenKV{})
	assert.NotPanics(t, func() {
		s.SaveTeams([]model.Team{{Id: 1}})
		s.SaveVerifications(nil)
		s.Clear()
	})
	assert.Empty(t, s.GetTeams())
	assert.Empty(t, s.GetVerifications())
}

func TestNewKV_UnknownBackend(t *testing.T) {
	_, err := NewKV(Conf{Backend: "indexeddb"}, cache.Redis{})
	assert.Error(t, err)
}

func ids(entries []model.GlobalVerification) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Id
	}
	return out
}
