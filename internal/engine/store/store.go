package store

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/cache"
	"github.com/go-arcade/qaboard/pkg/log"
)

const (
	TeamsKey         = "qa_teams"
	VerificationsKey = "qa_verifications"

	opTimeout = 5 * time.Second
)

// LocalStore is the best-effort local persistence tier. It never returns an
// error: failures are logged and reads degrade to an empty list.
type LocalStore struct {
	kv cache.KV
}

func NewLocalStore(kv cache.KV) *LocalStore {
	return &LocalStore{kv: kv}
}

// SaveTeams overwrites the stored team list.
func (s *LocalStore) SaveTeams(teams []model.Team) {
	if teams == nil {
		teams = []model.Team{}
	}
	s.save(TeamsKey, teams)
}

// GetTeams returns the stored team list, or an empty list.
func (s *LocalStore) GetTeams() []model.Team {
	teams := []model.Team{}
	if !s.load(TeamsKey, &teams) {
		return []model.Team{}
	}
	for i := range teams {
		teams[i].Normalize()
	}
	return teams
}

// SaveVerifications overwrites the stored verification log.
func (s *LocalStore) SaveVerifications(entries []model.GlobalVerification) {
	if entries == nil {
		entries = []model.GlobalVerification{}
	}
	s.save(VerificationsKey, entries)
}

// GetVerifications returns the stored verification log, or an empty list.
func (s *LocalStore) GetVerifications() []model.GlobalVerification {
	entries := []model.GlobalVerification{}
	if !s.load(VerificationsKey, &entries) {
		return []model.GlobalVerification{}
	}
	return entries
}

// Clear removes both keys.
func (s *LocalStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Del(ctx, TeamsKey, VerificationsKey); err != nil {
		log.Errorw("failed to clear local store", "error", err)
	}
}

func (s *LocalStore) save(key string, v any) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		log.Errorw("failed to encode local value", "key", key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, key, raw); err != nil {
		log.Errorw("failed to save local value", "key", key, "error", err)
	}
}

func (s *LocalStore) load(key string, v any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Errorw("failed to read local value", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		log.Errorw("failed to decode local value", "key", key, "error", err)
		return false
	}
	return true
}
