package history

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
)

// Query 日志筛选条件，零值表示不限制
type Query struct {
	TeamId int64
	Start  time.Time
	End    time.Time
	Search string
	Status model.Status
}

// Filter returns the log entries matching q, sorted newest first, then by
// team id and feature number. A status narrows each entry's steps; entries
// left without steps are dropped.
func Filter(entries []model.GlobalVerification, q Query, opts Options) []model.GlobalVerification {
	loc := opts.loc()
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.GlobalVerification, 0)
	for _, e := range entries {
		if q.TeamId != 0 && e.TeamId != q.TeamId {
			continue
		}
		if !inRange(e.Timestamp, q.Start, q.End, loc) {
			continue
		}
		if search != "" && !matches(e, search) {
			continue
		}

		c := e.Clone()
		if q.Status != "" {
			c.Steps = slices.DeleteFunc(c.Steps, func(s model.LoggedStep) bool {
				return s.Status != q.Status
			})
		}
		if len(c.Steps) == 0 {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if a.TeamId != b.TeamId {
			return a.TeamId < b.TeamId
		}
		return a.FeatureNumber < b.FeatureNumber
	})
	return out
}

func inRange(ts int64, start, end time.Time, loc *time.Location) bool {
	if !start.IsZero() && ts < DayStart(start, loc).UnixMilli() {
		return false
	}
	if !end.IsZero() && ts > DayEnd(end, loc).UnixMilli() {
		return false
	}
	return true
}

func matches(e model.GlobalVerification, search string) bool {
	if strings.Contains(strings.ToLower(e.TeamName), search) ||
		strings.Contains(strings.ToLower(e.FeatureName), search) {
		return true
	}
	for _, s := range e.Steps {
		if strings.Contains(strings.ToLower(s.Description), search) {
			return true
		}
	}
	for _, c := range e.Comments {
		if strings.Contains(strings.ToLower(c.Text), search) {
			return true
		}
	}
	return false
}

// HasPendingSteps reports whether any entry in range still has a pending
// step. With neither bound set it reports false.
func HasPendingSteps(entries []model.GlobalVerification, start, end time.Time, opts Options) bool {
	if start.IsZero() && end.IsZero() {
		return false
	}
	loc := opts.loc()
	for _, e := range entries {
		if !inRange(e.Timestamp, start, end, loc) {
			continue
		}
		for _, s := range e.Steps {
			if s.Status == model.StatusPending {
				return true
			}
		}
	}
	return false
}

// Stats 日志概览
type Stats struct {
	Total int `json:"total"`
	Dates int `json:"dates"` // 不同的 UTC 日期数
	Teams int `json:"teams"`
}

func ComputeStats(entries []model.GlobalVerification) Stats {
	dates := make(map[string]struct{})
	teams := make(map[int64]struct{})
	for _, e := range entries {
		dates[time.UnixMilli(e.Timestamp).UTC().Format(time.DateOnly)] = struct{}{}
		teams[e.TeamId] = struct{}{}
	}
	return Stats{Total: len(entries), Dates: len(dates), Teams: len(teams)}
}

// AvailableDates returns the distinct days (midnight in the configured
// location) that have entries, newest first.
func AvailableDates(entries []model.GlobalVerification, opts Options) []time.Time {
	loc := opts.loc()
	seen := make(map[int64]struct{})
	out := make([]time.Time, 0)
	for _, e := range entries {
		day := DayStart(time.UnixMilli(e.Timestamp), loc)
		if _, ok := seen[day.UnixMilli()]; ok {
			continue
		}
		seen[day.UnixMilli()] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// TeamRef 日志中出现过的团队
type TeamRef struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

// TeamOption is a team selectable for comparison.
type TeamOption struct {
	TeamRef
	HasVerifications bool `json:"hasVerifications"`
}

// TeamOptions lists every team in the log, in log order, flagging whether it
// has entries between the days of start and end. The name is the one from
// the team's newest entry.
func TeamOptions(entries []model.GlobalVerification, start, end time.Time, opts Options) []TeamOption {
	loc := opts.loc()
	index := make(map[int64]int)
	newest := make(map[int64]int64)
	out := make([]TeamOption, 0)
	for _, e := range entries {
		i, ok := index[e.TeamId]
		if !ok {
			i = len(out)
			index[e.TeamId] = i
			out = append(out, TeamOption{TeamRef: TeamRef{Id: e.TeamId, Name: e.TeamName}})
			newest[e.TeamId] = e.Timestamp
		} else if e.Timestamp > newest[e.TeamId] {
			out[i].Name = e.TeamName
			newest[e.TeamId] = e.Timestamp
		}
		if !start.IsZero() && !end.IsZero() && inRange(e.Timestamp, start, end, loc) {
			out[i].HasVerifications = true
		}
	}
	return out
}

// LatestTeams returns up to n distinct teams ordered by their newest entry.
// The comparison view preselects the first two.
func LatestTeams(entries []model.GlobalVerification, n int) []TeamRef {
	if n <= 0 {
		return nil
	}
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp > sorted[j].Timestamp })

	out := make([]TeamRef, 0, n)
	seen := make(map[int64]struct{})
	for _, e := range sorted {
		if _, ok := seen[e.TeamId]; ok {
			continue
		}
		seen[e.TeamId] = struct{}{}
		out = append(out, TeamRef{Id: e.TeamId, Name: e.TeamName})
		if len(out) == n {
			break
		}
	}
	return out
}
