// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
)

// DayStart returns 00:00:00.000 of t's day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayEnd returns 23:59:59.999 of t's day in loc.
func DayEnd(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// dayBounds 返回闭区间 [start, end] 的毫秒时间戳
func dayBounds(start, end time.Time, loc *time.Location) (int64, int64) {
	return DayStart(start, loc).UnixMilli(), DayEnd(end, loc).UnixMilli()
}

// Reconstruct rebuilds what team teamId looked like between the days of
// start and end from the verification log alone. For every feature number
// the newest entry in range is authoritative for name, steps and comments;
// among entries sharing that timestamp the first in log order wins. The
// feature id is taken from the first matching entry in log order.
// It reports false when no entry matches. entries is never modified.
func Reconstruct(entries []model.GlobalVerification, teamId int64, teamName string, start, end time.Time, opts Options) (*model.Team, bool) {
	loc := opts.loc()
	from, to := dayBounds(start, end, loc)

	latest := make(map[int]*model.GlobalVerification)
	ids := make(map[int]int64)
	for i := range entries {
		e := &entries[i]
		if e.TeamId != teamId || e.Timestamp < from || e.Timestamp > to {
			continue
		}
		if _, ok := ids[e.FeatureNumber]; !ok {
			ids[e.FeatureNumber] = e.FeatureId
		}
		// 严格大于：相同时间戳保留先出现的条目
		if cur, ok := latest[e.FeatureNumber]; !ok || e.Timestamp > cur.Timestamp {
			latest[e.FeatureNumber] = e
		}
	}
	if len(latest) == 0 {
		return nil, false
	}

	numbers := make([]int, 0, len(latest))
	for n := range latest {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	features := make([]model.Feature, 0, len(numbers))
	for _, n := range numbers {
		f := rebuildFeature(*latest[n])
		f.Id = ids[n]
		features = append(features, f)
	}

	return &model.Team{
		Id:       teamId,
		Name:     fmt.Sprintf("%s (%s)", teamName, rangeLabel(start, end, loc, opts.layout())),
		Features: features,
	}, true
}

func rebuildFeature(e model.GlobalVerification) model.Feature {
	byNumber := make(map[int]model.LoggedStep, len(e.Steps))
	for _, s := range e.Steps {
		byNumber[s.Number] = s
	}
	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	steps := make([]model.Step, 0, len(numbers))
	for _, n := range numbers {
		s := byNumber[n]
		status := s.Status
		if status == "" {
			status = model.StatusPending
		}
		steps = append(steps, model.Step{
			Id:          s.Id,
			Number:      s.Number,
			Description: s.Description,
			Order:       s.Number - 1,
			Status:      status,
		})
	}

	comments := slices.Clone(e.Comments)
	if comments == nil {
		comments = []model.Comment{}
	}
	return model.Feature{
		Id:            e.FeatureId,
		Number:        e.FeatureNumber,
		Name:          e.FeatureName,
		Steps:         steps,
		Comments:      comments,
		Verifications: []model.Verification{},
	}
}

func rangeLabel(start, end time.Time, loc *time.Location, layout string) string {
	s := start.In(loc).Format(layout)
	e := end.In(loc).Format(layout)
	if s == e {
		return s
	}
	return s + " - " + e
}
