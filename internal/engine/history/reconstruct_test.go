package history

import (
	"testing"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utc = Options{Location: time.UTC, DateLayout: DefaultDateLayout}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func ms(t time.Time) int64 { return t.UnixMilli() }

func entry(id string, ts int64, teamId int64, featureNumber int, name string, steps ...model.LoggedStep) model.GlobalVerification {
	return model.GlobalVerification{
		Id:            id,
		Timestamp:     ts,
		TeamId:        teamId,
		TeamName:      "Team",
		FeatureId:     int64(featureNumber) * 100,
		FeatureNumber: featureNumber,
		FeatureName:   name,
		Steps:         steps,
		Comments:      []model.Comment{},
	}
}

func step(number int, status model.Status) model.LoggedStep {
	return model.LoggedStep{Id: int64(number), Number: number, Description: "step", Status: status}
}

func TestReconstruct_NewestEntryWins(t *testing.T) {
	base := ms(day(2024, 3, 5, 10))
	log := []model.GlobalVerification{
		entry("old", base+100, 1, 1, "Login v1", step(1, model.StatusWorking)),
		entry("new", base+200, 1, 1, "Login v2", step(1, model.StatusNotWorking), step(2, model.StatusPending)),
	}
	log[1].Comments = []model.Comment{{Id: 1, Text: "broken"}}

	team, ok := Reconstruct(log, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	require.True(t, ok)
	require.Len(t, team.Features, 1)

	f := team.Features[0]
	assert.Equal(t, "Login v2", f.Name)
	require.Len(t, f.Steps, 2)
	assert.Equal(t, model.StatusNotWorking, f.Steps[0].Status)
	assert.Equal(t, 0, f.Steps[0].Order)
	assert.Equal(t, 1, f.Steps[1].Order)
	assert.Equal(t, []model.Comment{{Id: 1, Text: "broken"}}, f.Comments)
	assert.Equal(t, "Alpha (3/5/2024)", team.Name)
}

func TestReconstruct_FeatureIdFromFirstEntry(t *testing.T) {
	base := ms(day(2024, 3, 5, 10))
	// newest first, as the log is stored; the feature was recreated in between
	log := []model.GlobalVerification{
		entry("new", base+200, 1, 1, "Login v2", step(1, model.StatusWorking)),
		entry("old", base+100, 1, 1, "Login v1", step(1, model.StatusPending)),
	}
	log[0].FeatureId = 777
	log[1].FeatureId = 555

	team, ok := Reconstruct(log, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	require.True(t, ok)
	require.Len(t, team.Features, 1)
	assert.Equal(t, int64(777), team.Features[0].Id)
	assert.Equal(t, "Login v2", team.Features[0].Name)

	// the log order decides, not the timestamps
	log[0], log[1] = log[1], log[0]
	team, ok = Reconstruct(log, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	require.True(t, ok)
	assert.Equal(t, int64(555), team.Features[0].Id)
	assert.Equal(t, "Login v2", team.Features[0].Name)
}

func TestReconstruct_GroupsByFeatureNumber(t *testing.T) {
	base := ms(day(2024, 3, 5, 10))
	log := []model.GlobalVerification{
		entry("c", base+3, 1, 3, "Third"),
		entry("a", base+1, 1, 1, "First", step(2, model.StatusWorking), step(1, model.StatusPending)),
		entry("other-team", base+2, 2, 2, "Elsewhere"),
	}

	team, ok := Reconstruct(log, 1, "Alpha", day(2024, 3, 1, 0), day(2024, 3, 9, 0), utc)
	require.True(t, ok)
	require.Len(t, team.Features, 2)
	assert.Equal(t, 1, team.Features[0].Number)
	assert.Equal(t, 3, team.Features[1].Number)

	// steps sorted by number
	assert.Equal(t, 1, team.Features[0].Steps[0].Number)
	assert.Equal(t, 2, team.Features[0].Steps[1].Number)
	// zero steps is an empty list, not an error
	assert.NotNil(t, team.Features[1].Steps)
	assert.Empty(t, team.Features[1].Steps)

	assert.Equal(t, "Alpha (3/1/2024 - 3/9/2024)", team.Name)
}

func TestReconstruct_TieBreakIsDeterministic(t *testing.T) {
	ts := ms(day(2024, 3, 5, 10))
	log := []model.GlobalVerification{
		entry("first", ts, 1, 1, "First seen"),
		entry("second", ts, 1, 1, "Second seen"),
	}
	for i := 0; i < 20; i++ {
		team, ok := Reconstruct(log, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
		require.True(t, ok)
		assert.Equal(t, "First seen", team.Features[0].Name)
	}
}

func TestReconstruct_DayBoundsAreInclusive(t *testing.T) {
	start := day(2024, 3, 5, 0)
	end := day(2024, 3, 6, 0)
	log := []model.GlobalVerification{
		entry("before", ms(start)-1, 1, 1, "before"),
		entry("at-start", ms(start), 1, 2, "start"),
		entry("at-end", ms(DayEnd(end, time.UTC)), 1, 3, "end"),
		entry("after", ms(DayEnd(end, time.UTC))+1, 1, 4, "after"),
	}

	// pass mid-day times: bounds are normalized to whole days
	team, ok := Reconstruct(log, 1, "Alpha", start.Add(15*time.Hour), end.Add(3*time.Hour), utc)
	require.True(t, ok)
	require.Len(t, team.Features, 2)
	assert.Equal(t, "start", team.Features[0].Name)
	assert.Equal(t, "end", team.Features[1].Name)
}

func TestReconstruct_NoData(t *testing.T) {
	log := []model.GlobalVerification{entry("a", ms(day(2024, 3, 5, 10)), 1, 1, "x")}

	team, ok := Reconstruct(log, 1, "Alpha", day(2024, 4, 1, 0), day(2024, 4, 2, 0), utc)
	assert.False(t, ok)
	assert.Nil(t, team)

	team, ok = Reconstruct(log, 2, "Beta", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	assert.False(t, ok)
	assert.Nil(t, team)

	_, ok = Reconstruct(nil, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	assert.False(t, ok)
}

func TestReconstruct_DoesNotMutateInput(t *testing.T) {
	log := []model.GlobalVerification{
		entry("a", ms(day(2024, 3, 5, 10)), 1, 1, "x", step(2, model.StatusWorking), step(1, model.StatusPending)),
	}
	log[0].Comments = []model.Comment{{Id: 1, Text: "keep"}}
	before := log[0].Clone()

	team, ok := Reconstruct(log, 1, "Alpha", day(2024, 3, 5, 0), day(2024, 3, 5, 0), utc)
	require.True(t, ok)
	team.Features[0].Comments[0].Text = "changed"
	team.Features[0].Steps[0].Description = "changed"

	assert.Equal(t, before, log[0])
}

func TestReconstruct_LocationShiftsDays(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-03-05 20:00 UTC is already 2024-03-06 in Tokyo
	log := []model.GlobalVerification{entry("a", ms(day(2024, 3, 5, 20)), 1, 1, "x")}
	opts := Options{Location: tokyo, DateLayout: "2006-01-02"}

	_, ok := Reconstruct(log, 1, "Alpha", time.Date(2024, 3, 5, 12, 0, 0, 0, tokyo), time.Date(2024, 3, 5, 12, 0, 0, 0, tokyo), opts)
	assert.False(t, ok)

	team, ok := Reconstruct(log, 1, "Alpha", time.Date(2024, 3, 6, 0, 0, 0, 0, tokyo), time.Date(2024, 3, 6, 0, 0, 0, 0, tokyo), opts)
	require.True(t, ok)
	assert.Equal(t, "Alpha (2024-03-06)", team.Name)
}

func TestConfOptions(t *testing.T) {
	opts, err := Conf{}.Options()
	require.NoError(t, err)
	assert.Equal(t, time.Local, opts.Location)
	assert.Equal(t, DefaultDateLayout, opts.DateLayout)

	_, err = Conf{Location: "Nowhere/Invalid"}.Options()
	assert.Error(t, err)
}
