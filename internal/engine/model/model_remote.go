package model

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
)

// TeamRow 远端 teams 表
type TeamRow struct {
	Id        int64          `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name      string         `gorm:"column:name;size:255;not null"`
	Order     int            `gorm:"column:order;not null;default:0"`
	IsPinned  bool           `gorm:"column:is_pinned;not null;default:false"`
	Features  datatypes.JSON `gorm:"column:features"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (TeamRow) TableName() string {
	return "teams"
}

// VerificationRow 远端 global_verifications 表
type VerificationRow struct {
	Id            string         `gorm:"column:id;primaryKey;size:64"`
	Timestamp     int64          `gorm:"column:timestamp;index"`
	TeamId        int64          `gorm:"column:team_id;index"`
	TeamName      string         `gorm:"column:team_name;size:255"`
	FeatureId     int64          `gorm:"column:feature_id"`
	FeatureNumber int            `gorm:"column:feature_number"`
	FeatureName   string         `gorm:"column:feature_name;size:255"`
	Steps         datatypes.JSON `gorm:"column:steps"`
	Comments      datatypes.JSON `gorm:"column:comments"`
}

func (VerificationRow) TableName() string {
	return "global_verifications"
}

// ToRow converts a team to its remote row; updatedAt is stamped by the caller.
func (t Team) ToRow(updatedAt time.Time) (TeamRow, error) {
	features := t.Features
	if features == nil {
		features = []Feature{}
	}
	raw, err := sonic.Marshal(features)
	if err != nil {
		return TeamRow{}, fmt.Errorf("encode features of team %d: %w", t.Id, err)
	}
	return TeamRow{
		Id:        t.Id,
		Name:      t.Name,
		Order:     t.Order,
		IsPinned:  t.IsPinned,
		Features:  datatypes.JSON(raw),
		UpdatedAt: updatedAt,
	}, nil
}

// ToTeam decodes a remote row.
func (r TeamRow) ToTeam() (Team, error) {
	t := Team{Id: r.Id, Name: r.Name, Order: r.Order, IsPinned: r.IsPinned}
	if len(r.Features) > 0 {
		if err := sonic.Unmarshal(r.Features, &t.Features); err != nil {
			return Team{}, fmt.Errorf("decode features of team %d: %w", r.Id, err)
		}
	}
	t.Normalize()
	return t, nil
}

// ToRow converts a log entry to its remote row.
func (g GlobalVerification) ToRow() (VerificationRow, error) {
	steps := g.Steps
	if steps == nil {
		steps = []LoggedStep{}
	}
	comments := g.Comments
	if comments == nil {
		comments = []Comment{}
	}
	rawSteps, err := sonic.Marshal(steps)
	if err != nil {
		return VerificationRow{}, fmt.Errorf("encode steps of %s: %w", g.Id, err)
	}
	rawComments, err := sonic.Marshal(comments)
	if err != nil {
		return VerificationRow{}, fmt.Errorf("encode comments of %s: %w", g.Id, err)
	}
	return VerificationRow{
		Id:            g.Id,
		Timestamp:     g.Timestamp,
		TeamId:        g.TeamId,
		TeamName:      g.TeamName,
		FeatureId:     g.FeatureId,
		FeatureNumber: g.FeatureNumber,
		FeatureName:   g.FeatureName,
		Steps:         datatypes.JSON(rawSteps),
		Comments:      datatypes.JSON(rawComments),
	}, nil
}

// ToVerification decodes a remote row.
func (r VerificationRow) ToVerification() (GlobalVerification, error) {
	g := GlobalVerification{
		Id:            r.Id,
		Timestamp:     r.Timestamp,
		TeamId:        r.TeamId,
		TeamName:      r.TeamName,
		FeatureId:     r.FeatureId,
		FeatureNumber: r.FeatureNumber,
		FeatureName:   r.FeatureName,
		Steps:         []LoggedStep{},
		Comments:      []Comment{},
	}
	if len(r.Steps) > 0 {
		if err := sonic.Unmarshal(r.Steps, &g.Steps); err != nil {
			return GlobalVerification{}, fmt.Errorf("decode steps of %s: %w", r.Id, err)
		}
	}
	if len(r.Comments) > 0 {
		if err := sonic.Unmarshal(r.Comments, &g.Comments); err != nil {
			return GlobalVerification{}, fmt.Errorf("decode comments of %s: %w", r.Id, err)
		}
	}
	return g, nil
}
