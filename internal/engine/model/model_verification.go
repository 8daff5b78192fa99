package model

import "slices"

// GlobalVerification 全局验证日志条目。字段是冗余存储的，团队或功能
// 被删除或改名后条目保持不变。
type GlobalVerification struct {
	Id            string       `json:"id"`
	Timestamp     int64        `json:"timestamp"` // epoch ms
	TeamId        int64        `json:"teamId"`
	TeamName      string       `json:"teamName"`
	FeatureId     int64        `json:"featureId"`
	FeatureNumber int          `json:"featureNumber"`
	FeatureName   string       `json:"featureName"`
	Steps         []LoggedStep `json:"steps"`
	Comments      []Comment    `json:"comments"`
}

// LoggedStep 日志中记录的步骤
type LoggedStep struct {
	Id          int64  `json:"id"`
	Number      int    `json:"number"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Clone returns a deep copy of g.
func (g GlobalVerification) Clone() GlobalVerification {
	out := g
	out.Steps = slices.Clone(g.Steps)
	out.Comments = slices.Clone(g.Comments)
	return out
}

// NewGlobalVerification 由功能的当前状态构造日志条目
func NewGlobalVerification(id string, ts int64, team Team, f Feature) GlobalVerification {
	steps := make([]LoggedStep, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = LoggedStep{
			Id:          s.Id,
			Number:      s.Number,
			Description: s.Description,
			Status:      s.Status,
		}
	}
	comments := slices.Clone(f.Comments)
	if comments == nil {
		comments = []Comment{}
	}
	return GlobalVerification{
		Id:            id,
		Timestamp:     ts,
		TeamId:        team.Id,
		TeamName:      team.Name,
		FeatureId:     f.Id,
		FeatureNumber: f.Number,
		FeatureName:   f.Name,
		Steps:         steps,
		Comments:      comments,
	}
}
