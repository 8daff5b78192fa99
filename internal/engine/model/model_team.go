package model

import "slices"

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: model_team.go
 * @description: 团队 / 功能 / 步骤树
 */

// Status 步骤验证状态
type Status string

const (
	StatusWorking    Status = "working"
	StatusNotWorking Status = "not_working"
	StatusPending    Status = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusWorking || s == StatusNotWorking || s == StatusPending
}

// MaxFeatureVerifications 每个功能保留的验证快照数量
const MaxFeatureVerifications = 10

// MediaType 媒体类型
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// Team 团队，拥有有序的功能列表
type Team struct {
	Id       int64     `json:"id"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	IsPinned bool      `json:"isPinned,omitempty"`
	Features []Feature `json:"features"`
}

// Feature 功能，Number 在团队内从 1 开始连续编号
type Feature struct {
	Id            int64          `json:"id"`
	Number        int            `json:"number"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Steps         []Step         `json:"steps"`
	Comments      []Comment      `json:"comments"`
	Verifications []Verification `json:"verifications"`
}

// Step 验证步骤，Order 恒等于 Number-1
type Step struct {
	Id           int64       `json:"id"`
	Number       int         `json:"number"`
	Description  string      `json:"description"`
	Order        int         `json:"order"`
	Status       Status      `json:"status"`
	LastVerified *int64      `json:"lastVerified,omitempty"` // epoch ms
	Media        []StepMedia `json:"media,omitempty"`
}

// StepMedia 步骤附件
type StepMedia struct {
	Id        string    `json:"id"`
	Type      MediaType `json:"type"`
	Url       string    `json:"url"`
	CreatedAt string    `json:"createdAt"`
}

// Comment 功能评论
type Comment struct {
	Id        int64  `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
}

// Verification 功能重置前的快照，存于功能内的环形缓冲
type Verification struct {
	Id        int64              `json:"id"`
	Timestamp int64              `json:"timestamp"`
	Steps     []VerificationStep `json:"steps"`
}

type VerificationStep struct {
	StepId int64  `json:"stepId"`
	Status Status `json:"status"`
}

// Clone returns a deep copy of t.
func (t Team) Clone() Team {
	out := t
	out.Features = make([]Feature, len(t.Features))
	for i, f := range t.Features {
		out.Features[i] = f.Clone()
	}
	return out
}

// Clone returns a deep copy of f.
func (f Feature) Clone() Feature {
	out := f
	out.Steps = make([]Step, len(f.Steps))
	for i, s := range f.Steps {
		out.Steps[i] = s.Clone()
	}
	out.Comments = slices.Clone(f.Comments)
	out.Verifications = make([]Verification, len(f.Verifications))
	for i, v := range f.Verifications {
		v.Steps = slices.Clone(v.Steps)
		out.Verifications[i] = v
	}
	return out
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	out := s
	if s.LastVerified != nil {
		ts := *s.LastVerified
		out.LastVerified = &ts
	}
	out.Media = slices.Clone(s.Media)
	return out
}

// CloneTeams deep copies a team list.
func CloneTeams(teams []Team) []Team {
	if teams == nil {
		return nil
	}
	out := make([]Team, len(teams))
	for i, t := range teams {
		out[i] = t.Clone()
	}
	return out
}

// Normalize 保证数组字段非 nil，序列化后前端拿到的是 [] 而不是 null
func (t *Team) Normalize() {
	if t.Features == nil {
		t.Features = []Feature{}
	}
	for i := range t.Features {
		f := &t.Features[i]
		if f.Steps == nil {
			f.Steps = []Step{}
		}
		if f.Comments == nil {
			f.Comments = []Comment{}
		}
		if f.Verifications == nil {
			f.Verifications = []Verification{}
		}
		for j := range f.Steps {
			if f.Steps[j].Status == "" {
				f.Steps[j].Status = StatusPending
			}
		}
	}
}

// Renumber 按数组顺序重排功能编号
func (t *Team) Renumber() {
	for i := range t.Features {
		t.Features[i].Number = i + 1
	}
}

// Renumber 按数组顺序重排步骤编号与顺序
func (f *Feature) Renumber() {
	for i := range f.Steps {
		f.Steps[i].Number = i + 1
		f.Steps[i].Order = i
	}
}

// Snapshot 生成当前步骤状态的快照
func (f Feature) Snapshot(id, ts int64) Verification {
	steps := make([]VerificationStep, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = VerificationStep{StepId: s.Id, Status: s.Status}
	}
	return Verification{Id: id, Timestamp: ts, Steps: steps}
}

// PushVerification 新快照放在最前，超过上限的旧快照被丢弃
func (f *Feature) PushVerification(v Verification) {
	list := append([]Verification{v}, f.Verifications...)
	if len(list) > MaxFeatureVerifications {
		list = list[:MaxFeatureVerifications]
	}
	f.Verifications = list
}
