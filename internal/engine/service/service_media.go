package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/id"
	"github.com/go-arcade/qaboard/pkg/log"
)

// MaxVideoSize 视频上限 300MB，图片不限
const MaxVideoSize int64 = 300 * 1024 * 1024

// Upload describes one media file sent by a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// mediaType maps a content type to photo/video.
func mediaType(contentType string) (model.MediaType, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaPhoto, true
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaVideo, true
	}
	return "", false
}

// UploadMedia stores the file under {teamId}/{featureId}/{stepId}/ and
// attaches the resulting URL to the step.
func (s *BoardService) UploadMedia(ctx context.Context, teamId, featureId, stepId int64, up Upload) (model.StepMedia, error) {
	typ, ok := mediaType(up.ContentType)
	if !ok {
		return model.StepMedia{}, ErrInvalidMedia
	}
	if typ == model.MediaVideo && up.Size > MaxVideoSize {
		return model.StepMedia{}, ErrMediaTooLarge
	}
	// 上传前先确认步骤存在
	if err := s.findStep(teamId, featureId, stepId); err != nil {
		return model.StepMedia{}, err
	}

	now := s.now()
	name := fmt.Sprintf("%d/%d/%d/%d-%d%s", teamId, featureId, stepId, stepId, now.UnixMilli(), path.Ext(up.FileName))
	key, err := s.media.Put(ctx, name, up.Body, up.Size, up.ContentType)
	if err != nil {
		return model.StepMedia{}, err
	}

	m := model.StepMedia{
		Id:        id.GetUUID(),
		Type:      typ,
		Url:       s.mediaCfg.ObjectURL(key),
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	if _, err := s.AttachMedia(teamId, featureId, stepId, m); err != nil {
		// 步骤在上传期间被删除，回收对象
		if derr := s.media.Delete(ctx, key); derr != nil {
			log.Warnw("failed to remove orphaned media", "key", key, "error", derr)
		}
		return model.StepMedia{}, err
	}
	return m, nil
}

// AttachMedia appends an already stored media record to a step.
func (s *BoardService) AttachMedia(teamId, featureId, stepId int64, m model.StepMedia) (model.Feature, error) {
	if (m.Type != model.MediaPhoto && m.Type != model.MediaVideo) || m.Url == "" {
		return model.Feature{}, ErrInvalidMedia
	}
	if m.Id == "" {
		m.Id = id.GetUUID()
	}
	if m.CreatedAt == "" {
		m.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	return s.editStep(teamId, featureId, stepId, func(st *model.Step) error {
		st.Media = append(st.Media, m)
		return nil
	})
}

// DetachMedia removes a media record from a step. Deleting the stored
// object is best effort.
func (s *BoardService) DetachMedia(ctx context.Context, teamId, featureId, stepId int64, mediaId string) (model.Feature, error) {
	var removed model.StepMedia
	f, err := s.editStep(teamId, featureId, stepId, func(st *model.Step) error {
		i := slices.IndexFunc(st.Media, func(m model.StepMedia) bool { return m.Id == mediaId })
		if i < 0 {
			return ErrMediaNotFound
		}
		removed = st.Media[i]
		st.Media = slices.Delete(st.Media, i, i+1)
		return nil
	})
	if err != nil {
		return model.Feature{}, err
	}

	if key, ok := s.mediaCfg.KeyFromURL(removed.Url); ok {
		if err := s.media.Delete(ctx, key); err != nil {
			log.Warnw("failed to delete media object", "key", key, "error", err)
		}
	}
	return f, nil
}

func (s *BoardService) findStep(teamId, featureId, stepId int64) error {
	t, err := s.Team(teamId)
	if err != nil {
		return err
	}
	i := indexOfFeature(t.Features, featureId)
	if i < 0 {
		return ErrFeatureNotFound
	}
	if indexOfStep(t.Features[i].Steps, stepId) < 0 {
		return ErrStepNotFound
	}
	return nil
}
