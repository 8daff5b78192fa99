package service

import (
	"slices"
	"strings"

	"github.com/go-arcade/qaboard/internal/engine/model"
)

func (s *BoardService) AddComment(teamId, featureId int64, text, author string) (model.Feature, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Feature{}, ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = defaultAuthor
	}
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		f.Comments = append(f.Comments, model.Comment{
			Id:        s.seq.Next(),
			Text:      text,
			Author:    author,
			Timestamp: s.nowMilli(),
		})
		return nil
	})
}

func (s *BoardService) UpdateComment(teamId, featureId, commentId int64, text string) (model.Feature, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Feature{}, ErrEmptyComment
	}
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		i := slices.IndexFunc(f.Comments, func(c model.Comment) bool { return c.Id == commentId })
		if i < 0 {
			return ErrCommentNotFound
		}
		f.Comments[i].Text = text
		return nil
	})
}

func (s *BoardService) DeleteComment(teamId, featureId, commentId int64) (model.Feature, error) {
	return s.editFeature(teamId, featureId, func(_ *model.Team, f *model.Feature) error {
		i := slices.IndexFunc(f.Comments, func(c model.Comment) bool { return c.Id == commentId })
		if i < 0 {
			return ErrCommentNotFound
		}
		f.Comments = slices.Delete(f.Comments, i, i+1)
		return nil
	})
}
