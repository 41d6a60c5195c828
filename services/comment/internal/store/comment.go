package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"Imstagramoo/common/model/database"
	"Imstagramoo/common/model/mq"
	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/model"
)

func (s *Store) FetchRootComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	key := rootListKey(postID)
	logger := util.SetTrace(ctx, s.log())
	if s.Local != nil {
		if body, err := s.Local.Get([]byte(key)); err == nil {
			comments := make([]model.Comment, 0)
			if err = json.Unmarshal(body, &comments); err == nil {
				logger.Debug("hit local root list", "post", postID)
				return comments, nil
			}
			logger.Error("unmarshal local root list:" + err.Error())
		}
	}

	records := make([]database.Comment, 0)
	err := s.DB.WithContext(ctx).
		Where("post_id = ? and root_id = ? and status = ?", postID, 0, database.CommentStatusCommon).
		Order("reply_count asc").Order("created_at asc").
		Find(&records).Error
	if err != nil {
		logger.Error("search root comments from mysql:" + err.Error())
		return nil, err
	}
	comments, err := s.join(ctx, records)
	if err != nil {
		return nil, err
	}

	if s.Local != nil {
		if body, err := json.Marshal(comments); err == nil {
			_ = s.Local.Set([]byte(key), body, s.RootListTTL)
		}
	}
	return comments, nil
}

func (s *Store) FetchReplyComments(ctx context.Context, postID, rootID int64, from, to int) ([]model.Comment, error) {
	if from < 0 || to < from {
		return nil, pkgerrors.Errorf("invalid range [%d, %d]", from, to)
	}
	records := make([]database.Comment, 0)
	err := s.DB.WithContext(ctx).
		Where("post_id = ? and root_id = ? and status = ?", postID, rootID, database.CommentStatusCommon).
		Order("created_at asc").Order("id asc").
		Offset(from).Limit(to - from + 1).
		Find(&records).Error
	if err != nil {
		util.SetTrace(ctx, s.log()).Error("search reply comments from mysql:"+err.Error(), "root", rootID)
		return nil, err
	}
	return s.join(ctx, records)
}

// join 批量查询作者资料，作者不存在时只保留id
func (s *Store) join(ctx context.Context, records []database.Comment) ([]model.Comment, error) {
	comments := make([]model.Comment, 0, len(records))
	if len(records) == 0 {
		return comments, nil
	}
	ids := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.AuthorId]; !ok {
			seen[r.AuthorId] = struct{}{}
			ids = append(ids, r.AuthorId)
		}
	}
	profiles := make([]database.Profile, 0, len(ids))
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		util.SetTrace(ctx, s.log()).Error("search profiles from mysql:" + err.Error())
		return nil, err
	}
	byID := make(map[string]database.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.Id] = p
	}
	for _, r := range records {
		comments = append(comments, toModel(r, byID[r.AuthorId]))
	}
	return comments, nil
}

func (s *Store) CreateComment(ctx context.Context, in model.CreateInput) (model.Comment, error) {
	logger := util.SetTrace(ctx, s.log())
	if strings.TrimSpace(in.Content) == "" {
		return model.Comment{}, pkgerrors.WithStack(model.ErrInvalidContent)
	}
	if in.Depth < 0 || in.Depth > s.maxDepth() {
		return model.Comment{}, pkgerrors.Wrapf(model.ErrDepthExceeded, "depth %d", in.Depth)
	}

	id, err := s.Creator.GetIdWithContext(ctx)
	if err != nil {
		logger.Error("get id:" + err.Error())
		return model.Comment{}, err
	}
	record := database.Comment{
		Id:         id,
		PostId:     in.PostID,
		RootId:     in.RootCommentID,
		Status:     database.CommentStatusCommon,
		CreatedAt:  time.Now().UnixMilli(),
		ReplyCount: 0,
		AuthorId:   in.AuthorID,
		ParentId:   in.ParentCommentID,
		Depth:      in.Depth,
		Path:       in.Path,
		Content:    in.Content,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.RootId != 0 {
			if err := exists(tx, record.PostId, record.RootId); err != nil {
				return err
			}
			if record.ParentId != record.RootId {
				if err := exists(tx, record.PostId, record.ParentId); err != nil {
					return err
				}
			}
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if record.RootId == 0 {
			return nil
		}
		return tx.Model(&database.Comment{}).
			Where("id = ?", record.RootId).
			Update("reply_count", gorm.Expr("reply_count + ?", 1)).Error
	})
	if err != nil {
		logger.Error("create comment:"+err.Error(), "post", in.PostID, "root", in.RootCommentID)
		return model.Comment{}, err
	}
	logger.Info("user comment", "user", in.AuthorID, "post", in.PostID, "rootId", in.RootCommentID, "parentId", in.ParentCommentID)

	s.dropRootList(record.PostId)
	s.publish(ctx, s.CommentTopic, record.PostId, mq.CommentKafkaJson{
		Id:        record.Id,
		PostId:    record.PostId,
		AuthorId:  record.AuthorId,
		RootId:    record.RootId,
		ParentId:  record.ParentId,
		Depth:     record.Depth,
		Path:      record.Path,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
	})

	comments, err := s.join(ctx, []database.Comment{record})
	if err != nil {
		// 评论已写入，作者信息缺失不影响结果
		return toModel(record, database.Profile{}), nil
	}
	return comments[0], nil
}

func exists(tx *gorm.DB, postID, id int64) error {
	record := database.Comment{}
	err := tx.Select("id").
		Where("id = ? and post_id = ? and status = ?", id, postID, database.CommentStatusCommon).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrapf(model.ErrNotFound, "comment %d", id)
	}
	return err
}

// UpdateComment 返回不带作者信息的行
func (s *Store) UpdateComment(ctx context.Context, id int64, content string) (model.Comment, error) {
	logger := util.SetTrace(ctx, s.log())
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, pkgerrors.WithStack(model.ErrInvalidContent)
	}
	db := s.DB.WithContext(ctx)
	res := db.Model(&database.Comment{}).
		Where("id = ? and status = ?", id, database.CommentStatusCommon).
		Update("content", content)
	if res.Error != nil {
		logger.Error("update comment:"+res.Error.Error(), "id", id)
		return model.Comment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Comment{}, pkgerrors.Wrapf(model.ErrNotFound, "comment %d", id)
	}
	record := database.Comment{}
	if err := db.Where("id = ?", id).Take(&record).Error; err != nil {
		logger.Error("search updated comment:"+err.Error(), "id", id)
		return model.Comment{}, err
	}

	s.dropRootList(record.PostId)
	s.publish(ctx, s.CommentTopic, record.PostId, mq.UpdateCommentKafkaJson{
		CommentId: record.Id,
		PostId:    record.PostId,
		Content:   record.Content,
	})
	return toModel(record, database.Profile{}), nil
}

// DeleteComment 软删除，回复被删除时根评论回复数减一
func (s *Store) DeleteComment(ctx context.Context, id int64) (model.Comment, error) {
	logger := util.SetTrace(ctx, s.log())
	record := database.Comment{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? and status = ?", id, database.CommentStatusCommon).Take(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrapf(model.ErrNotFound, "comment %d", id)
		} else if err != nil {
			return err
		}
		err = tx.Model(&database.Comment{}).Where("id = ?", id).
			Update("status", database.CommentStatusDelete).Error
		if err != nil || record.RootId == 0 {
			return err
		}
		return tx.Model(&database.Comment{}).
			Where("id = ? and reply_count > ?", record.RootId, 0).
			Update("reply_count", gorm.Expr("reply_count - ?", 1)).Error
	})
	if err != nil {
		logger.Error("delete comment:"+err.Error(), "id", id)
		return model.Comment{}, err
	}
	logger.Info("user del comment", "userId", record.AuthorId, "commentId", id)

	s.dropRootList(record.PostId)
	s.publish(ctx, s.CommentTopic, record.PostId, mq.DelCommentKafkaJson{
		AuthorId:  record.AuthorId,
		CommentId: record.Id,
		PostId:    record.PostId,
		RootId:    record.RootId,
	})
	comments, err := s.join(ctx, []database.Comment{record})
	if err != nil {
		return toModel(record, database.Profile{}), nil
	}
	return comments[0], nil
}

func (s *Store) dropRootList(postID int64) {
	if s.Local != nil {
		s.Local.Del([]byte(rootListKey(postID)))
	}
}
