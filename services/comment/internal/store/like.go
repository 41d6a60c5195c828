package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"Imstagramoo/common/infra/lua"
	"Imstagramoo/common/model/database"
	"Imstagramoo/common/model/mq"
	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/script"
)

var errLikeMissing = errors.New("like counter not in redis")

func (s *Store) FetchLikeState(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	state, err := s.execLike(ctx, script.GetLike, postID, userID)
	if !errors.Is(err, errLikeMissing) {
		return state, err
	}
	if err = s.rebuildLike(ctx, postID); err != nil {
		return model.LikeState{}, err
	}
	return s.execLike(ctx, script.GetLike, postID, userID)
}

// ToggleLike 在redis中原子翻转，计数缺失时先从mysql重建
func (s *Store) ToggleLike(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	logger := util.SetTrace(ctx, s.log())
	state, err := s.execLike(ctx, script.ToggleLike, postID, userID, s.likeTTL())
	if errors.Is(err, errLikeMissing) {
		if err = s.rebuildLike(ctx, postID); err != nil {
			return model.LikeState{}, err
		}
		state, err = s.execLike(ctx, script.ToggleLike, postID, userID, s.likeTTL())
	}
	if err != nil {
		logger.Error("toggle like:"+err.Error(), "post", postID)
		return model.LikeState{}, err
	}
	logger.Debug("toggle like", "post", postID, "user", userID, "liked", state.Liked, "count", state.Count)

	s.publish(ctx, s.LikeTopic, postID, mq.LikeKafkaJson{
		TimeStamp: time.Now().UnixMilli(),
		Business:  database.BusinessPost,
		UserId:    userID,
		LikeId:    postID,
		Cancel:    !state.Liked,
		Count:     state.Count,
	})
	return state, nil
}

func (s *Store) execLike(ctx context.Context, sc *lua.Script, postID int64, userID string, extra ...interface{}) (model.LikeState, error) {
	args := append([]interface{}{userID}, extra...)
	res, err := s.Executor.Execute(ctx, sc, likeKeys(postID), args...).Int64Slice()
	if err != nil {
		return model.LikeState{}, err
	}
	if len(res) == 0 || res[0] == -1 {
		return model.LikeState{}, errLikeMissing
	}
	if len(res) != 2 {
		return model.LikeState{}, pkgerrors.Errorf("unexpected like script result %v", res)
	}
	return model.LikeState{Count: res[0], Liked: res[1] == 1}, nil
}

// rebuildLike 持有redis锁时从mysql加载点赞用户和计数
func (s *Store) rebuildLike(ctx context.Context, postID int64) error {
	logger := util.SetTrace(ctx, s.log())
	mutex := s.Sync.NewMutex("LikeNums:" + strconv.FormatInt(postID, 10) + ":mutex")
	if err := mutex.LockWithTimeout(ctx, time.Second); err != nil {
		logger.Error("lock like rebuild:"+err.Error(), "post", postID)
		return err
	}
	defer func() {
		if err := mutex.Unlock(ctx); err != nil {
			logger.Warn("unlock like rebuild:"+err.Error(), "post", postID)
		}
	}()

	db := s.DB.WithContext(ctx)
	users := make([]string, 0)
	err := db.Model(&database.Like{}).
		Where("business = ? and like_id = ? and status = ?", database.BusinessPost, postID, database.LikeStatusLike).
		Pluck("user_id", &users).Error
	if err != nil {
		logger.Error("search likes from mysql:"+err.Error(), "post", postID)
		return err
	}

	count := int64(len(users))
	record := database.LikeCount{}
	err = db.Select("count").
		Where("business = ? and like_id = ? and status = ?", database.BusinessPost, postID, database.LikeCountStatusCommon).
		Take(&record).Error
	if err == nil {
		count = record.Count
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("search like count from mysql:"+err.Error(), "post", postID)
		return err
	}

	args := make([]interface{}, 0, len(users)+2)
	args = append(args, s.likeTTL(), count)
	for _, u := range users {
		args = append(args, u)
	}
	if err = s.Executor.Execute(ctx, script.BuildLike, likeKeys(postID), args...).Err(); err != nil {
		logger.Error("build like counter:"+err.Error(), "post", postID)
		return err
	}
	logger.Debug("rebuild like counter", "post", postID, "count", count)
	return nil
}
