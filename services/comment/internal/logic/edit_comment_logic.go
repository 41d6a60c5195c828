package logic

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type EditCommentLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewEditCommentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EditCommentLogic {
	return &EditCommentLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *EditCommentLogic) EditComment(in *types.EditCommentReq) (*types.CommentResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Millisecond*500)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	logger.Info("user edit comment", "userId", in.UserId, "commentId", in.CommentId)
	if err := checkAuthor(l.svcCtx, in.CommentId, in.UserId); err != nil {
		return nil, err
	}
	c, err := l.svcCtx.Coordinator.Update(timeout, in.CommentId, in.Content)
	if err != nil {
		logger.Error("edit comment:" + err.Error())
		return nil, err
	}
	return &types.CommentResp{Comment: toComment(c)}, nil
}

// checkAuthor 评论必须已缓存且属于该用户
func checkAuthor(svcCtx *svc.ServiceContext, commentID int64, userID string) error {
	c, ok := svcCtx.Cache.Get(commentID)
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "comment %d not cached", commentID)
	}
	if c.AuthorID != userID {
		return errors.Wrapf(model.ErrForbidden, "comment %d", commentID)
	}
	return nil
}
