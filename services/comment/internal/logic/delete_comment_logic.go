package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type DeleteCommentLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewDeleteCommentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteCommentLogic {
	return &DeleteCommentLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *DeleteCommentLogic) DeleteComment(in *types.DeleteCommentReq) (*types.CommentResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Millisecond*500)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	logger.Info("user del comment", "userId", in.UserId, "commentId", in.CommentId)
	if err := checkAuthor(l.svcCtx, in.CommentId, in.UserId); err != nil {
		return nil, err
	}
	c, err := l.svcCtx.Coordinator.Delete(timeout, in.CommentId)
	if err != nil {
		logger.Error("delete comment:" + err.Error())
		return nil, err
	}
	return &types.CommentResp{Comment: toComment(c)}, nil
}
