package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/mutation"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type CreateCommentLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewCreateCommentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateCommentLogic {
	return &CreateCommentLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CreateComment 创建根评论
func (l *CreateCommentLogic) CreateComment(in *types.CreateCommentReq) (*types.CommentResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Millisecond*500)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	logger.Info("user comment", "user", in.UserId, "post", in.PostId)
	c, err := l.svcCtx.Coordinator.Create(timeout, mutation.CreateRequest{
		PostID:   in.PostId,
		AuthorID: in.UserId,
		Content:  in.Content,
	})
	if err != nil {
		logger.Error("create comment:" + err.Error())
		return nil, err
	}
	return &types.CommentResp{Comment: toComment(c)}, nil
}
