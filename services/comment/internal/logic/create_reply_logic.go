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

type CreateReplyLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewCreateReplyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateReplyLogic {
	return &CreateReplyLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CreateReply 回复已加载的评论，超过最大深度的回复平铺在父评论所在层
func (l *CreateReplyLogic) CreateReply(in *types.CreateReplyReq) (*types.CommentResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Millisecond*500)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	logger.Info("user reply", "user", in.UserId, "post", in.PostId, "parentId", in.ParentId)
	c, err := l.svcCtx.Coordinator.Create(timeout, mutation.CreateRequest{
		PostID:          in.PostId,
		AuthorID:        in.UserId,
		Content:         in.Content,
		ParentCommentID: in.ParentId,
	})
	if err != nil {
		logger.Error("create reply:" + err.Error())
		return nil, err
	}
	return &types.CommentResp{Comment: toComment(c)}, nil
}
