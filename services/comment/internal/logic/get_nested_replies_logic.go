package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/pager"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/tree"
	"Imstagramoo/services/comment/internal/types"
)

type GetNestedRepliesLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewGetNestedRepliesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetNestedRepliesLogic {
	return &GetNestedRepliesLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetNestedReplies 已加载的回复组装为嵌套结构，未加载到的祖先对应的回复暂不展示
func (l *GetNestedRepliesLogic) GetNestedReplies(in *types.GetNestedRepliesReq) (*types.NestedRepliesResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Second)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	replies, err := l.svcCtx.Pager.Replies(timeout, in.PostId, in.RootId)
	if err != nil {
		logger.Error("get replies:"+err.Error(), "post", in.PostId, "root", in.RootId)
		return nil, err
	}
	return nested(replies), nil
}

func nested(replies pager.Replies) *types.NestedRepliesResp {
	return &types.NestedRepliesResp{
		Replies:          renderForest(tree.Build(replies.Comments)),
		HasNextPage:      replies.HasNextPage,
		FetchingNextPage: replies.FetchingNextPage,
	}
}
