package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type FetchNextRepliesLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewFetchNextRepliesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *FetchNextRepliesLogic {
	return &FetchNextRepliesLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *FetchNextRepliesLogic) FetchNextReplies(in *types.GetNestedRepliesReq) (*types.NestedRepliesResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Second)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	replies, err := l.svcCtx.Pager.Next(timeout, in.PostId, in.RootId)
	if err != nil {
		logger.Error("fetch next replies:"+err.Error(), "post", in.PostId, "root", in.RootId)
		return nil, err
	}
	logger.Debug("fetch next replies", "post", in.PostId, "root", in.RootId, "count", len(replies.Comments))
	return nested(replies), nil
}
