package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type GetLikeStateLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewGetLikeStateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetLikeStateLogic {
	return &GetLikeStateLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *GetLikeStateLogic) GetLikeState(in *types.LikeReq) (*types.LikeResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Millisecond*500)
	defer cancel()

	state, err := l.svcCtx.Pager.Like(timeout, in.PostId, in.UserId)
	if err != nil {
		util.SetTrace(l.ctx, l.svcCtx.Logger).Error("get like state:"+err.Error(), "post", in.PostId)
		return nil, err
	}
	return &types.LikeResp{LikeCount: state.Count, IsLiked: state.Liked}, nil
}
