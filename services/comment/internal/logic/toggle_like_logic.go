package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type ToggleLikeLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewToggleLikeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ToggleLikeLogic {
	return &ToggleLikeLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ToggleLike 失败时缓存中的点赞状态已回滚
func (l *ToggleLikeLogic) ToggleLike(in *types.LikeReq) (*types.LikeResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Second)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	state, err := l.svcCtx.Coordinator.ToggleLike(timeout, in.PostId, in.UserId)
	if err != nil {
		logger.Error("toggle like:"+err.Error(), "post", in.PostId)
		return nil, err
	}
	return &types.LikeResp{LikeCount: state.Count, IsLiked: state.Liked}, nil
}
