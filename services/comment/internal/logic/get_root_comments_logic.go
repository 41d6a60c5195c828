package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/svc"
	"Imstagramoo/services/comment/internal/types"
)

type GetRootCommentsLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewGetRootCommentsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetRootCommentsLogic {
	return &GetRootCommentsLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

func (l *GetRootCommentsLogic) GetRootComments(in *types.GetRootCommentsReq) (*types.GetRootCommentsResp, error) {
	timeout, cancel := context.WithTimeout(l.ctx, time.Second)
	defer cancel()

	logger := util.SetTrace(l.ctx, l.svcCtx.Logger)
	comments, err := l.svcCtx.Pager.Roots(timeout, in.PostId)
	if err != nil {
		logger.Error("get root comments:"+err.Error(), "post", in.PostId)
		return nil, err
	}

	resp := &types.GetRootCommentsResp{Comments: make([]*types.Comment, 0, len(comments))}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, toComment(c))
	}
	return resp, nil
}
