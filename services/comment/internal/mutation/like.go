package mutation

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/cache"
	"Imstagramoo/services/comment/internal/model"
)

// lane 同一帖子同一用户的点赞请求序列
// 展示值始终等于base翻转standing次，失败只撤销自己那一次翻转
type lane struct {
	mu           sync.Mutex
	base         model.LikeState // 最近一次确认的状态
	standing     int             // 本轮未失败的翻转数
	pending      int             // 进行中的请求数
	seq          uint64
	confirmed    *model.LikeState // 最新请求返回的服务端状态
	confirmedSeq uint64
}

func (l *lane) display() model.LikeState {
	if l.standing%2 != 0 {
		return l.base.Flip()
	}
	return l.base
}

func (m *Coordinator) laneFor(key cache.LikeKey) *lane {
	return m.lanes.Upsert(key, &lane{}, func(exist bool, valueInMap, newValue *lane) *lane {
		if exist {
			return valueInMap
		}
		return newValue
	})
}

// ToggleLike 快照、乐观修改、确认或回滚三个阶段
func (m *Coordinator) ToggleLike(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	if _, ok := m.cache.Like(postID, userID); !ok && m.loader != nil {
		if _, err := m.loader.Like(ctx, postID, userID); err != nil {
			return model.LikeState{}, err
		}
	}

	l := m.laneFor(cache.LikeKey{PostID: postID, UserID: userID})

	// 快照并乐观修改
	l.mu.Lock()
	current, known := m.cache.Like(postID, userID)
	if l.pending == 0 {
		l.base = current
		l.standing = 0
		l.confirmed = nil
	}
	l.pending++
	l.standing++
	l.seq++
	seq := l.seq
	if known {
		m.cache.SetLike(postID, userID, l.display())
	}
	l.mu.Unlock()

	state, err := m.writer.ToggleLike(ctx, postID, userID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if err != nil {
		l.standing--
	} else if seq == l.seq {
		l.confirmed, l.confirmedSeq = &state, seq
	}

	if l.pending > 0 {
		// 仍有更新的请求在途，过期的响应不覆盖乐观状态
		if known {
			m.cache.SetLike(postID, userID, l.display())
		}
	} else {
		// 队列排空，最新请求成功时采用服务端状态
		adopt := l.confirmed != nil && l.confirmedSeq == l.seq
		if adopt {
			l.base = *l.confirmed
		} else {
			l.base = l.display()
		}
		l.standing = 0
		l.confirmed = nil
		if adopt || known {
			m.cache.SetLike(postID, userID, l.base)
		}
	}

	if err != nil {
		m.logger.Error("toggle like:"+err.Error(), "post", postID)
		return model.LikeState{}, errors.Wrapf(model.Transport("toggle like", err), "post %d", postID)
	}
	result, _ := m.cache.Like(postID, userID)
	return result, nil
}
