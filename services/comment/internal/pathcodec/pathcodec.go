// Package pathcodec 维护评论的物化路径和深度
package pathcodec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/model"
)

const (
	MaxDepth  = 3
	Separator = "."
)

// Next 根据父评论计算新回复的路径和深度，父评论位于最大深度时平铺挂载，路径不变
func Next(parentPath string, parentDepth int, parentID int64, maxDepth int) (string, int, error) {
	if parentDepth < 0 || parentDepth > maxDepth {
		return "", 0, errors.Wrapf(model.ErrDepthExceeded, "parent depth %d, max %d", parentDepth, maxDepth)
	}
	if parentDepth == maxDepth {
		return parentPath, maxDepth, nil
	}
	id := strconv.FormatInt(parentID, 10)
	if parentPath == "" {
		return id, parentDepth + 1, nil
	}
	return parentPath + Separator + id, parentDepth + 1, nil
}

func Encode(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

func Decode(path string) ([]int64, error) {
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, Separator)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path segment %q in %q", part, path)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Last 路径的最后一段，即回复挂载的节点
func Last(path string) (int64, bool) {
	if path == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(path[strings.LastIndex(path, Separator)+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func Segments(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator) + 1
}
