// Package tree 将扁平的回复列表组装为嵌套森林
package tree

import (
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/pathcodec"
)

type NestedComment struct {
	model.Comment
	Kind model.Kind
	// RepliedTo 被回复评论作者的昵称
	RepliedTo string
	Children  []int64
}

// Forest 节点按id存放，子节点只保存id
type Forest struct {
	nodes map[int64]*NestedComment
	top   []int64
}

// Build 总是成功，挂载节点或被回复评论不在输入中的回复本次被丢弃
func Build(flat []model.Comment) *Forest {
	f := &Forest{nodes: make(map[int64]*NestedComment, len(flat))}
	order := make([]*NestedComment, 0, len(flat))
	for _, c := range flat {
		// 重复id只保留第一次出现
		if _, ok := f.nodes[c.ID]; ok {
			continue
		}
		node := &NestedComment{Comment: c, Kind: c.Kind()}
		f.nodes[c.ID] = node
		order = append(order, node)
	}

	for _, node := range order {
		c := node.Comment
		if c.Depth == 1 {
			f.top = append(f.top, c.ID)
			continue
		}
		parentID, ok := pathcodec.Last(c.Path)
		if !ok {
			continue
		}
		parent, ok := f.nodes[parentID]
		if !ok || parentID == c.ID {
			continue
		}
		attributed, ok := f.nodes[c.ParentCommentID]
		if !ok {
			continue
		}
		node.RepliedTo = attributed.Author.Nickname
		parent.Children = append(parent.Children, c.ID)
	}

	f.prune()
	return f
}

// prune 删除无法从顶层到达的节点
func (f *Forest) prune() {
	reachable := make(map[int64]struct{}, len(f.nodes))
	var mark func(id int64)
	mark = func(id int64) {
		if _, ok := reachable[id]; ok {
			return
		}
		reachable[id] = struct{}{}
		for _, child := range f.nodes[id].Children {
			mark(child)
		}
	}
	for _, id := range f.top {
		mark(id)
	}
	for id := range f.nodes {
		if _, ok := reachable[id]; !ok {
			delete(f.nodes, id)
		}
	}
}

func (f *Forest) Top() []int64 {
	return append([]int64(nil), f.top...)
}

func (f *Forest) Node(id int64) (*NestedComment, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

func (f *Forest) Children(id int64) []int64 {
	n, ok := f.nodes[id]
	if !ok {
		return nil
	}
	return append([]int64(nil), n.Children...)
}

// Len 森林中的节点数
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Walk 深度优先先序遍历，fn返回false时停止
func (f *Forest) Walk(fn func(n *NestedComment, level int) bool) {
	var walk func(id int64, level int) bool
	walk = func(id int64, level int) bool {
		n := f.nodes[id]
		if !fn(n, level) {
			return false
		}
		for _, child := range n.Children {
			if !walk(child, level+1) {
				return false
			}
		}
		return true
	}
	for _, id := range f.top {
		if !walk(id, 0) {
			return
		}
	}
}
