package cache

// ResultSet 只保存评论id，内容统一从byID读取；值不可变，修改时整体替换
type ResultSet struct {
	Pages      [][]int64
	Exhausted  bool
	Stale      bool
	Generation uint64
}

// Fetched 是否至少拉取过一页
func (r ResultSet) Fetched() bool {
	return r.Pages != nil
}

// Cursor 下一页的页号
func (r ResultSet) Cursor() int {
	return len(r.Pages)
}

func (r ResultSet) IDs() []int64 {
	n := 0
	for _, page := range r.Pages {
		n += len(page)
	}
	ids := make([]int64, 0, n)
	for _, page := range r.Pages {
		ids = append(ids, page...)
	}
	return ids
}

func (r ResultSet) Len() int {
	n := 0
	for _, page := range r.Pages {
		n += len(page)
	}
	return n
}

func (r ResultSet) clonePages() [][]int64 {
	pages := make([][]int64, len(r.Pages))
	copy(pages, r.Pages)
	return pages
}
