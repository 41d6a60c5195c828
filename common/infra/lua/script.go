package lua

import "fmt"

// Script 一段具名lua脚本，keys为脚本需要的KEYS个数
type Script struct {
	name     string
	keys     int
	function string
}

func (s *Script) Name() string {
	return s.name
}

func (s *Script) Keys() int {
	return s.keys
}

func (s *Script) Function() string {
	return s.function
}

func (s *Script) String() string {
	return fmt.Sprintf("%s(keys=%d)", s.name, s.keys)
}

func NewScript(name string, keys int, function string) *Script {
	return &Script{
		name:     name,
		keys:     keys,
		function: function,
	}
}
