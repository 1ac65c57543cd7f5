package domain

import (
	"strconv"
	"strings"
)

// Kind 是字段声明的类型，只有 KindFile 对附件生命周期有意义。
type Kind string

const (
	KindFile    Kind = "File"
	KindText    Kind = "Text"
	KindString  Kind = "String"
	KindNumber  Kind = "Number"
	KindBoolean Kind = "Boolean"
	KindDate    Kind = "Date"
)

// Node 是字段定义树的一个节点。
//
// 约定：Kind 非空即叶子，其余节点都是容器，按 Children 的顺序递归。
type Node struct {
	Name     string
	Kind     Kind
	Options  map[string]any
	Children []Node
}

func (n Node) IsLeaf() bool {
	return n.Kind != ""
}

// Schema 是一个顶层定义块，宿主可以把一种记录类型的字段拆成多个块声明。
type Schema []Node

// Leaf 是 FindLeaves 的结果：点分路径 + 叶子的声明信息（Meta 是 Options 的深拷贝）。
type Leaf struct {
	Path string
	Kind Kind
	Meta map[string]any
}

type Predicate func(Node) bool

// IsFile 匹配文件附件字段。
func IsFile(n Node) bool {
	return n.Kind == KindFile
}

// FindLeaves 深度优先查找满足 pred 的叶子，结果顺序即定义顺序。
// 只读遍历，不修改调用方的树。
func FindLeaves(nodes []Node, pred Predicate) []Leaf {
	out := make([]Leaf, 0)
	walk(nodes, nil, pred, &out)
	return out
}

// FindBlockLeaves 和 FindLeaves 一样，但以块下标作为路径第一段，例如 "0.meta.icon"。
func FindBlockLeaves(blocks []Schema, pred Predicate) []Leaf {
	roots := make([]Node, len(blocks))
	for i, b := range blocks {
		roots[i] = Node{Name: strconv.Itoa(i), Children: b}
	}
	return FindLeaves(roots, pred)
}

func walk(nodes []Node, prefix []string, pred Predicate, out *[]Leaf) {
	for _, n := range nodes {
		segs := append(prefix[:len(prefix):len(prefix)], n.Name)
		if !n.IsLeaf() {
			walk(n.Children, segs, pred, out)
			continue
		}
		if pred != nil && !pred(n) {
			continue
		}
		*out = append(*out, Leaf{
			Path: strings.Join(segs, "."),
			Kind: n.Kind,
			Meta: cloneOptions(n.Options),
		})
	}
}

// TrimBlockIndex 去掉路径开头的块下标，得到记录上的字段路径："0.meta.icon" → "meta.icon"。
func TrimBlockIndex(path string) string {
	head, rest, ok := strings.Cut(path, ".")
	if !ok {
		return path
	}
	if _, err := strconv.Atoi(head); err != nil {
		return path
	}
	return rest
}

func cloneOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneOptions(t)
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = cloneValue(e)
		}
		return cp
	default:
		return v
	}
}
