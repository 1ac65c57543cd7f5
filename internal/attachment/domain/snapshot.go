package domain

import (
	"fmt"
	"sort"
)

// Attachment 是文件字段上跟踪的状态，Filename 为空表示没有附件。
type Attachment struct {
	Filename string
}

// AttachmentOf 从字段值里读出文件名；字段值缺失时返回 false。
func AttachmentOf(v any) (Attachment, bool) {
	switch t := v.(type) {
	case nil:
		return Attachment{}, false
	case string:
		// 有的宿主直接把文件名存成字符串
		return Attachment{Filename: t}, true
	}
	switch fn := Get(v, "filename").(type) {
	case nil:
		return Attachment{}, true
	case string:
		return Attachment{Filename: fn}, true
	default:
		return Attachment{Filename: fmt.Sprint(fn)}, true
	}
}

// Snapshot 记录加载时每个文件字段上的文件名，用于保存后判断旧文件是否变成孤儿。
// 只在 Populate 时写入，之后只读。
type Snapshot struct {
	values map[string]Attachment
}

// Populate 在记录从存储加载出来、调用方修改文件字段之前执行。
// 字段值缺失时不记录；记录还没有 id 时返回空快照。
func Populate(rec *Record, paths []string) Snapshot {
	s := Snapshot{values: make(map[string]Attachment, len(paths))}
	if rec == nil || rec.ID == "" {
		return s
	}
	for _, p := range paths {
		if a, ok := AttachmentOf(Get(rec.Fields, p)); ok {
			s.values[p] = a
		}
	}
	return s
}

// Previous 返回加载时 path 上的附件。
func (s Snapshot) Previous(path string) (Attachment, bool) {
	a, ok := s.values[path]
	return a, ok
}

func (s Snapshot) Len() int {
	return len(s.values)
}

func (s Snapshot) Paths() []string {
	out := make([]string, 0, len(s.values))
	for p := range s.values {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Record 是宿主记录在附件生命周期里的视图。
//
// 约束：
// - ID 是记录的持久身份，生成文件名前必须已分配
// - 每个实例同一时间只有一个快照，保存完成后丢弃，下次加载重新生成
type Record struct {
	ID     string
	Type   string
	Fields map[string]any

	snapshot *Snapshot
}

func NewRecord(typeID, id string) *Record {
	return &Record{ID: id, Type: typeID, Fields: make(map[string]any)}
}

// Remember 挂上本次保存周期的快照，覆盖之前的快照。
func (r *Record) Remember(s Snapshot) {
	r.snapshot = &s
}

// Snapshot 返回当前快照；新建、未加载过的记录返回空快照。
func (r *Record) Snapshot() Snapshot {
	if r == nil || r.snapshot == nil {
		return Snapshot{}
	}
	return *r.snapshot
}

func (r *Record) Loaded() bool {
	return r != nil && r.snapshot != nil
}

func (r *Record) Forget() {
	r.snapshot = nil
}
