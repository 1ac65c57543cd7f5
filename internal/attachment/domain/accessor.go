package domain

import (
	"reflect"
	"strconv"
	"strings"
)

// Get 按点分路径读取嵌套值，调用方不需要知道嵌套深度。
//
// 约定：
// - 中途遇到缺失值（nil）就停下并返回它，不 panic，也不补中间容器
// - 支持 map[string]any、任意 string 键的 map（如 bson.M）、切片/数组（数字段）、指针和结构体（json 标签或字段名）
func Get(obj any, path string) any {
	cur := obj
	for _, seg := range strings.Split(path, ".") {
		if cur == nil {
			return nil
		}
		next, ok := child(cur, seg)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Set 按点分路径写值，缺失的中间层会创建为 map[string]any。
func Set(obj map[string]any, path string, value any) error {
	if obj == nil || path == "" {
		return ErrInvalidInput.WithMsg("Set 需要非空对象和路径").WithData("path", path)
	}
	segs := strings.Split(path, ".")
	cur := obj
	for i, seg := range segs[:len(segs)-1] {
		switch next := cur[seg].(type) {
		case map[string]any:
			cur = next
		case nil:
			m := make(map[string]any)
			cur[seg] = m
			cur = m
		default:
			return ErrInvalidInput.WithMsg("中间节点不是对象").
				WithData("path", path).
				WithData("segment", strings.Join(segs[:i+1], "."))
		}
	}
	cur[segs[len(segs)-1]] = value
	return nil
}

func child(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return reflectChild(reflect.ValueOf(cur), seg)
}

func reflectChild(v reflect.Value, seg string) (any, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return valueOf(mv), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= v.Len() {
			return nil, false
		}
		return valueOf(v.Index(i)), true
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == seg || (name == "" && f.Name == seg) {
				return valueOf(v.Field(i)), true
			}
		}
	}
	return nil, false
}

// 把 nil 的 map/slice/指针统一成无类型 nil，调用方只需要判断 == nil。
func valueOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
