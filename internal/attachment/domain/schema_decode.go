package domain

import (
	"bytes"
	"errors"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// 字段定义文件的解码。map 会丢掉键顺序，而 FindLeaves 的结果顺序依赖定义顺序，
// 所以 YAML 走 yaml.Node、JSON 走 token 流，先解成有序的 entry 再转换成 Node。

type entry struct {
	key string
	val any // []entry（对象）、[]any（数组）或标量
}

// LoadSchemas 解析一种记录类型的字段定义。文档可以是单个块（对象）或多个块（数组）。
// format 取 "yaml"/"yml"/"json"，为空时按 YAML 处理（YAML 兼容 JSON）。
func LoadSchemas(data []byte, format string) ([]Schema, error) {
	var (
		root any
		err  error
	)
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		root, err = readJSON(data)
	case "", "yaml", "yml":
		root, err = readYAML(data)
	default:
		return nil, ErrInvalidInput.WithMsgf("不支持的字段定义格式: %s", format)
	}
	if err != nil {
		return nil, ErrInvalidInput.WithMsg("字段定义解析失败").WithCause(err)
	}

	switch v := root.(type) {
	case nil:
		return nil, nil
	case []entry:
		s, err := schemaFromEntries(v)
		if err != nil {
			return nil, err
		}
		return []Schema{s}, nil
	case []any:
		out := make([]Schema, 0, len(v))
		for i, item := range v {
			obj, ok := item.([]entry)
			if !ok {
				return nil, ErrInvalidInput.WithMsg("字段定义块必须是对象").WithData("block", i)
			}
			s, err := schemaFromEntries(obj)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, ErrInvalidInput.WithMsg("字段定义必须是对象或对象数组")
	}
}

// UnmarshalYAML 让 Schema 可以直接嵌进 YAML 配置里。
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	v, err := yamlValue(value)
	if err != nil {
		return err
	}
	obj, ok := v.([]entry)
	if !ok {
		return ErrInvalidInput.WithMsg("字段定义块必须是对象")
	}
	out, err := schemaFromEntries(obj)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// UnmarshalJSON 和 UnmarshalYAML 一样保持键顺序。
func (s *Schema) UnmarshalJSON(data []byte) error {
	v, err := readJSON(data)
	if err != nil {
		return err
	}
	obj, ok := v.([]entry)
	if !ok {
		return ErrInvalidInput.WithMsg("字段定义块必须是对象")
	}
	out, err := schemaFromEntries(obj)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

func schemaFromEntries(obj []entry) (Schema, error) {
	nodes, err := nodesFromEntries(obj)
	if err != nil {
		return nil, err
	}
	return Schema(nodes), nil
}

func nodesFromEntries(obj []entry) ([]Node, error) {
	nodes := make([]Node, 0, len(obj))
	for _, e := range obj {
		n, err := nodeFromEntry(e)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func nodeFromEntry(e entry) (Node, error) {
	switch v := e.val.(type) {
	case string:
		// 简写：icon: File
		return Node{Name: e.key, Kind: normalizeKind(v)}, nil
	case []entry:
		if kind, ok := kindOf(v); ok {
			return Node{Name: e.key, Kind: kind, Options: optionsOf(v)}, nil
		}
		children, err := nodesFromEntries(v)
		if err != nil {
			return Node{}, err
		}
		return Node{Name: e.key, Children: children}, nil
	default:
		return Node{}, ErrInvalidInput.WithMsg("字段既不是容器也没有 kind").WithData("field", e.key)
	}
}

// kindOf 识别叶子：带 kind（或宿主旧写法 type）且值为字符串。
func kindOf(obj []entry) (Kind, bool) {
	for _, key := range []string{"kind", "type"} {
		for _, e := range obj {
			if e.key != key {
				continue
			}
			if s, ok := e.val.(string); ok && s != "" {
				return normalizeKind(s), true
			}
		}
	}
	return "", false
}

func optionsOf(obj []entry) map[string]any {
	out := make(map[string]any, len(obj))
	for _, e := range obj {
		if e.key == "kind" || e.key == "type" {
			continue
		}
		out[e.key] = plainValue(e.val)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case []entry:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.key] = plainValue(e.val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// "Types.File" → "File"
func normalizeKind(s string) Kind {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return Kind(s)
}

func readYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return yamlValue(&root)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.MappingNode:
		out := make([]entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, entry{key: n.Content[i].Value, val: v})
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func readJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return v, err
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		out := make([]entry, 0)
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, errors.New("json object key is not a string")
			}
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, entry{key: key, val: v})
		}
		_, err = dec.Token() // '}'
		return out, err
	case '[':
		out := make([]any, 0)
		for dec.More() {
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		_, err = dec.Token() // ']'
		return out, err
	default:
		return nil, errors.New("unexpected json delimiter " + string(rune(d)))
	}
}
