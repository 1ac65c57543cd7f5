package dto

// SaveRecordReq 是创建/更新记录的请求体，fields 整体替换记录上的字段。
type SaveRecordReq struct {
	Fields map[string]any `json:"fields"`
}

type RecordRsp struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Fields map[string]any    `json:"fields"`
	URLs   map[string]string `json:"urls"`
}

type FileFieldsRsp struct {
	Type   string   `json:"type"`
	Folder string   `json:"folder"`
	Fields []string `json:"fields"`
}

// Resp 是统一响应体，code 为 0 表示成功，否则与 HTTP 状态码对齐。
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}
