package app

import (
	"bytes"
	"context"
	"io"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"
	"attachkeeper/modules/kit/logx"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	actionAttach = "attachment.attach"

	// mimetype 默认只看前 3072 字节
	sniffLen = 3072
)

// Attach 把上传内容写进该类型目录，并把附件信息写到记录的 field 上。
// 不做持久化，调用方之后照常走 Save，BeforeSave 会确认文件确实已落盘。
func (l *Lifecycle) Attach(ctx context.Context, rec *domain.Record, field string, upload *domain.Upload, r io.Reader) (domain.Attachment, error) {
	if rec == nil || r == nil {
		return domain.Attachment{}, domain.ErrInvalidInput.WithMsg("缺少记录或文件内容")
	}
	if !l.hasField(field) {
		return domain.Attachment{}, domain.ErrInvalidInput.WithMsg("字段不是文件字段").
			WithData("type", l.typeID).
			WithData("field", field)
	}
	ctx = cycleContext(ctx, rec)

	name, err := domain.GenerateFilename(rec.ID, upload)
	if err != nil {
		return domain.Attachment{}, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return domain.Attachment{}, errx.ErrUnavailable.WithData("field", field).WithCause(err)
	}
	head = head[:n]

	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = mimetype.Detect(head).String()
	}

	body := &countingReader{r: io.MultiReader(bytes.NewReader(head), r)}
	fullPath := l.folder + name
	if err = l.storage.Put(ctx, fullPath, body); err != nil {
		e := errx.ErrUnavailable.WithData("path", fullPath).WithCause(err)
		logx.ReportSysErrorWithLoggerContext(ctx, l.log, logx.NewSysLog(actionAttach, e))
		return domain.Attachment{}, e
	}

	value := map[string]any{
		"filename":     name,
		"originalname": upload.OriginalName,
		"mimetype":     mimeType,
		"size":         body.n,
	}
	if err = domain.Set(rec.Fields, field, value); err != nil {
		return domain.Attachment{}, err
	}

	l.log.WithContext(ctx).Info("file attached",
		zap.String("field", field),
		zap.String("path", fullPath),
		zap.String("mimetype", mimeType),
		zap.String("size", humanize.Bytes(uint64(body.n))),
	)
	return domain.Attachment{Filename: name}, nil
}

// PublicURLs 返回每个已有附件的文件字段对外访问的 URL，键为 <字段路径>.<VirtualPropKey>。
func (l *Lifecycle) PublicURLs(rec *domain.Record) (map[string]string, error) {
	out := make(map[string]string, len(l.fields))
	if rec == nil {
		return out, nil
	}
	for _, f := range l.fields {
		a, ok := domain.AttachmentOf(domain.Get(rec.Fields, f))
		if !ok || a.Filename == "" {
			continue
		}
		u, err := domain.CompletePathToFile(a.Filename, l.publicFolder)
		if err != nil {
			return nil, err
		}
		out[f+"."+l.virtualKey] = u
	}
	return out, nil
}

func (l *Lifecycle) hasField(field string) bool {
	for _, f := range l.fields {
		if f == field {
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
