package handler

import (
	"context"
	"errors"
	"mime"
	nethttp "net/http"
	"path"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// RegisterStatic 把存储里的类型目录挂到 publicURL 下，fs 是以 uploaded_files_storage 为根的文件系统。
func RegisterStatic(r gin.IRouter, publicURL string, fs nethttp.FileSystem) error {
	prefix, err := domain.NormalizePath(publicURL)
	if err != nil {
		return err
	}
	r.StaticFS(prefix, fs)
	return nil
}

// Opener 按存储里的完整路径打开文件。
type Opener interface {
	Open(ctx context.Context, fullPath string) (*mongo.GridFSDownloadStream, error)
}

// RegisterGridFS 把 GridFS 里的文件挂到 publicURL 下，URL 的 /<type>/<filename> 对应存储里的 <storageRoot>/<type>/<filename>。
func RegisterGridFS(r gin.IRouter, publicURL, storageRoot string, files Opener, log logx.Logger) error {
	prefix, err := domain.NormalizePath(publicURL)
	if err != nil {
		return err
	}
	root, err := domain.NormalizePath(storageRoot)
	if err != nil {
		return err
	}
	if log == nil {
		log = logx.Nop()
	}

	r.GET(prefix+"*filepath", func(c *gin.Context) {
		rel := path.Clean("/" + c.Param("filepath"))
		fullPath := root + rel[1:]
		stream, err := files.Open(c.Request.Context(), fullPath)
		if err != nil {
			if errors.Is(err, mongo.ErrFileNotFound) {
				c.Status(nethttp.StatusNotFound)
				return
			}
			status, resp := toResp(c.Request.Context(), log, "file.get", err)
			c.AbortWithStatusJSON(status, resp)
			return
		}
		defer stream.Close()

		contentType := mime.TypeByExtension(path.Ext(fullPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(nethttp.StatusOK, stream.GetFile().Length, contentType, stream, nil)
	})
	return nil
}
