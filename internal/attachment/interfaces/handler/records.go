package handler

import (
	"context"
	nethttp "net/http"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/internal/attachment/domain"
	"attachkeeper/internal/attachment/interfaces/dto"
	"attachkeeper/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

// RecordStore 是记录仓储，mysql 和 mongodb 两种实现都满足。
type RecordStore interface {
	New(typeID string) (*domain.Record, error)
	Load(ctx context.Context, typeID, id string) (*domain.Record, error)
	Save(ctx context.Context, rec *domain.Record) error
}

type Records struct {
	reg   *app.Registry
	store RecordStore
	log   logx.Logger
}

func NewRecords(reg *app.Registry, store RecordStore, log logx.Logger) *Records {
	if log == nil {
		log = logx.Nop()
	}
	return &Records{reg: reg, store: store, log: log}
}

func (h *Records) RegisterRoutes(r gin.IRouter) {
	r.GET("/types", h.listTypes)
	r.GET("/types/:type/fields", h.fileFields)

	g := r.Group("/records/:type")
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
}

func (h *Records) listTypes(c *gin.Context) {
	c.JSON(nethttp.StatusOK, dto.Resp{Data: h.reg.Types()})
}

func (h *Records) fileFields(c *gin.Context) {
	l, ok := h.lifecycle(c)
	if !ok {
		return
	}
	c.JSON(nethttp.StatusOK, dto.Resp{Data: dto.FileFieldsRsp{
		Type:   l.TypeID(),
		Folder: l.Folder(),
		Fields: l.FileFields(),
	}})
}

func (h *Records) get(c *gin.Context) {
	l, ok := h.lifecycle(c)
	if !ok {
		return
	}
	rec, err := h.store.Load(c.Request.Context(), l.TypeID(), c.Param("id"))
	if err != nil {
		h.fail(c, "record.get", err)
		return
	}
	h.reply(c, nethttp.StatusOK, l, rec)
}

func (h *Records) create(c *gin.Context) {
	l, ok := h.lifecycle(c)
	if !ok {
		return
	}
	var req dto.SaveRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "record.create", domain.ErrInvalidInput.WithMsg("请求体不是合法 JSON").WithCause(err))
		return
	}

	rec, err := h.store.New(l.TypeID())
	if err != nil {
		h.fail(c, "record.create", err)
		return
	}
	if req.Fields != nil {
		rec.Fields = req.Fields
	}
	if err = h.store.Save(c.Request.Context(), rec); err != nil {
		h.fail(c, "record.create", err)
		return
	}
	h.reply(c, nethttp.StatusCreated, l, rec)
}

// update 先加载再整体替换字段，加载时拿到的快照用于保存后清理被替换的文件。
func (h *Records) update(c *gin.Context) {
	l, ok := h.lifecycle(c)
	if !ok {
		return
	}
	var req dto.SaveRecordReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Fields == nil {
		h.fail(c, "record.update", domain.ErrInvalidInput.WithMsg("缺少 fields"))
		return
	}

	ctx := c.Request.Context()
	rec, err := h.store.Load(ctx, l.TypeID(), c.Param("id"))
	if err != nil {
		h.fail(c, "record.update", err)
		return
	}
	rec.Fields = req.Fields
	if err = h.store.Save(ctx, rec); err != nil {
		h.fail(c, "record.update", err)
		return
	}
	h.reply(c, nethttp.StatusOK, l, rec)
}

func (h *Records) lifecycle(c *gin.Context) (*app.Lifecycle, bool) {
	typeID := c.Param("type")
	l, ok := h.reg.Lookup(typeID)
	if !ok {
		h.fail(c, "record.type", domain.ErrRecordNotFound.WithMsg("未注册的记录类型").WithData("type", typeID))
		return nil, false
	}
	return l, true
}

func (h *Records) reply(c *gin.Context, status int, l *app.Lifecycle, rec *domain.Record) {
	urls, err := l.PublicURLs(rec)
	if err != nil {
		h.fail(c, "record.urls", err)
		return
	}
	c.JSON(status, dto.Resp{Data: dto.RecordRsp{
		ID:     rec.ID,
		Type:   rec.Type,
		Fields: rec.Fields,
		URLs:   urls,
	}})
}

func (h *Records) fail(c *gin.Context, action string, err error) {
	status, resp := toResp(c.Request.Context(), h.log, action, err)
	c.AbortWithStatusJSON(status, resp)
}
