package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/logx"
	"attachkeeper/modules/kit/tracex"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	defaultPublicURL      = "/images/"
	defaultVirtualPropKey = "src"

	actionValidate = "attachment.validate"
)

// Options 在宿主启动时构造一次，之后只读。
type Options struct {
	// PublicURL 是对外访问文件的 URL 前缀，文件 URL = PublicURL + 类型 + 文件名。
	PublicURL string
	// VirtualPropKey 是 PublicURLs 结果里挂在字段路径后面的键，例如 meta.icon.src。
	VirtualPropKey string
	// UploadedFilesStorage 是存储里所有类型目录的根。
	UploadedFilesStorage string
}

func (o Options) withDefaults() Options {
	if o.PublicURL == "" {
		o.PublicURL = defaultPublicURL
	}
	if o.VirtualPropKey == "" {
		o.VirtualPropKey = defaultVirtualPropKey
	}
	return o
}

// Hooks 是交给宿主持久化流程的三个挂载点，必须按 加载 → 保存前 → 提交后 的顺序调用。
type Hooks struct {
	OnLoad     func(ctx context.Context, rec *domain.Record)
	BeforeSave func(ctx context.Context, rec *domain.Record) error
	AfterSave  func(ctx context.Context, rec *domain.Record) int
}

// Registry 持有所有已注册记录类型的生命周期。
type Registry struct {
	opts    Options
	storage Storage
	log     Logger

	mu    sync.RWMutex
	types map[string]*Lifecycle
}

func NewRegistry(opts Options, storage Storage, log Logger) *Registry {
	if log == nil {
		log = logx.Nop()
	}
	return &Registry{
		opts:    opts.withDefaults(),
		storage: storage,
		log:     log,
		types:   make(map[string]*Lifecycle),
	}
}

// Register 在声明记录类型时调用一次：计算存储目录，找出所有文件字段。
func (r *Registry) Register(typeID string, blocks ...domain.Schema) (*Lifecycle, error) {
	folder, err := domain.FolderName(r.opts.UploadedFilesStorage, typeID)
	if err != nil {
		return nil, err
	}
	publicFolder, err := domain.NormalizePath(r.opts.PublicURL + typeID)
	if err != nil {
		return nil, err
	}

	leaves := domain.FindBlockLeaves(blocks, domain.IsFile)
	fields := make([]string, 0, len(leaves))
	seen := make(map[string]struct{}, len(leaves))
	for _, leaf := range leaves {
		f := domain.TrimBlockIndex(leaf.Path)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	l := &Lifecycle{
		typeID:       typeID,
		folder:       folder,
		publicFolder: publicFolder,
		virtualKey:   r.opts.VirtualPropKey,
		leaves:       leaves,
		fields:       fields,
		storage:      r.storage,
		log:          r.log,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[typeID]; exists {
		return nil, domain.ErrInvalidInput.WithMsg("记录类型重复注册").WithData("type", typeID)
	}
	r.types[typeID] = l

	r.log.Info("record type registered",
		zap.String("type", typeID),
		zap.String("folder", folder),
		zap.Strings("file_fields", fields),
	)
	return l, nil
}

func (r *Registry) Lookup(typeID string) (*Lifecycle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.types[typeID]
	return l, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterFileLifecycle 注册类型并返回三个钩子，由宿主显式挂到自己的持久化流程上。
func RegisterFileLifecycle(reg *Registry, typeID string, blocks ...domain.Schema) (Hooks, error) {
	l, err := reg.Register(typeID, blocks...)
	if err != nil {
		return Hooks{}, err
	}
	return l.Hooks(), nil
}

// Lifecycle 是一种记录类型的附件生命周期，注册后不可变，可被并发使用；
// 每条记录的状态（快照）挂在 domain.Record 实例上。
type Lifecycle struct {
	typeID       string
	folder       string
	publicFolder string
	virtualKey   string
	leaves       []domain.Leaf
	fields       []string
	storage      Storage
	log          Logger
}

func (l *Lifecycle) TypeID() string { return l.typeID }

// Folder 是该类型在存储里的目录，形如 /uploads/images/page/。
func (l *Lifecycle) Folder() string { return l.folder }

func (l *Lifecycle) VirtualPropKey() string { return l.virtualKey }

// FileFields 返回记录上的文件字段路径（不含块下标）。
func (l *Lifecycle) FileFields() []string {
	out := make([]string, len(l.fields))
	copy(out, l.fields)
	return out
}

// Leaves 返回字段定义里的文件叶子（含块下标和声明信息）。
func (l *Lifecycle) Leaves() []domain.Leaf {
	out := make([]domain.Leaf, len(l.leaves))
	copy(out, l.leaves)
	return out
}

func (l *Lifecycle) Hooks() Hooks {
	return Hooks{
		OnLoad:     l.OnLoad,
		BeforeSave: l.BeforeSave,
		AfterSave:  l.AfterSave,
	}
}

// OnLoad 在记录从存储加载后、调用方修改之前执行，记下每个文件字段当前的文件名。
func (l *Lifecycle) OnLoad(ctx context.Context, rec *domain.Record) {
	if rec == nil {
		return
	}
	ctx = cycleContext(ctx, rec)
	s := domain.Populate(rec, l.fields)
	rec.Remember(s)
	l.log.WithContext(ctx).Debug("attachment snapshot taken",
		zap.String("type", l.typeID),
		zap.Strings("paths", s.Paths()),
	)
}

// BeforeSave 执行存在性校验，返回错误时宿主必须中止持久化并把错误交给发起保存的调用方。
func (l *Lifecycle) BeforeSave(ctx context.Context, rec *domain.Record) error {
	ctx = cycleContext(ctx, rec)
	err := Validate(ctx, rec, l.fields, l.folder, StorageExists(l.storage))
	for _, e := range multierr.Errors(err) {
		var de *domain.Error
		if errors.As(e, &de) && de.IsBiz() {
			logx.ReportBizWithLoggerContext(ctx, l.log, logx.NewBizLog(actionValidate, de.CodeText(), de.Msg()),
				zap.Any("error_data", de.Data()))
			continue
		}
		logx.ReportSysErrorWithLoggerContext(ctx, l.log, logx.NewSysLog(actionValidate, e))
	}
	return err
}

// AfterSave 在保存提交之后对每个文件字段独立执行孤儿清理，然后丢弃快照。返回删除的文件数。
func (l *Lifecycle) AfterSave(ctx context.Context, rec *domain.Record) int {
	if rec == nil {
		return 0
	}
	ctx = cycleContext(ctx, rec)
	snap := rec.Snapshot()
	deleted := 0
	for _, f := range l.fields {
		var next *domain.Attachment
		if a, ok := domain.AttachmentOf(domain.Get(rec.Fields, f)); ok {
			next = &a
		}
		var prev *domain.Attachment
		if a, ok := snap.Previous(f); ok {
			prev = &a
		}
		if Reap(ctx, next, l.folder, prev, l.storage, l.log) {
			deleted++
		}
	}
	rec.Forget()
	return deleted
}

func cycleContext(ctx context.Context, rec *domain.Record) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := tracex.CycleIDFrom(ctx); !ok {
		ctx = tracex.WithCycleID(ctx, tracex.NewTraceID())
	}
	if rec != nil && rec.ID != "" {
		ctx = tracex.WithRecordID(ctx, rec.ID)
	}
	return ctx
}
