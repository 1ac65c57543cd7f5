package config

import (
	"strings"

	"attachkeeper/modules/kit/errx"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const EnvPrefix = "ATTACHD"

// Loader 读取一个配置文件到 out，环境变量 ATTACHD_<KEY> 覆盖文件里的值（嵌套键用 _ 连接）。
type Loader struct {
	v    *viper.Viper
	path string
}

func New(configPath string) *Loader {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, path: configPath}
}

// SetDefault 给没有出现在配置文件里的键设置默认值，环境变量覆盖只对已知键生效。
func (l *Loader) SetDefault(key string, value any) {
	l.v.SetDefault(key, value)
}

func (l *Loader) Load(out any) error {
	if err := l.v.ReadInConfig(); err != nil {
		return errx.ErrMissingConfiguration.WithMsg("读取配置失败").WithData("path", l.path).WithCause(err)
	}
	return l.decode(out)
}

// Watch 在配置文件变化时重新解码到 out 并回调 onChange；解码失败时 out 保持旧值。
// onChange 在 fsnotify 的 goroutine 里执行。
func (l *Loader) Watch(newOut func() any, onChange func(cfg any, err error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		out := newOut()
		err := l.decode(out)
		if err != nil {
			err = errx.ErrMissingConfiguration.WithData("event", e.String()).WithCause(err)
		}
		onChange(out, err)
	})
	l.v.WatchConfig()
}

func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) decode(out any) error {
	err := l.v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return errx.ErrMissingConfiguration.WithMsg("解析配置失败").WithData("path", l.path).WithCause(err)
	}
	return nil
}
