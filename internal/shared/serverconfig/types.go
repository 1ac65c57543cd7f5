package serverconfig

import "time"

type Config struct {
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	MySQL       MySQLConfig       `yaml:"mysql" mapstructure:"mysql"`
	MongoDB     MongoDBConfig     `yaml:"mongodb" mapstructure:"mongodb"`
	HTTPServer  HTTPServerConfig  `yaml:"httpserver" mapstructure:"httpserver"`
	Attachment  AttachmentConfig  `yaml:"attachment" mapstructure:"attachment"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Persistence PersistenceConfig `yaml:"persistence" mapstructure:"persistence"`
	// Schemas 是 记录类型 → 字段定义文件（yaml/json）的映射，相对路径相对于配置文件所在目录
	Schemas map[string]string `yaml:"schemas" mapstructure:"schemas"`
	NodeID  int64             `yaml:"node_id" mapstructure:"node_id"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	// SlowThreshold 超过该耗时的 SQL 记 WARN
	SlowThreshold time.Duration `yaml:"slow_threshold" mapstructure:"slow_threshold"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// AttachmentConfig 对应附件生命周期的全局选项，启动时读一次。
type AttachmentConfig struct {
	PublicURL            string `yaml:"public_url" mapstructure:"public_url"`
	VirtualPropKey       string `yaml:"virtual_prop_key" mapstructure:"virtual_prop_key"`
	UploadedFilesStorage string `yaml:"uploaded_files_storage" mapstructure:"uploaded_files_storage"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // fs / gridfs
	Root   string `yaml:"root" mapstructure:"root"`     // fs 驱动的磁盘根目录
	Bucket string `yaml:"bucket" mapstructure:"bucket"` // gridfs 驱动的 bucket 名
}

type PersistenceConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // mysql / mongodb
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}
