package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wfunc/ggst-notebot/internal/errors"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Bot      BotConfig      `mapstructure:"bot"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Security SecurityConfig `mapstructure:"security"`
	System   SystemConfig   `mapstructure:"system"`
}

// ServerConfig HTTP服务配置（健康检查与管理接口）
type ServerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DiscordConfig Discord连接配置
type DiscordConfig struct {
	Token         string        `mapstructure:"token"`
	ClientID      string        `mapstructure:"client_id"`
	GuildID       string        `mapstructure:"guild_id"` // 为空时注册为全局命令
	LoginAttempts int           `mapstructure:"login_attempts"`
	LoginBaseWait time.Duration `mapstructure:"login_base_wait"`
	LoginMaxWait  time.Duration `mapstructure:"login_max_wait"`
}

// BotConfig 机器人行为配置
type BotConfig struct {
	CharacterCacheTTL time.Duration `mapstructure:"character_cache_ttl"`
	AutocompleteLimit int           `mapstructure:"autocomplete_limit"`
	HistoryLimit      int           `mapstructure:"history_limit"`
	HistoryMaxLimit   int           `mapstructure:"history_max_limit"`
	CommandTimeout    time.Duration `mapstructure:"command_timeout"`
}

// BackupConfig 备份配置
type BackupConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Keep     int           `mapstructure:"keep"`
}

// StorageConfig 备份镜像存储配置
type StorageConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

// S3Config S3兼容对象存储配置
type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Prefix          string `mapstructure:"prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig 管理接口JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// SystemConfig 系统配置
type SystemConfig struct {
	Timezone string `mapstructure:"timezone"`
	MaxProcs int    `mapstructure:"max_procs"`
}

// Address 返回HTTP监听地址
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		// .env 不存在时忽略
		_ = godotenv.Load()

		var loaded *Config
		v, loaded, err = Load(configPath)
		if err != nil {
			return
		}

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// Load 读取并校验配置，不影响全局实例
func Load(configPath string) (*viper.Viper, *Config, error) {
	v := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 设置环境变量前缀
	v.SetEnvPrefix("GGST_NOTEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容旧部署使用的环境变量
	bindLegacyEnv(v)

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在，使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, errors.Wrap(err, errors.ErrConfigLoad)
		}
	}

	// 解析配置到结构体
	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrConfigParse)
	}

	if err := loaded.Validate(); err != nil {
		return nil, nil, err
	}

	return v, loaded, nil
}

// bindLegacyEnv 绑定旧版环境变量名
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("discord.token", "GGST_NOTEBOT_DISCORD_TOKEN", "DISCORD_TOKEN")
	_ = v.BindEnv("discord.client_id", "GGST_NOTEBOT_DISCORD_CLIENT_ID", "DISCORD_CLIENT_ID")
	_ = v.BindEnv("discord.guild_id", "GGST_NOTEBOT_DISCORD_GUILD_ID", "DISCORD_GUILD_ID")
	_ = v.BindEnv("server.port", "GGST_NOTEBOT_SERVER_PORT", "PORT")
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// HTTP服务默认配置
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/ggst-notebot.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", "500ms")
	v.SetDefault("database.auto_migrate", true)

	// Discord默认配置
	v.SetDefault("discord.login_attempts", 5)
	v.SetDefault("discord.login_base_wait", "5s")
	v.SetDefault("discord.login_max_wait", "300s")

	// 机器人默认配置
	v.SetDefault("bot.character_cache_ttl", "1h")
	v.SetDefault("bot.autocomplete_limit", 25)
	v.SetDefault("bot.history_limit", 10)
	v.SetDefault("bot.history_max_limit", 50)
	v.SetDefault("bot.command_timeout", "10s")

	// 备份默认配置
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.keep", 5)

	// 对象存储默认配置
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.region", "auto")
	v.SetDefault("storage.s3.prefix", "backups")

	// 安全默认配置
	v.SetDefault("security.jwt.issuer", "ggst-notebot")
	v.SetDefault("security.jwt.expire_hours", 24)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "ggst-notebot.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("system.timezone", "Asia/Tokyo")
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Backup.Keep <= 0 {
		return errors.Newf(errors.ErrConfigValidate, "backup.keep 必须大于0: %d", c.Backup.Keep)
	}
	if c.Backup.Enabled && c.Backup.Interval <= 0 {
		return errors.New(errors.ErrConfigValidate, "backup.interval 必须大于0")
	}
	if c.Bot.AutocompleteLimit <= 0 || c.Bot.AutocompleteLimit > 25 {
		return errors.Newf(errors.ErrConfigValidate, "bot.autocomplete_limit 必须在1到25之间: %d", c.Bot.AutocompleteLimit)
	}
	if c.Bot.HistoryLimit > c.Bot.HistoryMaxLimit {
		return errors.New(errors.ErrConfigValidate, "bot.history_limit 不能大于 bot.history_max_limit")
	}
	if c.Discord.LoginAttempts <= 0 {
		return errors.New(errors.ErrConfigValidate, "discord.login_attempts 必须大于0")
	}
	if c.Storage.S3.Enabled && c.Storage.S3.Bucket == "" {
		return errors.New(errors.ErrConfigValidate, "启用S3镜像时必须配置 storage.s3.bucket")
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Println("配置已重新加载")
	})
}

// ConfigFileUsed 返回实际使用的配置文件
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
