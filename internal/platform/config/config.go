package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath は CONFIG_PATH 未指定時の設定ファイルです。
	DefaultPath = "assets/local.yaml"
	// PathEnv は設定ファイルのパスを指定する環境変数名です。
	PathEnv = "CONFIG_PATH"
)

// ストレージドライバ。
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// HTTPConfig はデスクトップクライアント向け HTTP API の設定です。
type HTTPConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// StorageConfig は勤怠記録の保存先を選択します。
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Employees は memory ドライバで登録する社員です。
	Employees []EmployeeSeed `yaml:"employees"`
}

// EmployeeSeed は memory ドライバ用の社員データです。
type EmployeeSeed struct {
	ID           string `yaml:"id"`
	EmployeeCode string `yaml:"employee_code"`
	FirstName    string `yaml:"first_name"`
	MiddleName   string `yaml:"middle_name"`
	LastName     string `yaml:"last_name"`
	Position     string `yaml:"position"`
	Division     string `yaml:"division"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// AttendanceConfig は打刻判定に関する設定です。時刻はいずれも time_zone における時です。
type AttendanceConfig struct {
	TimeZone         string `yaml:"time_zone"`
	AMStartHour      *int   `yaml:"am_start_hour"`
	AMCutoffHour     *int   `yaml:"am_cutoff_hour"`
	PMStartHour      *int   `yaml:"pm_start_hour"`
	PMCutoffHour     *int   `yaml:"pm_cutoff_hour"`
	AllowBackfill    bool   `yaml:"allow_backfill"`
	MaxWriteAttempts int    `yaml:"max_write_attempts"`
	RecentLimit      int    `yaml:"recent_limit"`
}

// LoggingConfig はログ出力の設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ResolvePath は .env を読み込んだうえで設定ファイルのパスを決定します。
// .env が存在しない場合は無視します。
func ResolvePath(envFiles ...string) (string, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("config: load env file %s: %w", f, err)
		}
	}

	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p, nil
	}
	return DefaultPath, nil
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverPostgres
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver)
	}

	if c.Storage.Driver == DriverPostgres {
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	} else {
		for i, seed := range c.Storage.Employees {
			if seed.ID == "" {
				return fmt.Errorf("config: storage.employees[%d].id must be set", i)
			}
		}
	}

	if err := c.Attendance.validateAndNormalize(); err != nil {
		return err
	}

	return c.Logging.validateAndNormalize()
}

func (h *HTTPConfig) validateAndNormalize() error {
	if h.ListenAddr == "" {
		return fmt.Errorf("config: http.listen_addr must be set")
	}

	read, err := parseDurationAllowEmpty(h.ReadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: http.read_timeout: %w", err)
	}
	h.ReadTimeout = read

	write, err := parseDurationAllowEmpty(h.WriteTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: http.write_timeout: %w", err)
	}
	h.WriteTimeout = write

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.TimeZone == "" {
		a.TimeZone = "Local"
	}
	if _, err := time.LoadLocation(a.TimeZone); err != nil {
		return fmt.Errorf("config: attendance.time_zone: %w", err)
	}

	defaultHour(&a.AMStartHour, 8)
	defaultHour(&a.AMCutoffHour, 12)
	defaultHour(&a.PMStartHour, 13)
	defaultHour(&a.PMCutoffHour, 17)

	amStart, amCutoff, pmStart, pmCutoff := *a.AMStartHour, *a.AMCutoffHour, *a.PMStartHour, *a.PMCutoffHour
	if amStart < 0 || amStart >= amCutoff || amCutoff > pmStart || pmStart >= pmCutoff || pmCutoff > 24 {
		return fmt.Errorf("config: attendance hours must satisfy 0 <= am_start_hour < am_cutoff_hour <= pm_start_hour < pm_cutoff_hour <= 24, got %d/%d/%d/%d",
			amStart, amCutoff, pmStart, pmCutoff)
	}

	if a.MaxWriteAttempts < 0 {
		return fmt.Errorf("config: attendance.max_write_attempts must not be negative")
	}
	if a.MaxWriteAttempts == 0 {
		a.MaxWriteAttempts = 3
	}
	if a.RecentLimit < 0 {
		return fmt.Errorf("config: attendance.recent_limit must not be negative")
	}
	if a.RecentLimit == 0 {
		a.RecentLimit = 40
	}
	return nil
}

func (l *LoggingConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level must be one of debug, info, warn, error, got %q", l.Level)
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("config: logging.format must be json or text, got %q", l.Format)
	}
	return nil
}

func defaultHour(v **int, def int) {
	if *v == nil {
		h := def
		*v = &h
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
