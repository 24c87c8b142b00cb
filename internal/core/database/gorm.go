package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flickhub/internal/core/config"
	"flickhub/internal/core/logger"
	"flickhub/internal/domain"
)

type Opts struct {
	Driver             string
	DSN                string // used as-is when set
	Host               string
	Port               int
	User               string
	Password           string
	Name               string
	TLS                bool
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

var ErrUnsupportedDriver = errors.New("database: unsupported driver")

func OptsFromConfig(c config.DB) Opts {
	return Opts{
		Driver:             c.Driver,
		DSN:                c.DSN,
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		Name:               c.Name,
		TLS:                c.SSL,
		MaxOpenConns:       c.MaxOpenConns,
		MaxIdleConns:       c.MaxIdleConns,
		ConnMaxLifetimeMin: c.ConnMaxLifetimeMin,
		LogLevel:           c.LogLevel,
	}
}

// NewGorm opens the shared pool. The returned *gorm.DB lives for the whole process.
func NewGorm(o Opts, l *zap.Logger) (*gorm.DB, error) {
	dsn, err := BuildDSN(o)
	if err != nil {
		return nil, err
	}
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(dsn)
	case "mysql":
		dial = mysqldriver.Open(dsn)
	default:
		return nil, ErrUnsupportedDriver
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         newGormLogger(l, o.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true, // every write here is a single statement
	}), nil
}

func newGormLogger(l *zap.Logger, level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	return gormlogger.New(
		logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // keep password hashes out of the log
		},
	)
}

// BuildDSN assembles a driver DSN from discrete settings unless o.DSN is given.
func BuildDSN(o Opts) (string, error) {
	switch o.Driver {
	case "mysql":
		if o.DSN != "" {
			return normalizeMySQLDSN(o.DSN, o.User, o.Password)
		}
		cfg := mysql.NewConfig()
		cfg.User = o.User
		cfg.Passwd = o.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
		cfg.DBName = o.Name
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		if o.TLS {
			cfg.TLSConfig = "true"
		}
		return cfg.FormatDSN(), nil
	case "postgres":
		if o.DSN != "" {
			return o.DSN, nil
		}
		sslmode := "disable"
		if o.TLS {
			sslmode = "require"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(o.User, o.Password),
			Host:     net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
			Path:     "/" + o.Name,
			RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
		}
		return u.String(), nil
	default:
		return "", ErrUnsupportedDriver
	}
}

// normalizeMySQLDSN accepts either a go-sql-driver DSN or a mysql:// URL as handed out by
// hosting dashboards (including JDBC-style useSSL / serverTimezone params).
func normalizeMySQLDSN(input, userOverride, passOverride string) (string, error) {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		if _, err := mysql.ParseDSN(in); err != nil {
			return "", fmt.Errorf("database: invalid mysql dsn: %w", err)
		}
		return in, nil
	}

	u, err := url.Parse(in)
	if err != nil {
		return "", fmt.Errorf("database: invalid mysql url: %w", err)
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	if userOverride != "" {
		cfg.User = userOverride
	}
	if passOverride != "" {
		cfg.Passwd = passOverride
	}

	q := u.Query()
	switch strings.ToLower(q.Get("useSSL")) {
	case "true", "1":
		cfg.TLSConfig = "true"
	case "skip-verify":
		cfg.TLSConfig = "skip-verify"
	case "preferred":
		cfg.TLSConfig = "preferred"
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Loc = loc
		}
	}
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if cs := q.Get("characterEncoding"); cs != "" {
		cfg.Params["charset"] = cs
	}
	return cfg.FormatDSN(), nil
}

// mysqlTableOptions makes user_id and email compare byte-for-byte, so the primary key
// and unique email index treat "Alice1" and "alice1" as different users.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// Migrate creates the users table and its indexes if they are absent.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return migrateSession(db).WithContext(ctx).AutoMigrate(&domain.User{})
}

func migrateSession(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db
}

// Pinger returns a readiness probe for the pool.
func Pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Close releases the pool on shutdown.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
