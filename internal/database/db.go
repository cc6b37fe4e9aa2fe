package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdimtricp/damagecheck/pkg/log"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

type DB struct {
	gorm   *gorm.DB
	conn   *sql.DB
	dbType string
}

type Config struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

func NewDB(config Config, logger *zap.Logger) (*DB, error) {
	var dialector gorm.Dialector

	switch config.Type {
	case TypeSQLite:
		dialector = sqlite.Open(config.SQLitePath + "?_busy_timeout=5000")
	case TypePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Name)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: log.Gorm(logger), TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	db := &DB{gorm: gdb, conn: conn, dbType: config.Type}

	// Postgres schema comes from migrations
	if config.Type == TypeSQLite {
		conn.SetMaxOpenConns(1)
		if err := gdb.AutoMigrate(&assessmentRecord{}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) GORM() *gorm.DB {
	return db.gorm
}

func (db *DB) Type() string {
	return db.dbType
}
