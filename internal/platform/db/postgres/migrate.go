package postgres

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator は golang-migrate を用いてスキーマを管理します。
type Migrator struct {
	m *migrate.Migrate
}

// MigrationVersion は適用済みマイグレーションの状態です。
type MigrationVersion struct {
	Version uint
	Dirty   bool
	// Applied は 1 件以上適用済みかを示します。
	Applied bool
}

// NewMigrator は dir 配下の SQL ファイルを dsn に適用する Migrator を生成します。
func NewMigrator(dir, dsn string) (*Migrator, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up は未適用のマイグレーションをすべて適用します。
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate up: %w", err)
	}
	return nil
}

// Down はすべてのマイグレーションを巻き戻します。
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate down: %w", err)
	}
	return nil
}

// Drop はデータベース内のすべてのオブジェクトを削除します。
func (m *Migrator) Drop() error {
	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("postgres: migrate drop: %w", err)
	}
	return nil
}

// Version は現在のバージョンを返します。
func (m *Migrator) Version() (MigrationVersion, error) {
	version, dirty, err := m.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationVersion{}, nil
		}
		return MigrationVersion{}, fmt.Errorf("postgres: migrate version: %w", err)
	}
	return MigrationVersion{Version: version, Dirty: dirty, Applied: true}, nil
}

// Close はソースとデータベースの接続を閉じます。
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
