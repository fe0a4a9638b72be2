// Package migration はSQLiteデータベースのマイグレーションを管理する。
// fs.FS（通常はembed.FS）からSQLファイルを読み込み、バージョン管理テーブルで適用状態を追跡する。
//
// 取引ストアと監査ログはそれぞれ別のSQLiteファイルを持ち、ファイルごとに適用状態を管理する。
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
)

// upSuffix はマイグレーションとして扱うファイルの接尾辞。
const upSuffix = ".up.sql"

// ErrInvalidFileName は ".up.sql" で終わるのに命名規則に従わないファイルがある場合に返される。
var ErrInvalidFileName = errors.New("マイグレーションファイル名が不正です")

// ErrDuplicateVersion は同じバージョン番号のファイルが複数ある場合に返される。
var ErrDuplicateVersion = errors.New("マイグレーションのバージョンが重複しています")

// Run はマイグレーションファイルを順序通りに適用する。
// 未適用のマイグレーションのみ実行し、適用済みのものはスキップする。
// ファイル名形式: 000001_description.up.sql
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	migrations, err := collectMigrations(fsys, dir)
	if err != nil {
		return fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	if err := ensureMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	applied, err := getAppliedVersions(ctx, db)
	if err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		if err := applyMigration(ctx, db, fsys, m); err != nil {
			return fmt.Errorf("マイグレーション %06d の適用に失敗: %w", m.version, err)
		}
		log.Printf("[Migration] マイグレーション %06d_%s を適用しました", m.version, m.name)
	}

	return nil
}

type migrationFile struct {
	version int
	name    string
	path    string
}

// ensureMigrationsTable はバージョン管理テーブルを作成する。
func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

// getAppliedVersions は適用済みのマイグレーションバージョンを取得する。
func getAppliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// collectMigrations はディレクトリからup.sqlファイルを収集してバージョン順にソートする。
// 命名規則に従わないファイルや重複したバージョンは黙って無視せずにエラーにする。
func collectMigrations(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]string)
	var migrations []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}

		m, err := parseFileName(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[m.version]; ok {
			return nil, fmt.Errorf("%s と %s: %w", prev, entry.Name(), ErrDuplicateVersion)
		}
		seen[m.version] = entry.Name()

		m.path = path.Join(dir, entry.Name())
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}

// parseFileName は "000001_description.up.sql" からバージョンと名前を取り出す。
func parseFileName(fileName string) (migrationFile, error) {
	versionPart, rest, ok := strings.Cut(fileName, "_")
	if !ok {
		return migrationFile{}, fmt.Errorf("%s: %w", fileName, ErrInvalidFileName)
	}

	version, err := strconv.Atoi(versionPart)
	if err != nil || version <= 0 {
		return migrationFile{}, fmt.Errorf("%s: %w", fileName, ErrInvalidFileName)
	}

	name := strings.TrimSuffix(rest, upSuffix)
	if name == "" {
		return migrationFile{}, fmt.Errorf("%s: %w", fileName, ErrInvalidFileName)
	}
	return migrationFile{version: version, name: name}, nil
}

// applyMigration は1つのマイグレーションをトランザクション内で適用する。
func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, m migrationFile) error {
	content, err := fs.ReadFile(fsys, m.path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name,
	); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}

	return tx.Commit()
}
