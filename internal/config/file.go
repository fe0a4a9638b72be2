package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig はCONFIG_FILEで指定されるYAMLファイルの構造。
// シークレット以外の設定のみを持つ。読み込み後に Config へコピーする。
type fileConfig struct {
	Port           string   `yaml:"port"`
	Resources      []string `yaml:"resources"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Store          struct {
		Driver             string `yaml:"driver"`
		SQLitePath         string `yaml:"sqlite_path"`
		DatabaseDSN        string `yaml:"database_dsn"`
		FirestoreProjectID string `yaml:"firestore_project_id"`
		Timeout            string `yaml:"timeout"`
	} `yaml:"store"`
	AuditDBPath string `yaml:"audit_db_path"`
}

// applyFile はYAMLファイルを読み込み、指定された値だけを cfg に反映する。
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("設定ファイルのパースに失敗: %w", err)
	}

	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if len(fc.Resources) > 0 {
		resources, err := parseResources(fc.Resources)
		if err != nil {
			return err
		}
		cfg.Resources = resources
	}
	if fc.AllowedOrigins != nil {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if v := strings.ToLower(strings.TrimSpace(fc.Store.Driver)); v != "" {
		cfg.StoreDriver = StoreDriver(v)
	}
	if fc.Store.SQLitePath != "" {
		cfg.SQLitePath = fc.Store.SQLitePath
	}
	if fc.Store.DatabaseDSN != "" {
		cfg.DatabaseDSN = fc.Store.DatabaseDSN
	}
	if fc.Store.FirestoreProjectID != "" {
		cfg.FirestoreProjectID = fc.Store.FirestoreProjectID
	}
	if fc.Store.Timeout != "" {
		d, err := time.ParseDuration(fc.Store.Timeout)
		if err != nil {
			return fmt.Errorf("store.timeout の値 %q が不正です: %w", fc.Store.Timeout, err)
		}
		cfg.StoreTimeout = d
	}
	if fc.AuditDBPath != "" {
		cfg.AuditDBPath = fc.AuditDBPath
	}
	return nil
}
