// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"fmt"

	"github.com/go-arcade/qaboard/pkg/log"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Manager defines the unified database interface for managing MySQL and ClickHouse connections
type Manager interface {
	// MySQL returns the MySQL connection, nil when not configured
	MySQL() *gorm.DB

	// ClickHouse returns the ClickHouse connection, nil when not configured
	ClickHouse() *gorm.DB

	// Close closes all database connections
	Close() error
}

type managerImpl struct {
	mysql      *gorm.DB
	clickHouse *gorm.DB
}

func (m *managerImpl) MySQL() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) ClickHouse() *gorm.DB {
	return m.clickHouse
}

func (m *managerImpl) Close() error {
	var errs []error
	for name, db := range map[string]*gorm.DB{"mysql": m.mysql, "clickhouse": m.clickHouse} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// NewManager opens the configured connections without pinging them; the
// caller decides what an unreachable server means. Sources that are not
// configured are left nil.
func NewManager(cfg Database) (Manager, error) {
	cfg.SetDefaults()
	m := &managerImpl{}

	if cfg.MySQLEnabled() {
		db, err := newMySQLConnection(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL: %w", err)
		}
		m.mysql = db
		log.Infow("MySQL source configured", "host", cfg.MySQL.Host, "db", cfg.MySQL.DBName, "replicas", len(cfg.MySQL.Replicas))
	} else {
		log.Warn("MySQL source not configured, remote store disabled")
	}

	if cfg.ClickHouseEnabled() {
		db, err := NewClickHouseConnection(cfg.ClickHouse, cfg)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to open ClickHouse: %w", err)
		}
		m.clickHouse = db
		log.Infow("ClickHouse source configured", "host", cfg.ClickHouse.Host, "db", cfg.ClickHouse.DBName)
	}

	return m, nil
}

// newMySQLConnection creates a MySQL connection using GORM with DBResolver support
func newMySQLConnection(cfg Database) (*gorm.DB, error) {
	mc := cfg.MySQL
	dsn := buildMySQLDSN(mc.User, mc.Password, mc.Host, mc.Port, mc.DBName)

	db, err := gorm.Open(mysqlDialector(dsn), &gorm.Config{
		Logger:                 newGormLogger(cfg),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	if len(mc.Replicas) > 0 {
		replicas, err := buildDialectors(mc.Replicas)
		if err != nil {
			return nil, fmt.Errorf("failed to build replicas dialectors: %w", err)
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: cfg.OutPut,
		}).
			SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime)).
			SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetMaxOpenConns(cfg.MaxOpenConns))
		if err != nil {
			return nil, fmt.Errorf("failed to register DBResolver plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	return db, nil
}
