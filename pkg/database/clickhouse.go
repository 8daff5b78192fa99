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
	"fmt"

	chgorm "gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

// NewClickHouseConnection creates a ClickHouse GORM connection. Like MySQL it
// is opened lazily.
func NewClickHouseConnection(chCfg ClickHouseConfig, commonCfg Database) (*gorm.DB, error) {
	port := chCfg.Port
	if port == 0 {
		port = 9000
	}
	dialTimeout := chCfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10
	}
	readTimeout := chCfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 20
	}

	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s?dial_timeout=%ds&read_timeout=%ds",
		chCfg.Username, chCfg.Password, chCfg.Host, port, chCfg.DBName, dialTimeout, readTimeout)

	db, err := gorm.Open(chgorm.New(chgorm.Config{
		DSN:                       dsn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 newGormLogger(commonCfg),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(commonCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(commonCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(commonCfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(commonCfg.MaxIdleTime))

	return db, nil
}
