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
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// SourceConfig represents a single database source/replica
type SourceConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// MySQLConfig represents MySQL data source configuration
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	// Replicas 为空时不做读写分离
	Replicas []SourceConfig `mapstructure:"replicas"`
}

// ClickHouseConfig represents ClickHouse data source configuration
type ClickHouseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	DBName      string `mapstructure:"dbname"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	DialTimeout int    `mapstructure:"dialTimeout"` // Dial timeout in seconds
	ReadTimeout int    `mapstructure:"readTimeout"` // Read timeout in seconds
}

// Database represents the database configuration with common settings and data sources
type Database struct {
	OutPut       bool `mapstructure:"output"`
	AutoMigrate  bool `mapstructure:"autoMigrate"`
	MaxOpenConns int  `mapstructure:"maxOpenConns"`
	MaxIdleConns int  `mapstructure:"maxIdleConns"`
	MaxLifetime  int  `mapstructure:"maxLifeTime"`
	MaxIdleTime  int  `mapstructure:"maxIdleTime"`

	MySQL      MySQLConfig      `mapstructure:"mysql"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
}

// SetDefaults fills pool settings left at zero.
func (d *Database) SetDefaults() {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 10
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = 5
	}
	if d.MySQL.Port == "" {
		d.MySQL.Port = "3306"
	}
}

// MySQLEnabled reports whether a remote MySQL source is configured.
func (d Database) MySQLEnabled() bool {
	return d.MySQL.Host != "" && d.MySQL.DBName != ""
}

// ClickHouseEnabled reports whether a ClickHouse source is configured.
func (d Database) ClickHouseEnabled() bool {
	return d.ClickHouse.Host != "" && d.ClickHouse.DBName != "" && d.ClickHouse.Username != ""
}

// GetConnMaxLifetime returns ConnMaxLifetime as time.Duration from common config
func GetConnMaxLifetime(maxLifetime int) time.Duration {
	if maxLifetime > 0 {
		return time.Duration(maxLifetime) * time.Second
	}
	return 300 * time.Second
}

// GetConnMaxIdleTime returns ConnMaxIdleTime as time.Duration from common config
func GetConnMaxIdleTime(maxIdleTime int) time.Duration {
	if maxIdleTime > 0 {
		return time.Duration(maxIdleTime) * time.Second
	}
	return 60 * time.Second
}

// buildMySQLDSN builds MySQL DSN string from configuration
func buildMySQLDSN(user, password, host, port, db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, db)
}

// mysqlDialector opens lazily: no version query, so an unreachable server
// surfaces on first use instead of at startup.
func mysqlDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       dsn,
		SkipInitializeWithVersion: true,
	})
}

// buildDialectors converts SourceConfig slice to gorm.Dialector slice
func buildDialectors(configs []SourceConfig) ([]gorm.Dialector, error) {
	dialectors := make([]gorm.Dialector, 0, len(configs))
	for _, c := range configs {
		if c.Host == "" || c.User == "" || c.DBName == "" {
			return nil, fmt.Errorf("incomplete database source config: host, user, and dbname are required")
		}
		port := c.Port
		if port == "" {
			port = "3306"
		}
		dialectors = append(dialectors, mysqlDialector(buildMySQLDSN(c.User, c.Password, c.Host, port, c.DBName)))
	}
	return dialectors, nil
}
