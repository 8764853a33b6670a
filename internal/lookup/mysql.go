package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IPCountryModel is the GORM model for the ip_country table
type IPCountryModel struct {
	IP      string `gorm:"column:ip;primaryKey"`
	Country string `gorm:"column:country;size:2"`
}

// TableName overrides GORM's pluralised default
func (IPCountryModel) TableName() string {
	return "ip_country"
}

// MySQLLookup reads exact-address entries from MySQL through GORM
type MySQLLookup struct {
	db *gorm.DB
}

// NewMySQLLookup opens a pooled connection and pings it
//
// dsn format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLLookup(ctx context.Context, dsn string) (*MySQLLookup, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLLookup{db: db}, nil
}

func (l *MySQLLookup) Name() string { return "mysql" }

// LookupCountry implements Lookup.
// SELECT * FROM ip_country WHERE ip = ? ORDER BY ip LIMIT 1
func (l *MySQLLookup) LookupCountry(ctx context.Context, ip string) (string, error) {
	var record IPCountryModel

	result := l.db.WithContext(ctx).Where("ip = ?", ip).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("database query failed: %w", result.Error)
	}

	if record.Country == "" {
		return "", fmt.Errorf("%w for %s", ErrNoCountry, ip)
	}

	return record.Country, nil
}

// Close closes the database connection pool
func (l *MySQLLookup) Close() error {
	if l.db != nil {
		sqlDB, err := l.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
