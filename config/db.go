package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func ConnectDB() (*gorm.DB, error) {
	dsn := Getenv("DB_DSN", "")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			Getenv("DB_USER", "admin"),
			Getenv("DB_PASSWORD", "12345678"),
			Getenv("DB_HOST", "127.0.0.1"),
			Getenv("DB_PORT", "3306"),
			Getenv("DB_NAME", "taskdbgo"),
		)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
