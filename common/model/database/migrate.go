package database

import "gorm.io/gorm"

// Migrate 建表，仅在配置开启AutoMigrate时由服务启动调用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Profile{},
		&Comment{},
		&Like{},
		&LikeCount{},
	)
}
