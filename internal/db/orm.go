package db

import (
	"context"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hanna-collector/internal/model"
)

// openORM opens a GORM SQLite connection with sane defaults.
func openORM(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// migrateORM ensures the schema for all models exists.
func migrateORM(db *gorm.DB) error {
	return db.AutoMigrate(&model.Device{}, &model.MetricValue{}, &model.LatestMetricValue{})
}

// closeORM closes the underlying SQL DB associated with the GORM connection.
func closeORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// insertMetricValue persists a new metric value row using the provided context.
func insertMetricValue(ctx context.Context, db *gorm.DB, mv *model.MetricValue) error {
	return db.WithContext(ctx).Create(mv).Error
}

// upsertDevice inserts or updates a device definition.
func upsertDevice(ctx context.Context, db *gorm.DB, d *model.Device) error {
	return db.WithContext(ctx).Save(d).Error
}

// getDevice fetches one device row by its cloud ID.
func getDevice(ctx context.Context, db *gorm.DB, deviceID string) (*model.Device, error) {
	var d model.Device
	if err := db.WithContext(ctx).First(&d, "device_id = ?", deviceID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// deleteDevice removes a device and its recorded values.
func deleteDevice(ctx context.Context, db *gorm.DB, deviceID string) error {
	if err := db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&model.MetricValue{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("device_id = ?", deviceID).Delete(&model.Device{}).Error
}
