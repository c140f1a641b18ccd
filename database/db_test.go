package database

import (
	"testing"

	"tasktracker/config"
	"tasktracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	database := &Database{DB: db}

	assert.NotPanics(t, func() {
		database.Close()
	})
}

func TestCloseNilConnection(t *testing.T) {
	database := &Database{}
	assert.NotPanics(t, func() {
		database.Close()
	})
}

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	assert.True(t, db.Migrator().HasTable(&models.Task{}))
	assert.True(t, db.Migrator().HasTable(&models.Event{}))
	assert.True(t, db.Migrator().HasColumn(&models.Task{}, "priority"))
}

func TestSetupSQLite(t *testing.T) {
	cfg := config.Config{
		AppEnv:         "test",
		DBDriver:       "sqlite",
		DBPath:         ":memory:",
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
	}

	database, err := Setup(cfg)
	require.NoError(t, err)
	defer database.Close()

	assert.NoError(t, database.Ping())
	assert.True(t, database.DB.Migrator().HasTable(&models.Task{}))
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(config.Config{DBDriver: "mongodb"})
	assert.Error(t, err)
}
