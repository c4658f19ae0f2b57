package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spark-iq/spark-iq-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.AttendanceRecord{},
		&models.Notification{},
		&models.ChatMessage{},
	))

	return db
}

func createStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	student := models.User{Name: "Student " + email, Email: email, Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func createEducator(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	educator := models.User{Name: "Educator " + email, Email: email, Role: models.RoleEducator}
	require.NoError(t, db.Create(&educator).Error)
	return educator
}
