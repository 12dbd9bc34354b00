package models

import "github.com/petrovis/hemjilt_backend/config"

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Report{}, &ReportDetail{},
		&User{}, &ApiKey{},
	)
	if err != nil {
		panic(err)
	}
}
