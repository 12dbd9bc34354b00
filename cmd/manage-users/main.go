// manage-users administers interactive users and external API keys.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/manage-users <command> [args]
//
// Commands:
//
//	seed                          create the default admin user and a sample API key
//	create-user <name> <pass>     create an active USER account
//	create-admin <name> <pass>    create an active ADMIN account
//	list-users                    print all users
//	set-active <name> <t|f>       activate or deactivate a user
//	create-key <name>             generate a new API key
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/petrovis/hemjilt_backend/config"
	"github.com/petrovis/hemjilt_backend/models"
	"github.com/petrovis/hemjilt_backend/utils"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: manage-users <seed|create-user|create-admin|list-users|set-active|create-key> [args]")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	var err error
	switch os.Args[1] {
	case "seed":
		err = seed(ctx, db)
	case "create-user":
		err = createUser(ctx, db, arg(2), arg(3), models.UserRoleUser)
	case "create-admin":
		err = createUser(ctx, db, arg(2), arg(3), models.UserRoleAdmin)
	case "list-users":
		err = listUsers(ctx, db)
	case "set-active":
		err = setActive(ctx, db, arg(2), arg(3) == "t")
	case "create-key":
		err = createKey(ctx, db, arg(2))
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func arg(i int) string {
	if len(os.Args) <= i {
		return ""
	}
	return os.Args[i]
}

func seed(ctx context.Context, db *gorm.DB) error {
	if err := createUser(ctx, db, "admin", "admin123", models.UserRoleAdmin); err != nil {
		return err
	}
	return createKey(ctx, db, "Sample API Key")
}

func createUser(ctx context.Context, db *gorm.DB, username, password string, role models.UserRole) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return fmt.Errorf("user %s already exists", username)
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		Role:     role,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}
	fmt.Printf("created %s user %q (id=%d)\n", role, username, user.ID)
	return nil
}

func listUsers(ctx context.Context, db *gorm.DB) error {
	var users []models.User
	if err := db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		active := u.IsActive != nil && *u.IsActive
		fmt.Printf("%d\t%s\t%s\tactive=%t\n", u.ID, u.Username, u.Role, active)
	}
	return nil
}

func setActive(ctx context.Context, db *gorm.DB, username string, active bool) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	res := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", username)
	}
	fmt.Printf("user %q active=%t\n", username, active)
	return nil
}

func createKey(ctx context.Context, db *gorm.DB, name string) error {
	if name == "" {
		return fmt.Errorf("key name is required")
	}
	apiKey := models.ApiKey{
		Key:      uuid.NewString(),
		Name:     name,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return err
	}
	fmt.Printf("created API key %q: %s\n", name, apiKey.Key)
	return nil
}
