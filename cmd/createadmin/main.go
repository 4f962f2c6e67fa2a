package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/models"
	"github.com/inkpost/internal/service"
)

func main() {
	var (
		email    string
		password string
		role     string
	)
	flag.StringVar(&email, "email", "", "管理员邮箱")
	flag.StringVar(&password, "password", "", "管理员密码（也可通过 ADMIN_PASSWORD 提供）")
	flag.StringVar(&role, "role", "admin", "管理员角色: admin, editor")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	reader := bufio.NewReader(os.Stdin)
	if strings.TrimSpace(email) == "" {
		email = prompt(reader, "Email: ")
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		password = prompt(reader, "Password: ")
	}
	if strings.TrimSpace(email) == "" || password == "" {
		stdLog.Fatalf("email and password are required")
	}
	if err := service.ValidatePassword(cfg.Security.PasswordPolicy, password); err != nil {
		stdLog.Fatalf("%v", err)
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	admin, created, err := models.ProvisionAdmin(models.DB, email, password, role)
	if err != nil {
		stdLog.Fatalf("Failed to provision admin: %v", err)
	}
	action := "Updated"
	if created {
		action = "Created"
	}
	fmt.Printf("%s admin %s (id=%d, role=%s)\n", action, admin.Email, admin.ID, admin.Role)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
