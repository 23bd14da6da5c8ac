package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wealthline.backend/internal/config"
	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/infrastructure/repositories"
)

var openAdminGrantDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
	})
}

var openAdminSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type adminGrantRuntime interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	Grant(ctx context.Context, userID uuid.UUID) error
}

type adminGrantDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminGrantRuntime, io.Closer, error)
	out     io.Writer
}

type adminGrantRuntimeImpl struct {
	users  *repositories.UserRepository
	admins *repositories.AdminRepository
}

func (r adminGrantRuntimeImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return r.users.GetByID(ctx, userID)
}

func (r adminGrantRuntimeImpl) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.users.GetByEmail(ctx, email)
}

func (r adminGrantRuntimeImpl) Grant(ctx context.Context, userID uuid.UUID) error {
	return r.admins.Grant(ctx, userID)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminGrantDeps() adminGrantDeps {
	return adminGrantDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (adminGrantRuntime, io.Closer, error) {
			db, err := openAdminGrantDB(cfg.Database.URL())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openAdminSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			return adminGrantRuntimeImpl{
				users:  repositories.NewUserRepository(db),
				admins: repositories.NewAdminRepository(db),
			}, sqlDB, nil
		},
		out: os.Stdout,
	}
}

// target is the user selected on the command line, by id or by email.
type target struct {
	id    uuid.UUID
	email string
}

func parseTarget(userID, email string) (target, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(email)
	switch {
	case userID != "" && email != "":
		return target{}, fmt.Errorf("use either --user-id or --email, not both")
	case userID != "":
		id, err := uuid.Parse(userID)
		if err != nil {
			return target{}, fmt.Errorf("invalid --user-id: %w", err)
		}
		return target{id: id}, nil
	case email != "":
		return target{email: email}, nil
	default:
		return target{}, fmt.Errorf("--user-id or --email is required")
	}
}

func runAdminGrant(args []string, deps adminGrantDeps) error {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.prepare == nil {
		deps.prepare = defaultAdminGrantDeps().prepare
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	fs := flag.NewFlagSet("admin-grant", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "target user UUID")
	emailFlag := fs.String("email", "", "target user email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tgt, err := parseTarget(*userIDFlag, *emailFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	var user *entities.User
	if tgt.email != "" {
		user, err = runtime.GetUserByEmail(ctx, tgt.email)
	} else {
		user, err = runtime.GetUserByID(ctx, tgt.id)
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := runtime.Grant(ctx, user.ID); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			_, _ = fmt.Fprintf(deps.out, "user %s (%s) is already an admin\n", user.ID, user.Email)
			return nil
		}
		return fmt.Errorf("failed granting admin: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Granted admin console access")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID)
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", user.Email)
	return nil
}

func main() {
	if err := runAdminGrant(os.Args[1:], defaultAdminGrantDeps()); err != nil {
		log.Fatal(err)
	}
}
