package services

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vaulty-hq/vaulty/internal/auth"
	"github.com/vaulty-hq/vaulty/internal/models"
	"github.com/vaulty-hq/vaulty/internal/repositories"
	"github.com/vaulty-hq/vaulty/internal/storage"
)

const testMaxFileSize = 1 << 20

type testEnv struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	projects *repositories.ProjectRepository
	files    *repositories.FileRepository
	store    *storage.LocalStorage
	tokens   *auth.TokenService

	authSvc    *AuthService
	projectSvc *ProjectService
	fileSvc    *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.File{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		db:       db,
		users:    repositories.NewUserRepository(db),
		projects: repositories.NewProjectRepository(db),
		files:    repositories.NewFileRepository(db),
		store:    store,
		tokens:   auth.NewTokenService("test-secret", time.Hour),
	}
	env.authSvc = NewAuthService(env.users, env.tokens, logger)
	env.projectSvc = NewProjectService(env.projects, env.files, store, logger)
	env.fileSvc = NewFileService(env.files, env.projects, store, testMaxFileSize, logger)
	return env
}

func (e *testEnv) registerUser(t *testing.T, username, email string) *models.User {
	t.Helper()
	user, err := e.authSvc.Register(username, email, "password1")
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createProject(t *testing.T, owner *models.User, name string, isPublic bool) *models.Project {
	t.Helper()
	project, err := e.projectSvc.Create(owner.ID, name, "", isPublic)
	if err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func userPrincipal(user *models.User) *auth.Principal {
	return &auth.Principal{User: &auth.TokenClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	}}
}

func apiKeyPrincipal(project *models.Project) *auth.Principal {
	return &auth.Principal{Project: project}
}

func expectKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected error kind %d, got %d (%v)", kind, got, err)
	}
}
