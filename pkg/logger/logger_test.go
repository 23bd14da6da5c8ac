package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func resetLogger(t *testing.T) {
	t.Helper()
	log = zap.NewNop()
	once = sync.Once{}
}

func TestInitAndContextLogging(t *testing.T) {
	resetLogger(t)
	Init("development")
	if GetLogger() == nil {
		t.Fatal("expected logger initialized")
	}

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-1")
	if WithContext(ctx) == nil {
		t.Fatal("expected contextual logger")
	}

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/dashboard", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	if WithContext(nil) == nil {
		t.Fatal("expected base logger for nil context")
	}
}

func TestWithContextTypedRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	if WithContext(ctx) == nil {
		t.Fatal("expected logger with typed request id context")
	}
}

func TestLoggerUsableBeforeInit(t *testing.T) {
	resetLogger(t)
	Info(context.Background(), "no init yet")
	Sync()
}

func TestInit_Production(t *testing.T) {
	resetLogger(t)
	Init("production")
	if GetLogger() == nil {
		t.Fatal("expected production logger initialized")
	}
	if WithContext(context.Background()) == nil {
		t.Fatal("expected logger without contextual fields")
	}
}

func TestInit_PanicWhenLoggerBuildFails(t *testing.T) {
	resetLogger(t)
	origBuild := buildLogger
	t.Cleanup(func() {
		buildLogger = origBuild
		resetLogger(t)
	})

	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when logger builder fails")
		}
	}()
	Init("production")
}
