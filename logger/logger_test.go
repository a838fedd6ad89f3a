package logger_test

import (
	"testing"

	"github.com/quantedge/swingcore/logger"
	"github.com/quantedge/swingcore/testutils"
)

func TestMockLogger(t *testing.T) {
	l := testutils.NewMockLogger()
	l.Info("hello", logger.String("k", "v"))
	if got := l.LastMessage(); got != "hello" {
		t.Fatalf("expected last message 'hello', got %q", got)
	}
}
