package ecopath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ecopath.log")
	for _, debug := range []bool{false, true} {
		os.Remove(file)
		logger, closer := NewLogger(LogConfig{File: file, Debug: debug})
		logger.Log("level", "debug", "subsys", "test", "msg", "hidden")
		logger.Log("level", "info", "subsys", "test", "msg", "shown")
		closer.Close()
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		out := string(data)
		if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "ts=") {
			t.Fatalf("missing info record: %q", out)
		}
		if strings.Contains(out, "msg=hidden") != debug {
			t.Fatalf("debug=%v: unexpected output %q", debug, out)
		}
	}
}
