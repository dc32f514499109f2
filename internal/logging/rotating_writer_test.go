package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingFileWriter(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	if writer.maxSize != 1024 {
		t.Errorf("MaxSize = %d, want 1024", writer.maxSize)
	}

	if _, err := NewRotatingFileWriter(logFile, 0, 3); err == nil {
		t.Error("Expected error for zero max size")
	}
}

func TestRotatingFileWriter_AppendsToExisting(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(logFile, []byte("old\n"), 0600); err != nil {
		t.Fatal(err)
	}

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	if _, err := writer.Write([]byte("new\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	writer.Close()

	content, _ := os.ReadFile(logFile)
	if string(content) != "old\nnew\n" {
		t.Errorf("File content = %q, want %q", content, "old\nnew\n")
	}
	if writer.size != 8 {
		t.Errorf("Tracked size = %d, want 8", writer.size)
	}
}

func TestRotatingFileWriter_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	writer, err := NewRotatingFileWriter(logFile, 50, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	firstMsg := strings.Repeat("A", 30) + "\n"
	secondMsg := strings.Repeat("B", 30) + "\n"

	if _, err := writer.Write([]byte(firstMsg)); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if _, err := writer.Write([]byte(secondMsg)); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != secondMsg {
		t.Errorf("Current log content = %q, want %q", content, secondMsg)
	}

	backup, err := os.ReadFile(filepath.Join(tmpDir, "test.1.log"))
	if err != nil {
		t.Fatalf("Backup file was not created: %v", err)
	}
	if string(backup) != firstMsg {
		t.Errorf("Backup content = %q, want %q", backup, firstMsg)
	}
}

func TestRotatingFileWriter_MaxBackups(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	writer, err := NewRotatingFileWriter(logFile, 20, 2)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf("Message %d: %s\n", i, strings.Repeat("X", 15))
		if _, err := writer.Write([]byte(msg)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("Found %d files, expected current file plus 2 backups", len(files))
	}

	newest, _ := os.ReadFile(filepath.Join(tmpDir, "test.1.log"))
	if !strings.HasPrefix(string(newest), "Message 3") {
		t.Errorf("Newest backup = %q, want message 3", newest)
	}
	oldest, _ := os.ReadFile(filepath.Join(tmpDir, "test.2.log"))
	if !strings.HasPrefix(string(oldest), "Message 2") {
		t.Errorf("Oldest backup = %q, want message 2", oldest)
	}
}

func TestRotatingFileWriter_WriteAfterClose(t *testing.T) {
	writer, err := NewRotatingFileWriter(filepath.Join(t.TempDir(), "x.log"), 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	writer.Close()

	if _, err := writer.Write([]byte("late")); err == nil {
		t.Error("Expected error writing to closed writer")
	}
}
