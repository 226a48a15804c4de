package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	key, err := store.Save(context.Background(), []byte("hello"), SaveOptions{
		Category:  "photos",
		BaseName:  "avatar",
		Extension: "png",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "photos/") {
		t.Errorf("expected key under photos/, got %q", key)
	}
	if !strings.HasSuffix(key, "avatar.png") {
		t.Errorf("expected filename avatar.png, got %q", key)
	}

	absPath := filepath.Join(dir, filepath.FromSlash(key))
	data, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected content %q, got %q", "hello", string(data))
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(absPath); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err = %v", err)
	}

	// 重复删除不算错误
	if err := store.Delete(context.Background(), key); err != nil {
		t.Errorf("repeat Delete: %v", err)
	}
}

func TestLocalStorageSaveEmptyPayload(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	if _, err := store.Save(context.Background(), nil, SaveOptions{Category: "photos"}); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestLocalStorageDeleteRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	tests := []struct {
		name string
		key  string
	}{
		{name: "空 key", key: ""},
		{name: "纯空白", key: "   "},
		{name: "上级目录", key: "../etc/passwd"},
		{name: "嵌套上级目录", key: "photos/../../secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Delete(context.Background(), tt.key); err == nil {
				t.Errorf("expected error for key %q", tt.key)
			}
		})
	}
}
