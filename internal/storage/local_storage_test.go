package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorage(t *testing.T) {
	tmpDir := t.TempDir()
	storage, err := NewLocalStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("SaveFile", func(t *testing.T) {
		content := []byte("test image content")

		info := FileInfo{
			Filename:    "front.png",
			ContentType: "image/png",
			Size:        int64(len(content)),
		}

		filename, err := storage.SaveFile(bytes.NewReader(content), info)
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if filepath.Ext(filename) != ".png" {
			t.Errorf("Expected .png extension, got %s", filepath.Ext(filename))
		}

		savedPath := filepath.Join(tmpDir, filename)
		if _, err := os.Stat(savedPath); os.IsNotExist(err) {
			t.Errorf("File was not saved to expected location: %s", savedPath)
		}
	})

	t.Run("SaveFileWithoutExtension", func(t *testing.T) {
		filename, err := storage.SaveFile(bytes.NewReader([]byte("x")), FileInfo{Filename: "blob"})
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if filepath.Ext(filename) != ".jpg" {
			t.Errorf("Expected .jpg extension, got %s", filepath.Ext(filename))
		}
	})

	t.Run("OpenFile", func(t *testing.T) {
		content := []byte("test image content")
		testFile := "test-file.jpg"
		fullPath := filepath.Join(tmpDir, testFile)

		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		file, err := storage.OpenFile(testFile)
		if err != nil {
			t.Fatalf("Failed to open file: %v", err)
		}
		defer file.Close()

		got, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}

		if !bytes.Equal(got, content) {
			t.Errorf("File content mismatch")
		}
	})

	t.Run("DeleteFile", func(t *testing.T) {
		testFile := "delete-test.jpg"
		fullPath := filepath.Join(tmpDir, testFile)

		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		if err := storage.DeleteFile(testFile); err != nil {
			t.Fatalf("Failed to delete file: %v", err)
		}

		if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
			t.Errorf("File was not deleted")
		}
	})

	t.Run("PathTraversalPrevention", func(t *testing.T) {
		_, err := storage.OpenFile("../../../etc/passwd")
		if err == nil {
			t.Errorf("Path traversal was not prevented")
		}

		err = storage.DeleteFile("../../../etc/passwd")
		if err == nil {
			t.Errorf("Path traversal was not prevented in delete")
		}
	})
}
