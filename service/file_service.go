package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/tieubaoca/pdfchat/types"
)

const DefaultMaxFileSize = 10 << 20 // 10 MiB

// DocumentService turns uploads and local files into in-memory documents.
type DocumentService struct {
	maxFileSize int64
}

// NewDocumentService caps every file at maxFileSize bytes. Zero or less
// means no cap.
func NewDocumentService(maxFileSize int64) *DocumentService {
	return &DocumentService{
		maxFileSize: maxFileSize,
	}
}

func (s *DocumentService) checkFile(name string, size int64) error {
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".pdf" {
		return fmt.Errorf("%s: %w: %q", name, types.ErrUnsupportedFile, ext)
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return fmt.Errorf("%s exceeds %d bytes: %w", name, s.maxFileSize, types.ErrInvalidInput)
	}
	return nil
}

// FromUploads reads multipart files in the order given.
func (s *DocumentService) FromUploads(files []*multipart.FileHeader) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(files))
	for _, file := range files {
		if err := s.checkFile(file.Filename, file.Size); err != nil {
			return nil, err
		}
		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Filename, err)
		}
		var r io.Reader = src
		if s.maxFileSize > 0 {
			r = io.LimitReader(src, s.maxFileSize+1)
		}
		data, err := io.ReadAll(r)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
		}
		if err := s.checkFile(file.Filename, int64(len(data))); err != nil {
			return nil, err
		}
		docs = append(docs, types.Document{Name: file.Filename, Data: data})
	}
	return docs, nil
}

// FromPaths reads local files in the order given.
func (s *DocumentService) FromPaths(paths []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := s.checkFile(path, info.Size()); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, types.Document{Name: filepath.Base(path), Data: data})
	}
	return docs, nil
}

// FindPDFs lists the .pdf files under dir, recursively, in lexical order.
func FindPDFs(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".pdf" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}
	return files, nil
}
