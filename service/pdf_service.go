package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/pdfchat/config"
	"github.com/tieubaoca/pdfchat/types"
	"github.com/tieubaoca/pdfchat/utils"
)

var pagesPattern = regexp.MustCompile(`Pages:\s+(\d+)`)

// CommandRunner executes an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// PDFService extracts text from PDFs with poppler's pdfinfo and pdftotext,
// optionally falling back to pdftoppm and tesseract for scanned pages.
type PDFService struct {
	scratchDir   string
	ocr          bool
	ocrLanguages string
	runner       CommandRunner
	logger       *slog.Logger
}

// NewPDFService creates a PDF service. A nil runner executes the real tools.
func NewPDFService(scratchDir string, cfg config.PDFConfig, runner CommandRunner) *PDFService {
	if runner == nil {
		runner = execRunner{}
	}
	languages := cfg.OCRLanguages
	if languages == "" {
		languages = "eng"
	}
	return &PDFService{
		scratchDir:   scratchDir,
		ocr:          cfg.OCR,
		ocrLanguages: languages,
		runner:       runner,
		logger:       slog.Default().With("component", "pdf"),
	}
}

// ExtractText returns the text of every page of every document, in order,
// concatenated with no separator.
func (s *PDFService) ExtractText(ctx context.Context, docs []types.Document) (string, error) {
	extraction, err := s.Extract(ctx, docs)
	if err != nil {
		return "", err
	}
	return extraction.Text, nil
}

// Extract is ExtractText plus page accounting. Pages without text, and
// documents whose page count cannot be read, are skipped rather than failing
// the batch. Only cancellation and scratch-file errors are returned.
func (s *PDFService) Extract(ctx context.Context, docs []types.Document) (*types.Extraction, error) {
	var (
		text       strings.Builder
		extraction types.Extraction
	)
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, skipped, err := s.extractDocument(ctx, &docs[i], &text)
		if err != nil {
			return nil, err
		}
		extraction.Pages += pages
		extraction.SkippedPages += skipped
	}
	extraction.Text = text.String()
	return &extraction, nil
}

func (s *PDFService) extractDocument(ctx context.Context, doc *types.Document, out *strings.Builder) (int, int, error) {
	path, cleanup, err := utils.WriteScratchFile(s.scratchDir, doc.Name, doc.Data)
	if err != nil {
		return 0, 0, err
	}
	defer cleanup()

	totalPages, err := s.getNumPages(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		s.logger.Warn("skipping unreadable document", "document", doc.Name, "err", err)
		return 0, 0, nil
	}
	doc.Pages = totalPages
	s.logger.Debug("extracting document", "document", doc.Name, "pages", totalPages)

	skipped := 0
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		text, err := s.extractText(ctx, path, pageNum)
		if err != nil {
			s.logger.Warn("skipping page without text", "document", doc.Name, "page", pageNum, "err", err)
			skipped++
			continue
		}
		out.WriteString(text)
	}
	return totalPages, skipped, nil
}

// extractText tries pdftotext first and OCR second, when enabled.
func (s *PDFService) extractText(ctx context.Context, filePath string, pageNumber int) (string, error) {
	text, err := s.extractTextWithPdftotext(ctx, filePath, pageNumber)
	if err == nil || !s.ocr {
		return text, err
	}
	text, err = s.extractTextWithTesseract(ctx, filePath, pageNumber)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

func (s *PDFService) extractTextWithPdftotext(ctx context.Context, filePath string, pageNumber int) (string, error) {
	out, err := s.runner.Run(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	if err != nil {
		return "", err
	}
	if text := cleanText(string(out)); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

func (s *PDFService) extractTextWithTesseract(ctx context.Context, pdfPath string, pageNumber int) (string, error) {
	tempFolder, err := os.MkdirTemp(s.scratchDir, "ocr-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	prefix := filepath.Join(tempFolder, "page")
	_, err = s.runner.Run(ctx, "pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-r", "300", "-png", "-singlefile",
		pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to convert page %d to image: %w", pageNumber, err)
	}

	out, err := s.runner.Run(ctx, "tesseract",
		prefix+".png",
		"stdout",
		"-l", s.ocrLanguages,
		"--oem", "3", // LSTM engine
		"--psm", "3", // auto page segmentation
	)
	if err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	if text := cleanText(string(out)); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages reads the page count from pdfinfo output.
func (s *PDFService) getNumPages(ctx context.Context, pdfPath string) (int, error) {
	out, err := s.runner.Run(ctx, "pdfinfo", pdfPath)
	if err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if matches := pagesPattern.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // null
	"\ufffd", "", // replacement character
	"\u001b", "", // escape
	"\r", "",
	"\f", "\n",
)

// cleanText drops control noise. A page that is only whitespace counts as
// having no text.
func cleanText(text string) string {
	cleaned := textReplacer.Replace(text)
	if strings.TrimSpace(cleaned) == "" {
		return ""
	}
	return cleaned
}
