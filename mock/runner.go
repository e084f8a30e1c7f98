package mock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MockCommandRunner is a test double for service.CommandRunner.
type MockCommandRunner struct {
	RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

	Calls [][]string
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return nil, fmt.Errorf("%s: not available", name)
}

// CallsTo returns the recorded invocations of the named program.
func (m *MockCommandRunner) CallsTo(name string) [][]string {
	var calls [][]string
	for _, c := range m.Calls {
		if c[0] == name {
			calls = append(calls, c)
		}
	}
	return calls
}

// NewPDFRunner simulates poppler for a single document whose pages have the
// given texts. An empty page text behaves like a scanned page. With ocr set,
// tesseract answers with ocr[page] when present.
func NewPDFRunner(pages []string, ocr map[int]string) *MockCommandRunner {
	m := &MockCommandRunner{}
	m.RunFunc = func(_ context.Context, name string, args ...string) ([]byte, error) {
		switch name {
		case "pdfinfo":
			return []byte(fmt.Sprintf("Title: test\nPages:          %d\nEncrypted: no\n", len(pages))), nil
		case "pdftotext":
			page, err := pageArg(args)
			if err != nil {
				return nil, err
			}
			if page < 1 || page > len(pages) {
				return nil, errors.New("pdftotext: page out of range")
			}
			return []byte(pages[page-1]), nil
		case "pdftoppm":
			return nil, nil
		case "tesseract":
			// the page number is carried over from the preceding pdftoppm call
			last := m.CallsTo("pdftoppm")
			if len(last) == 0 {
				return nil, errors.New("tesseract: no image")
			}
			page, err := pageArg(last[len(last)-1][1:])
			if err != nil {
				return nil, err
			}
			if text, ok := ocr[page]; ok {
				return []byte(text), nil
			}
			return []byte("  \n"), nil
		}
		return nil, fmt.Errorf("%s: not available", name)
	}
	return m
}

func pageArg(args []string) (int, error) {
	i := slices.Index(args, "-f")
	if i < 0 || i+1 >= len(args) {
		return 0, fmt.Errorf("missing -f in %s", strings.Join(args, " "))
	}
	return strconv.Atoi(args[i+1])
}
