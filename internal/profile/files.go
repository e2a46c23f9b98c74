package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"

	"github.com/spigell/skillbuddy/internal/structured"
)

// ReadResume returns the plain text of a PDF or text resume.
func ReadResume(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume %q: %w", path, err)
	}
	return checkResumeText(path, string(data))
}

func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %q: %w", path, err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text from %q: %w", path, err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract text from %q: %w", path, err)
	}

	return checkResumeText(path, string(data))
}

func checkResumeText(path, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("resume %q contains no extractable text", path)
	}
	return text, nil
}

// Load reads a profile document saved as YAML or JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", path, err)
	}

	var doc Document
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", path, err)
	}

	if err := structured.Validate(&doc.Profile); err != nil {
		return nil, fmt.Errorf("invalid profile %q: %w", path, err)
	}
	if len(doc.Skills) == 0 && len(doc.Experience) == 0 && len(doc.Projects) == 0 {
		return nil, fmt.Errorf("profile %q is empty", path)
	}

	return &doc, nil
}

// Save writes the document as YAML or JSON depending on the file extension.
func Save(path string, doc *Document) error {
	if doc == nil {
		return errors.New("profile document is nil")
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profile %q: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
