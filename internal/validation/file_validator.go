package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Supported dataset formats
const (
	FormatCSV  = ".csv"
	FormatXLSX = ".xlsx"
)

// FileValidator checks input datasets and output directories before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a probe file
	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks that a regular, readable, non-empty file exists at path
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty",
			slog.String("file", path))
		return fmt.Errorf("file %s is empty", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDataset checks the dataset file and returns its lower-cased extension
func (v *FileValidator) ValidateDataset(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case FormatCSV:
		return ext, v.ValidateCSVFile(path)
	case FormatXLSX:
		return ext, v.ValidateExcelFile(path)
	default:
		v.logger.Error("Unsupported dataset format",
			slog.String("file", path),
			slog.String("extension", ext))
		return ext, fmt.Errorf("unsupported dataset format %q for %s", ext, path)
	}
}

// ValidateExcelFile checks if a file is a readable .xlsx workbook
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != FormatXLSX {
		v.logger.Error("File is not an Excel file",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("file %s is not an Excel file (extension: %s)", path, ext)
	}

	// Lock files left behind by Excel
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}

	return nil
}

// ValidateCSVFile checks if a file is a readable CSV file
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != FormatCSV {
		v.logger.Error("File is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext)
	}

	return nil
}
