package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	InputDir      string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string

	// Well-known files
	PostsFile    string
	WorkbookFile string
	MetricsFile  string
	TracesFile   string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// ResolvePaths honours PathsConfig.BaseDir and InputFile overrides
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	var paths *Paths
	if cfg.BaseDir != "" {
		abs, err := filepath.Abs(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve base dir %s: %v", cfg.BaseDir, err)
		}
		paths = NewPaths(abs)
	} else {
		var err error
		if paths, err = GetPaths(); err != nil {
			return nil, err
		}
	}

	if cfg.InputFile != "" {
		paths.PostsFile = cfg.InputFile
		if !filepath.IsAbs(cfg.InputFile) {
			paths.PostsFile = paths.GetInputPath(cfg.InputFile)
		}
	}
	return paths, nil
}

// NewPaths lays out the directory tree under baseDir:
//
//	base/
//	  ├── data/
//	  │   ├── input/          (posts dataset)
//	  │   └── reports/        (CSV tables, workbook, metrics)
//	  │       └── charts/     (PNG charts)
//	  └── logs/               (application logs, traces)
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, DefaultDataDir)
	reportsDir := filepath.Join(dataDir, "reports")
	logsDir := filepath.Join(baseDir, DefaultLogsDir)

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		InputDir:      filepath.Join(dataDir, "input"),
		ReportsDir:    reportsDir,
		ChartsDir:     filepath.Join(reportsDir, "charts"),
		LogsDir:       logsDir,

		PostsFile:    filepath.Join(dataDir, "input", DefaultInputFile),
		WorkbookFile: filepath.Join(reportsDir, WorkbookFileName),
		MetricsFile:  filepath.Join(reportsDir, MetricsFileName),
		TracesFile:   filepath.Join(logsDir, TracesFileName),
	}
}

// WithReportsDir redirects report and chart output to dir
func (p *Paths) WithReportsDir(dir string) *Paths {
	cp := *p
	cp.ReportsDir = dir
	cp.ChartsDir = filepath.Join(dir, "charts")
	cp.WorkbookFile = filepath.Join(dir, WorkbookFileName)
	cp.MetricsFile = filepath.Join(dir, MetricsFileName)
	return &cp
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetInputPath returns the path for an input dataset
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path for a rendered chart
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetPricesCSVPath returns the path of the exported price series for a symbol and range
func (p *Paths) GetPricesCSVPath(symbol string, start, end time.Time) string {
	filename := fmt.Sprintf("prices_%s_%s_%s.csv", symbol, start.Format("20060102"), end.Format("20060102"))
	return filepath.Join(p.ReportsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("reports", p.ReportsDir),
			slog.String("charts", p.ChartsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("posts", p.PostsFile),
			slog.String("workbook", p.WorkbookFile),
			slog.String("metrics", p.MetricsFile),
			slog.String("traces", p.TracesFile),
		))
}
