package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager organises job artefacts under BaseOutputDir/<jobID>/.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateJobOutputDir creates the directory holding a job's outputs
func (om *OutputManager) CreateJobOutputDir(jobID string) (string, error) {
	jobDir := filepath.Join(om.BaseOutputDir, filepath.Base(jobID))

	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}

	return jobDir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(jobID, fileName string) (string, error) {
	jobDir, err := om.CreateJobOutputDir(jobID)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	return filepath.Join(jobDir, filepath.Base(fileName)), nil
}

// LookupOutputFile returns the path of an existing artefact, refusing names
// that would leave the job directory.
func (om *OutputManager) LookupOutputFile(jobID, fileName string) (string, error) {
	if jobID == "" || fileName == "" || filepath.Base(jobID) != jobID || filepath.Base(fileName) != fileName {
		return "", fmt.Errorf("invalid artefact reference %q/%q", jobID, fileName)
	}
	path := filepath.Join(om.BaseOutputDir, jobID, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(jobID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, filepath.Base(fileName))
}

// GetFileType determines the file type based on extension
func GetFileType(fileName string) string {
	// Query strings are common on report URLs.
	if i := strings.IndexAny(fileName, "?#"); i >= 0 {
		fileName = fileName[:i]
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx", ".xlsm":
		return "excel"
	case ".html", ".htm":
		return "html"
	case ".png":
		return "png"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}

// ResolveWithin joins a relative handle onto baseDir and rejects results that
// escape it (absolute handles, ".." segments).
func ResolveWithin(baseDir, handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(handle) {
		return "", fmt.Errorf("absolute path %q not allowed", handle)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	full := filepath.Join(absBase, handle)
	rel, err := filepath.Rel(absBase, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", handle, baseDir)
	}
	return full, nil
}
