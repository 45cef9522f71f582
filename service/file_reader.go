package service

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ProtocolFileReaderImpl implements the ProtocolFileReader interface.
// Collection honors explicit exclude patterns plus any .gitignore found
// at the root of a scanned directory.
type ProtocolFileReaderImpl struct{}

// NewProtocolFileReader creates a new protocol file reader
func NewProtocolFileReader() *ProtocolFileReaderImpl {
	return &ProtocolFileReaderImpl{}
}

// CollectProtocolFiles recursively finds all protocol files in the given paths
func (r *ProtocolFileReaderImpl) CollectProtocolFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	excluder := ignore.CompileIgnoreLines(excludePatterns...)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if r.IsValidProtocolFile(path) && !excluder.MatchesPath(path) {
				files = append(files, path)
			}
			continue
		}

		collected, err := r.collectFromDirectory(path, recursive, includePatterns, excluder)
		if err != nil {
			return nil, err
		}
		files = append(files, collected...)
	}

	return files, nil
}

func (r *ProtocolFileReaderImpl) collectFromDirectory(dir string, recursive bool, includePatterns []string, excluder *ignore.GitIgnore) ([]string, error) {
	gitignore := loadGitignore(dir)

	var files []string
	walk := func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(dir, filePath)
		if relErr != nil {
			rel = filePath
		}

		if info.IsDir() {
			if filePath == dir {
				return nil
			}
			if !recursive {
				return filepath.SkipDir
			}
			if excluder.MatchesPath(info.Name()) || excluder.MatchesPath(rel) {
				return filepath.SkipDir
			}
			if gitignore != nil && gitignore.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !r.IsValidProtocolFile(filePath) {
			return nil
		}
		if !matchesInclude(rel, includePatterns) {
			return nil
		}
		if excluder.MatchesPath(rel) || excluder.MatchesPath(info.Name()) {
			return nil
		}
		if gitignore != nil && gitignore.MatchesPath(rel) {
			return nil
		}
		files = append(files, filePath)
		return nil
	}

	if err := filepath.Walk(dir, walk); err != nil {
		return nil, err
	}
	return files, nil
}

// loadGitignore parses the directory's .gitignore when one exists
func loadGitignore(dir string) *ignore.GitIgnore {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}

// matchesInclude applies include patterns against the path relative to
// the scanned directory. An empty pattern list includes everything with
// the protocol extension.
func matchesInclude(rel string, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		return true
	}
	base := filepath.Base(rel)
	for _, pattern := range includePatterns {
		// "**/" prefixes mean "at any depth", which base-name matching
		// already gives us
		trimmed := strings.TrimPrefix(pattern, "**/")
		if matched, _ := filepath.Match(trimmed, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// IsValidProtocolFile checks if a file is a protocol source file
func (r *ProtocolFileReaderImpl) IsValidProtocolFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".ssn"
}

// FileExists checks if a file exists
func (r *ProtocolFileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (r *ProtocolFileReaderImpl) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
