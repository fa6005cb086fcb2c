package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// CorpusWalker finds guideline source files under a corpus root laid
// out as <root>/<specialty>/<publisher>/<file>. Flat layouts still
// work; the specialty and publisher fields are simply left empty.
type CorpusWalker struct {
	includes []string
	excludes []string
}

func NewCorpusWalker(includes, excludes []string) *CorpusWalker {
	if len(includes) == 0 {
		includes = []string{"**/*.pdf", "**/*.txt", "**/*.md"}
	}
	return &CorpusWalker{
		includes: includes,
		excludes: excludes,
	}
}

type CorpusFile struct {
	Path      string
	Specialty string
	Publisher string
	ModTime   int64
	Size      int64
}

func (w *CorpusWalker) Walk(root string) ([]CorpusFile, error) {
	var files []CorpusFile

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			specialty, publisher := classify(relPath)
			files = append(files, CorpusFile{
				Path:      path,
				Specialty: specialty,
				Publisher: publisher,
				ModTime:   info.ModTime().Unix(),
				Size:      info.Size(),
			})
		}

		return nil
	})

	return files, err
}

// classify derives specialty and publisher from the first two path
// segments under the corpus root.
func classify(relPath string) (specialty, publisher string) {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) >= 3 {
		return parts[0], parts[1]
	}
	if len(parts) == 2 {
		return parts[0], ""
	}
	return "", ""
}

func (w *CorpusWalker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *CorpusWalker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}
