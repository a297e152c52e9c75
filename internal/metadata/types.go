package metadata

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	typeSampleFiles = 10
	typeHeadBytes   = 50 * 1024
	typeMaxNames    = 15
	typeMinNameLen  = 4
	typeWalkDepth   = 6
)

// genericTypes are declaration names too common to distinguish projects.
var genericTypes = map[string]bool{
	"config": true, "error": true, "result": true, "options": true,
	"option": true, "state": true, "context": true, "client": true,
	"server": true, "handler": true, "request": true, "response": true,
	"builder": true, "manager": true, "service": true, "helper": true,
	"utils": true, "base": true, "main": true, "test": true,
	"props": true, "params": true, "args": true, "data": true,
	"item": true, "node": true, "entry": true, "value": true,
	"none": true, "type": true, "kind": true, "info": true,
}

// typePatterns map a file extension to regexes whose first capture group is
// a declared type name.
var typePatterns = map[string][]*regexp.Regexp{
	".rs": {
		regexp.MustCompile(`(?m)^\s*(?:pub\s+)?struct\s+([A-Z]\w+)`),
		regexp.MustCompile(`(?m)^\s*(?:pub\s+)?enum\s+([A-Z]\w+)`),
		regexp.MustCompile(`(?m)^\s*(?:pub\s+)?trait\s+([A-Z]\w+)`),
	},
	".go": {
		regexp.MustCompile(`(?m)^type\s+([A-Z]\w+)\s+(?:struct|interface)`),
	},
	".py": {
		regexp.MustCompile(`(?m)^class\s+([A-Z]\w+)`),
	},
	".ts": {
		regexp.MustCompile(`(?m)(?:export\s+)?(?:class|interface|enum)\s+([A-Z]\w+)`),
		regexp.MustCompile(`(?m)(?:export\s+)?type\s+([A-Z]\w+)\s*=`),
	},
	".java": {
		regexp.MustCompile(`(?m)(?:public\s+|final\s+|abstract\s+)*(?:class|interface|enum|record)\s+([A-Z]\w+)`),
	},
	".kt": {
		regexp.MustCompile(`(?m)(?:data\s+|sealed\s+|open\s+)*(?:class|interface|object)\s+([A-Z]\w+)`),
	},
	".rb": {
		regexp.MustCompile(`(?m)^\s*(?:class|module)\s+([A-Z]\w+)`),
	},
	".swift": {
		regexp.MustCompile(`(?m)(?:public\s+|final\s+)*(?:class|struct|enum|protocol)\s+([A-Z]\w+)`),
	},
	".cs": {
		regexp.MustCompile(`(?m)(?:public\s+|internal\s+|sealed\s+|abstract\s+)*(?:class|interface|struct|record|enum)\s+([A-Z]\w+)`),
	},
}

func init() {
	typePatterns[".tsx"] = typePatterns[".ts"]
	typePatterns[".js"] = []*regexp.Regexp{
		regexp.MustCompile(`(?m)(?:export\s+)?class\s+([A-Z]\w+)`),
	}
	typePatterns[".jsx"] = typePatterns[".js"]
}

// typeNames samples the largest source files under root and collects the
// distinctive type names they declare.
func typeNames(root string) []string {
	files := largestSourceFiles(root)
	if len(files) == 0 {
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, file := range files {
		head, err := readHead(file, typeHeadBytes)
		if err != nil {
			continue
		}
		for _, re := range typePatterns[filepath.Ext(file)] {
			for _, m := range re.FindAllStringSubmatch(head, -1) {
				name := m[1]
				if len(name) < typeMinNameLen || genericTypes[strings.ToLower(name)] {
					continue
				}
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				if len(names) >= typeMaxNames {
					return names
				}
			}
		}
	}
	return names
}

type sizedFile struct {
	path string
	size int64
}

func largestSourceFiles(root string) []string {
	var files []sizedFile
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (genericSkipDir(name) || pathDepth(root, path) >= typeWalkDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := typePatterns[filepath.Ext(path)]; !ok {
			return nil
		}
		if isTestFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, sizedFile{path: path, size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].size > files[j].size })
	if len(files) > typeSampleFiles {
		files = files[:typeSampleFiles]
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths
}

func isTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, "_test.go") || strings.HasPrefix(base, "test_") {
		return true
	}
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	dir := strings.ToLower(path)
	for _, marker := range []string{"/test/", "/tests/", "/vendor/", "/node_modules/", "/__tests__/"} {
		if strings.Contains(dir, marker) {
			return true
		}
	}
	return false
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func readHead(path string, n int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf, err := io.ReadAll(io.LimitReader(f, n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
