package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// manifest carries the name/description/keyword fields shared by the
// manifest formats we understand.
type manifest struct {
	Description string
	Keywords    []string
}

// readManifest tries the known manifest formats in priority order and
// returns the first with a description or keywords.
func readManifest(root string) (manifest, bool) {
	readers := []func(string) (manifest, bool){
		readPackageJSON,
		readCargoToml,
		readPyprojectToml,
	}
	for _, read := range readers {
		if m, ok := read(root); ok {
			return m, true
		}
	}
	return manifest{}, false
}

func readPackageJSON(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return manifest{}, false
	}

	var pkg struct {
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return manifest{}, false
	}
	if pkg.Description == "" && len(pkg.Keywords) == 0 {
		return manifest{}, false
	}
	return manifest{Description: pkg.Description, Keywords: pkg.Keywords}, true
}

func readCargoToml(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return manifest{}, false
	}

	type cargoPackage struct {
		Description string   `toml:"description"`
		Keywords    []string `toml:"keywords"`
	}
	var cargo struct {
		Package   cargoPackage `toml:"package"`
		Workspace struct {
			Package cargoPackage `toml:"package"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return manifest{}, false
	}

	pkg := cargo.Package
	if pkg.Description == "" && len(pkg.Keywords) == 0 {
		pkg = cargo.Workspace.Package
	}
	if pkg.Description == "" && len(pkg.Keywords) == 0 {
		return manifest{}, false
	}
	return manifest{Description: pkg.Description, Keywords: pkg.Keywords}, true
}

func readPyprojectToml(root string) (manifest, bool) {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return manifest{}, false
	}

	type pyProject struct {
		Description string   `toml:"description"`
		Keywords    []string `toml:"keywords"`
	}
	var py struct {
		Project pyProject `toml:"project"`
		Tool    struct {
			Poetry pyProject `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &py); err != nil {
		return manifest{}, false
	}

	proj := py.Project
	if proj.Description == "" && len(proj.Keywords) == 0 {
		proj = py.Tool.Poetry
	}
	if proj.Description == "" && len(proj.Keywords) == 0 {
		return manifest{}, false
	}
	return manifest{Description: proj.Description, Keywords: proj.Keywords}, true
}
