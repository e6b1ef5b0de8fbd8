package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NextPreviewDir allocates the next p-NNN directory under root,
// creating root on first use. Numbering continues from the highest
// existing directory; gaps are not reused.
func NextPreviewDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating output root: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("reading output root: %w", err)
	}

	highest := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		num, ok := previewNumber(e.Name())
		if ok && num > highest {
			highest = num
		}
	}

	name := fmt.Sprintf("p-%03d", highest+1)
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// previewNumber parses the NNN of a p-NNN directory name. Only digits
// count; Atoi alone would also accept a sign.
func previewNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "p-")
	if !ok || rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	num, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return num, true
}
