package filer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Find lists dir and returns the full path of every regular entry whose
// name contains the provided string. The list is sorted by file name,
// lexicographically, so service_10.log comes before service_2.log.
// This is the discovery procedure shared by pruning and bundling.
func Find(filer Filer, dir, contains string) ([]string, error) {
	files, err := filer.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	names := []string{}

	for _, file := range files {
		if file.IsDir() || !strings.Contains(file.Name(), contains) {
			continue // not our file.
		}

		names = append(names, file.Name())
	}

	sort.Strings(names)

	paths := make([]string, len(names))
	for idx, name := range names {
		paths[idx] = filepath.Join(dir, name)
	}

	return paths, nil
}
