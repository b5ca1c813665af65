package main

import (
	"sort"
	"strconv"
	"strings"
)

const upSuffix = ".up.sql"

// migrationVersion extracts the leading version number of a migration file
// name such as 20240501000000_create_sessions.up.sql.
func migrationVersion(name string) (uint64, bool) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func upMigrations(names []string) []string {
	var files []string
	for _, name := range names {
		if strings.HasSuffix(name, upSuffix) {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files
}
