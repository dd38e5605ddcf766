package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

var envFileNames = []string{".env.local", ".env"}

// loadEnvFiles applies .env.local and .env from the working directory and
// the executable's directory, in that order. Variables that are already set
// win. It returns the files that were read.
func loadEnvFiles() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Dir(exe); dir != "" && (len(dirs) == 0 || dir != dirs[0]) {
			dirs = append(dirs, dir)
		}
	}
	var applied []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			applyEnvFile(data)
			applied = append(applied, path)
		}
	}
	return applied
}

// applyEnvFile parses KEY=VALUE lines. Blank lines, # comments and an
// optional "export " prefix are accepted; surrounding quotes are stripped.
func applyEnvFile(data []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
}
