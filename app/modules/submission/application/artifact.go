package submissionservice

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agentbeats/github-app/api/structs"
)

// ExtractArchive pulls the three submission documents out of an artifact zip
// archive. Entries are matched by name suffix so path prefixes inside the
// archive do not matter; when a suffix matches more than once the last entry
// wins. Missing documents yield an empty results object, a zero manifest, or
// an empty scenario rather than an error; detecting absent required fields
// is the caller's job.
//
// Pure: no side effects beyond reading the buffer.
func ExtractArchive(archive []byte) (map[string]any, structs.Manifest, string, error) {
	resultsDoc := map[string]any{}
	var manifest structs.Manifest
	scenario := ""

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, structs.Manifest{}, "", fmt.Errorf("failed to open artifact archive: %w", err)
	}

	for _, file := range reader.File {
		switch {
		case strings.HasSuffix(file.Name, "results.json"):
			doc := map[string]any{}
			if err := readJSON(file, &doc); err != nil {
				return nil, structs.Manifest{}, "", err
			}
			resultsDoc = doc
		case strings.HasSuffix(file.Name, "manifest.json"):
			var m structs.Manifest
			if err := readJSON(file, &m); err != nil {
				return nil, structs.Manifest{}, "", err
			}
			manifest = m
		case strings.HasSuffix(file.Name, "scenario.toml"):
			raw, err := readEntry(file)
			if err != nil {
				return nil, structs.Manifest{}, "", err
			}
			scenario = string(raw)
		}
	}

	return resultsDoc, manifest, scenario, nil
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive entry %q: %w", file.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive entry %q: %w", file.Name, err)
	}
	return raw, nil
}

func readJSON(file *zip.File, out any) error {
	raw, err := readEntry(file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse archive entry %q: %w", file.Name, err)
	}
	return nil
}
