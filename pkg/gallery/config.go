package gallery

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

const SourceTypeDriveFolder = "gdrive-folder"

type SourceConfig struct {
	Label     string `json:"label"`
	Type      string `json:"type"`
	FolderURL string `json:"folderUrl"`
}

type SectionConfig struct {
	Title   string         `json:"title"`
	Sources []SourceConfig `json:"sources"`
}

// Config is the gallery layout document: sections, each backed by one or more
// media sources.
type Config struct {
	Sections []SectionConfig `json:"sections"`
}

// LoadConfig reads the gallery document and returns it with a content hash.
// The hash keys the assembled-payload cache so concurrent page loads share
// one assembly pass per config revision.
func LoadConfig(path string) (*Config, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read gallery config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse gallery config: %w", err)
	}

	sum := sha1.Sum(raw)
	return &cfg, hex.EncodeToString(sum[:]), nil
}
