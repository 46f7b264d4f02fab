package account

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Book maps friendly aliases to SteamID64s, loaded from a YAML file:
//
//	accounts:
//	  alice: "76561198000000001"
//	  bob: "76561198000000002"
type Book struct {
	Accounts map[string]string `yaml:"accounts"`
}

func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &b, nil
}

// Resolve returns the SteamID64 for an alias, if the book knows it.
func (b *Book) Resolve(alias string) (string, bool) {
	if b == nil {
		return "", false
	}
	id, ok := b.Accounts[strings.TrimSpace(alias)]
	return id, ok && id != ""
}
