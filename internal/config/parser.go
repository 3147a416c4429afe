package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
)

// yaml.v3 reports positions only inside the message text.
var lineRef = regexp.MustCompile(`\bline (\d+)\b`)

// ParseConfig reads path and hands its contents to Parse.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, adviceerrors.NewParseError(path, 0, err)
	}
	return Parse(path, data)
}

// Parse decodes a configuration document, rejecting unknown keys, validates
// it and fills defaults. path only labels errors.
func Parse(path string, data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	cfg := &Config{}
	// An empty document decodes to io.EOF and is left to validation.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, adviceerrors.NewParseError(path, errorLine(err), err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	cfg.Defaults()
	return cfg, nil
}

// errorLine returns the first line number mentioned by a decode error, or 0.
func errorLine(err error) int {
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	m := lineRef.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
