package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type schemaCmd struct {
	cmd    *cobra.Command
	output string
}

// configSchema is a hand-authored description of rpminspect.yaml's
// recognized sections, not a reflected struct schema: RunConfig carries
// compiled *regexp.Regexp and rune-keyed maps that have no JSON Schema
// equivalent worth reflecting, and no JSON Schema reflection library
// appears anywhere in the retrieved corpus to generate one properly.
var configSchema = map[string]any{
	"$schema":     "https://json-schema.org/draft/2020-12/schema",
	"title":       "rpminspect configuration",
	"description": "Recognized top-level sections of an rpminspect.yaml file",
	"type":        "object",
	"properties": map[string]any{
		"common":        map[string]any{"type": "object", "properties": map[string]any{"workdir": map[string]any{"type": "string"}, "profiledir": map[string]any{"type": "string"}}},
		"koji":          map[string]any{"type": "object", "properties": map[string]any{"hub": map[string]any{"type": "string"}, "download_ursine": map[string]any{"type": "string"}, "download_mbs": map[string]any{"type": "string"}}},
		"commands":      map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}},
		"vendor":        map[string]any{"type": "object", "properties": map[string]any{"vendor_data_dir": map[string]any{"type": "string"}, "licensedb": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}, "favor_release": map[string]any{"enum": []string{"none", "oldest", "newest"}}}},
		"inspections":   map[string]any{"type": "object", "additionalProperties": map[string]any{"enum": []string{"on", "off"}}},
		"products":      map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}},
		"ignore":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"security_path_prefix": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"badwords":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"runpath":       map[string]any{"type": "object"},
		"unicode":       map[string]any{"type": "object"},
		"rpmdeps":       map[string]any{"type": "object"},
		"debuginfo":     map[string]any{"type": "object"},
		"udevrules":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"modularity":    map[string]any{"type": "object"},
		"abidiff":       map[string]any{"type": "object"},
		"kmidiff":       map[string]any{"type": "object"},
		"patches":       map[string]any{"type": "object"},
		"badfuncs":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"files":         map[string]any{"type": "object"},
		"ownership":     map[string]any{"type": "object"},
		"filesize":      map[string]any{"type": "object"},
		"lto":           map[string]any{"type": "object"},
		"specname":      map[string]any{"type": "object"},
		"annocheck":     map[string]any{"type": "object"},
		"javabytecode":  map[string]any{"type": "object"},
		"pathmigration": map[string]any{"type": "object"},
	},
}

func newSchemaCmd() *schemaCmd {
	root := &schemaCmd{}
	cmd := &cobra.Command{
		Use:           "jsonschema",
		Aliases:       []string{"schema"},
		Short:         "Outputs rpminspect's configuration JSON schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			bts, err := json.MarshalIndent(configSchema, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render jsonschema: %w", err)
			}
			if root.output == "-" {
				fmt.Println(string(bts))
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(root.output), 0o755); err != nil {
				return fmt.Errorf("failed to write jsonschema file: %w", err)
			}
			if err := os.WriteFile(root.output, bts, 0o644); err != nil {
				return fmt.Errorf("failed to write jsonschema file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&root.output, "output", "o", "-", "where to save the json schema")

	root.cmd = cmd
	return root
}
