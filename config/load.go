package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/rpminspect/rpminspect/results"
)

// LoadFiles reads each path in order and overlays later documents onto
// earlier ones (a later key wins; arrays are replaced, not appended, to
// match the original's "last document declares the section" semantics),
// then applies an optional profile overlay from <profiledir>/<profile>.yaml,
// and builds the immutable RunConfig.
//
// Missing files or parse errors are fatal, matching §4.4: "Configuration
// load failures ... are fatal for the run."
func LoadFiles(paths []string, profileDir, profile string) (*RunConfig, error) {
	merged := map[string]any{}

	for _, path := range paths {
		doc, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&merged, doc, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	if profile != "" {
		profilePath := filepath.Join(profileDir, profile+".yaml")
		doc, err := decodeFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", profile, err)
		}
		if err := mergo.Merge(&merged, doc, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge profile %s: %w", profile, err)
		}
	}

	src := &docSource{root: normalize(merged)}
	return build(src)
}

func decodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Load builds a RunConfig directly from an already-constructed ConfigSource,
// for callers (tests, profile-less single-document runs) that don't need
// the multi-file overlay machinery in LoadFiles.
func Load(src ConfigSource) (*RunConfig, error) {
	return build(src)
}

func build(src ConfigSource) (*RunConfig, error) {
	c := &RunConfig{
		Commands:            map[string]string{},
		EnabledInspections:  map[string]bool{},
		Products:            map[string]*regexp.Regexp{},
		PerInspectionIgnore: map[string][]string{},
		JavaBytecodeMinVersion: map[string]int{},
		PathMigration:       map[string]string{},
		RPMDepsIgnore:       map[string]*regexp.Regexp{},
		ModularityRelease:   map[string]*regexp.Regexp{},
		UnicodeForbiddenCodepoints: map[rune]bool{},
		RebaseDetection:     true,
		FavorRelease:        FavorNone,
		Threshold:           results.Verify,
	}

	if v, ok := src.GetString([]string{"common", "workdir"}); ok {
		c.Workdir = v
	} else {
		c.Workdir = "/var/tmp/rpminspect"
	}
	if v, ok := src.GetString([]string{"common", "profiledir"}); ok {
		c.ProfileDir = v
	}

	if v, ok := src.GetString([]string{"koji", "hub"}); ok {
		c.KojiHub = v
	}
	if v, ok := src.GetString([]string{"koji", "download_ursine"}); ok {
		c.KojiDownloadUrsine = v
	}
	if v, ok := src.GetString([]string{"koji", "download_mbs"}); ok {
		c.KojiDownloadMBS = v
	}

	src.ForEachInMapping([]string{"commands"}, func(k, v string) { c.Commands[k] = v })

	if v, ok := src.GetString([]string{"vendor", "vendor_data_dir"}); ok {
		c.VendorDataDir = v
	}
	src.ForEachInArray([]string{"vendor", "licensedb"}, func(v string) {
		c.LicenseDB = append(c.LicenseDB, v)
	})
	if v, ok := src.GetString([]string{"vendor", "favor_release"}); ok {
		switch v {
		case "oldest":
			c.FavorRelease = FavorOldest
		case "newest":
			c.FavorRelease = FavorNewest
		default:
			c.FavorRelease = FavorNone
		}
	}

	src.ForEachInMapping([]string{"inspections"}, func(name, state string) {
		c.EnabledInspections[name] = state == "on"
	})

	src.ForEachKey([]string{"products"}, func(token string) {
		if v, ok := src.GetString([]string{"products", token}); ok {
			if re, err := regexp.Compile(v); err == nil {
				c.Products[token] = re
			}
		}
	})

	src.ForEachInArray([]string{"ignore"}, func(v string) { c.GlobalIgnore = append(c.GlobalIgnore, v) })
	src.ForEachInArray([]string{"security_path_prefix"}, func(v string) {
		c.SecurityPathPrefix = append(c.SecurityPathPrefix, v)
	})
	src.ForEachInArray([]string{"badwords"}, func(v string) { c.BadWords = append(c.BadWords, v) })

	if v, ok := src.GetString([]string{"metadata", "vendor"}); ok {
		c.MetadataVendor = v
	}
	src.ForEachInArray([]string{"metadata", "buildhost_subdomain"}, func(v string) {
		c.MetadataBuildhostSubdomain = append(c.MetadataBuildhostSubdomain, v)
	})

	c.ELFIncludePath = compileOptRegex(src, "elf", "include_path")
	c.ELFExcludePath = compileOptRegex(src, "elf", "exclude_path")
	c.ManpageIncludePath = compileOptRegex(src, "manpage", "include_path")
	c.ManpageExcludePath = compileOptRegex(src, "manpage", "exclude_path")
	c.XMLIncludePath = compileOptRegex(src, "xml", "include_path")
	c.XMLExcludePath = compileOptRegex(src, "xml", "exclude_path")

	if v, ok := src.GetString([]string{"desktop", "desktop_entry_files_dir"}); ok {
		c.DesktopEntryFilesDir = v
	}

	src.ForEachInArray([]string{"changedfiles", "header_file_extensions"}, func(v string) {
		c.HeaderFileExtensions = append(c.HeaderFileExtensions, v)
	})

	src.ForEachInArray([]string{"addedfiles", "forbidden_path_prefixes"}, func(v string) {
		c.ForbiddenPathPrefixes = append(c.ForbiddenPathPrefixes, v)
	})
	src.ForEachInArray([]string{"addedfiles", "forbidden_path_suffixes"}, func(v string) {
		c.ForbiddenPathSuffixes = append(c.ForbiddenPathSuffixes, v)
	})
	src.ForEachInArray([]string{"addedfiles", "forbidden_directories"}, func(v string) {
		c.ForbiddenDirectories = append(c.ForbiddenDirectories, v)
	})

	src.ForEachInArray([]string{"ownership", "bin_paths"}, func(v string) {
		c.Ownership.BinPaths = append(c.Ownership.BinPaths, v)
	})
	if v, ok := src.GetString([]string{"ownership", "bin_owner"}); ok {
		c.Ownership.BinOwner = v
	}
	if v, ok := src.GetString([]string{"ownership", "bin_group"}); ok {
		c.Ownership.BinGroup = v
	}
	src.ForEachInArray([]string{"ownership", "forbidden_owners"}, func(v string) {
		c.Ownership.ForbiddenOwners = append(c.Ownership.ForbiddenOwners, v)
	})
	src.ForEachInArray([]string{"ownership", "forbidden_groups"}, func(v string) {
		c.Ownership.ForbiddenGroups = append(c.Ownership.ForbiddenGroups, v)
	})

	src.ForEachInArray([]string{"shellsyntax", "shells"}, func(v string) {
		c.ShellInterpreters = append(c.ShellInterpreters, v)
	})

	if v, ok := src.GetString([]string{"filesize", "size_threshold"}); ok {
		if v == "info" {
			c.FilesizeInfoOnly = true
		} else if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.FilesizeThresholdBytes = n
		}
	}

	src.ForEachInArray([]string{"lto", "lto_symbol_name_prefixes"}, func(v string) {
		c.LTOSymbolNamePrefixes = append(c.LTOSymbolNamePrefixes, v)
	})

	if v, ok := src.GetString([]string{"specname", "match"}); ok {
		c.SpecnameMatch = v
	}
	if v, ok := src.GetString([]string{"specname", "primary"}); ok {
		c.SpecnamePrimary = v
	}

	c.Annocheck.Tests = map[string]string{}
	src.ForEachInMapping([]string{"annocheck"}, func(k, v string) {
		switch k {
		case "failure_severity":
			c.Annocheck.FailureSeverity = v
		case "profile":
			c.Annocheck.Profile = v
		default:
			c.Annocheck.Tests[k] = v
		}
	})

	src.ForEachKey([]string{"javabytecode"}, func(release string) {
		if v, ok := src.GetString([]string{"javabytecode", release}); ok {
			if n, err := strconv.Atoi(v); err == nil {
				c.JavaBytecodeMinVersion[release] = n
			}
		}
	})

	src.ForEachInMapping([]string{"pathmigration", "migrated_paths"}, func(k, v string) {
		c.PathMigration[k] = v
	})
	src.ForEachInArray([]string{"pathmigration", "excluded_paths"}, func(v string) {
		c.PathMigrationExcluded = append(c.PathMigrationExcluded, v)
	})

	src.ForEachInArray([]string{"files", "forbidden_paths"}, func(v string) {
		c.FilesForbiddenPaths = append(c.FilesForbiddenPaths, v)
	})

	if v, ok := src.GetString([]string{"abidiff", "suppression_file"}); ok {
		c.Abidiff.SuppressionFile = v
	}
	if v, ok := src.GetString([]string{"abidiff", "debuginfo_path"}); ok {
		c.Abidiff.DebuginfoPath = v
	}
	if v, ok := src.GetString([]string{"abidiff", "include_path"}); ok {
		c.Abidiff.IncludePath = v
	}
	src.ForEachInArray([]string{"abidiff", "extra_args"}, func(v string) {
		c.Abidiff.ExtraArgs = append(c.Abidiff.ExtraArgs, v)
	})
	if v, ok := src.GetString([]string{"abidiff", "security_level_threshold"}); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Abidiff.SecurityLevelThreshold = n
		}
	}

	if v, ok := src.GetString([]string{"kmidiff", "suppression_file"}); ok {
		c.Kmidiff.SuppressionFile = v
	}
	if v, ok := src.GetString([]string{"kmidiff", "debuginfo_path"}); ok {
		c.Kmidiff.DebuginfoPath = v
	}
	if v, ok := src.GetString([]string{"kmidiff", "include_path"}); ok {
		c.Kmidiff.IncludePath = v
	}
	src.ForEachInArray([]string{"kmidiff", "extra_args"}, func(v string) {
		c.Kmidiff.ExtraArgs = append(c.Kmidiff.ExtraArgs, v)
	})

	src.ForEachInArray([]string{"patches", "ignore_list"}, func(v string) {
		c.Patches.IgnoreList = append(c.Patches.IgnoreList, v)
	})
	if v, ok := src.GetString([]string{"patches", "file_count_threshold"}); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Patches.FileCountThreshold = n
		}
	}
	if v, ok := src.GetString([]string{"patches", "line_count_threshold"}); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Patches.LineCountThreshold = n
		}
	}

	src.ForEachInArray([]string{"badfuncs"}, func(v string) { c.BadFuncs = append(c.BadFuncs, v) })

	src.ForEachInArray([]string{"runpath", "allowed_paths"}, func(v string) {
		c.RunpathAllowedPaths = append(c.RunpathAllowedPaths, v)
	})
	src.ForEachInArray([]string{"runpath", "allowed_origin_paths"}, func(v string) {
		c.RunpathAllowedOriginPaths = append(c.RunpathAllowedOriginPaths, v)
	})
	src.ForEachInArray([]string{"runpath", "origin_prefix_trim"}, func(v string) {
		if re, err := regexp.Compile(v); err == nil {
			c.RunpathOriginPrefixTrim = append(c.RunpathOriginPrefixTrim, re)
		}
	})

	c.UnicodeExclude = compileOptRegex(src, "unicode", "exclude")
	src.ForEachInArray([]string{"unicode", "excluded_mime_types"}, func(v string) {
		c.UnicodeExcludedMimeTypes = append(c.UnicodeExcludedMimeTypes, v)
	})
	src.ForEachInArray([]string{"unicode", "forbidden_codepoints"}, func(v string) {
		if n, err := strconv.ParseInt(strings.TrimPrefix(v, "0x"), 16, 32); err == nil {
			c.UnicodeForbiddenCodepoints[rune(n)] = true
		}
	})

	src.ForEachInMapping([]string{"rpmdeps", "ignore"}, func(k, v string) {
		if re, err := regexp.Compile(v); err == nil {
			c.RPMDepsIgnore[k] = re
		}
	})

	if v, ok := src.GetString([]string{"debuginfo", "debuginfo_sections"}); ok {
		c.DebuginfoSections = strings.Fields(v)
	}
	if v, ok := src.GetString([]string{"debuginfo", "debuginfo_path"}); ok {
		c.DebuginfoPath = v
	}

	src.ForEachInArray([]string{"udevrules"}, func(v string) { c.UdevRulesDirs = append(c.UdevRulesDirs, v) })

	if v, ok := src.GetString([]string{"modularity", "static_context"}); ok {
		switch v {
		case "required":
			c.ModularityStaticContext = ModularityRequired
		case "forbidden":
			c.ModularityStaticContext = ModularityForbidden
		case "recommend":
			c.ModularityStaticContext = ModularityRecommended
		default:
			c.ModularityStaticContext = ModularityUnset
		}
	}
	src.ForEachInMapping([]string{"modularity", "release"}, func(k, v string) {
		if re, err := regexp.Compile(v); err == nil {
			c.ModularityRelease[k] = re
		}
	})

	return c, nil
}

func compileOptRegex(src ConfigSource, section, key string) *regexp.Regexp {
	v, ok := src.GetString([]string{section, key})
	if !ok || v == "" {
		return nil
	}
	re, err := regexp.Compile(v)
	if err != nil {
		return nil
	}
	return re
}
