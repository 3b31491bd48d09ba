package config

import (
	"regexp"

	"github.com/rpminspect/rpminspect/results"
)

// FavorRelease resolves a product-release conflict between the before and
// after builds.
type FavorRelease int

const (
	FavorNone FavorRelease = iota
	FavorOldest
	FavorNewest
)

// ModularityContext constrains whether a module's static_context flag is
// required, forbidden, or merely recommended.
type ModularityContext int

const (
	ModularityUnset ModularityContext = iota
	ModularityRequired
	ModularityForbidden
	ModularityRecommended
)

// AnnocheckConfig holds the annocheck test-name -> command-line-fragment
// mapping plus its failure policy.
type AnnocheckConfig struct {
	Tests           map[string]string
	FailureSeverity string
	Profile         string
}

// AbidiffConfig and KmidiffConfig share shape except abidiff's extra
// security threshold.
type AbidiffConfig struct {
	SuppressionFile        string
	DebuginfoPath          string
	IncludePath            string
	ExtraArgs              []string
	SecurityLevelThreshold int
}

type KmidiffConfig struct {
	SuppressionFile string
	DebuginfoPath   string
	IncludePath     string
	ExtraArgs       []string
}

// PatchesConfig bounds how many patch-file changes are tolerated before
// the patches inspection escalates.
type PatchesConfig struct {
	IgnoreList         []string
	FileCountThreshold int
	LineCountThreshold int
}

// OwnershipConfig describes the expected owner/group of binaries.
type OwnershipConfig struct {
	BinPaths        []string
	BinOwner        string
	BinGroup        string
	ForbiddenOwners []string
	ForbiddenGroups []string
}

// RunConfig is the immutable, fully-resolved configuration every inspection
// driver consults. It is built once per run by Load and never mutated
// afterward.
type RunConfig struct {
	Workdir     string
	ProfileDir  string

	KojiHub            string
	KojiDownloadUrsine string
	KojiDownloadMBS    string

	Commands map[string]string

	VendorDataDir string
	LicenseDB     []string
	FavorRelease  FavorRelease

	EnabledInspections map[string]bool

	Products map[string]*regexp.Regexp

	GlobalIgnore      []string
	PerInspectionIgnore map[string][]string

	SecurityPathPrefix []string
	BadWords           []string

	MetadataVendor             string
	MetadataBuildhostSubdomain []string

	ELFIncludePath     *regexp.Regexp
	ELFExcludePath     *regexp.Regexp
	ManpageIncludePath *regexp.Regexp
	ManpageExcludePath *regexp.Regexp
	XMLIncludePath     *regexp.Regexp
	XMLExcludePath     *regexp.Regexp

	DesktopEntryFilesDir string

	HeaderFileExtensions []string

	ForbiddenPathPrefixes []string
	ForbiddenPathSuffixes []string
	ForbiddenDirectories  []string

	Ownership OwnershipConfig

	ShellInterpreters []string

	FilesizeThresholdBytes int64
	FilesizeInfoOnly       bool

	LTOSymbolNamePrefixes []string

	SpecnameMatch   string
	SpecnamePrimary string

	Annocheck AnnocheckConfig

	JavaBytecodeMinVersion map[string]int

	PathMigration         map[string]string
	PathMigrationExcluded []string

	FilesForbiddenPaths []string

	Abidiff AbidiffConfig
	Kmidiff KmidiffConfig

	Patches PatchesConfig

	BadFuncs []string

	RunpathAllowedPaths       []string
	RunpathAllowedOriginPaths []string
	RunpathOriginPrefixTrim   []*regexp.Regexp

	UnicodeExclude            *regexp.Regexp
	UnicodeExcludedMimeTypes  []string
	UnicodeForbiddenCodepoints map[rune]bool

	RPMDepsIgnore map[string]*regexp.Regexp

	DebuginfoSections []string
	DebuginfoPath     string

	UdevRulesDirs []string

	ModularityStaticContext ModularityContext
	ModularityRelease       map[string]*regexp.Regexp

	RebaseDetection bool
	Threshold       results.Severity
	SuppressBelow   results.Severity
}

// IsInspectionEnabled reports whether name is enabled, defaulting to true
// when the map carries no explicit entry (the "all" starting mask).
func (c *RunConfig) IsInspectionEnabled(name string) bool {
	if c.EnabledInspections == nil {
		return true
	}
	enabled, ok := c.EnabledInspections[name]
	if !ok {
		return true
	}
	return enabled
}

// IgnoredFor reports whether localpath matches the global ignore list or
// the per-inspection ignore list for inspection.
func (c *RunConfig) IgnoredFor(inspection, localpath string) bool {
	if matchAny(c.GlobalIgnore, localpath) {
		return true
	}
	return matchAny(c.PerInspectionIgnore[inspection], localpath)
}
