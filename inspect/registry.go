package inspect

const (
	flagAddedFiles uint64 = 1 << iota
	flagRemovedFiles
	flagMovedFiles
	flagChangedFiles
	flagConfig
	flagDoc
	flagSymlinks
	flagDSODeps
	flagRunpath
	flagCapabilities
	flagPathmigration
	flagSubpackages
	flagDebuginfo
	flagUnicode
	flagPolitics
	flagLicense
	flagDisttag
	flagArch
	flagSpecname
	flagManpage
	flagXML
	flagDesktop
	flagShellsyntax
	flagUdevrules
	flagModularity
	flagJavabytecode
	flagLTO
	flagBadfuncs
	flagFiles
	flagOwnership
	flagFilesize
	flagPatches
	flagUpstream
	flagAbidiff
	flagKmidiff
	flagAnnocheck
	flagRPMDeps
	flagMetadata
	flagChangelog
)

// Registry is the static, fixed-order inspection table §4.10 specifies.
// Dispatch walks it in this exact order; formatters and the accumulator's
// ordering guarantee depend on that order never changing at runtime.
var Registry = []Inspection{
	{Flag: flagAddedFiles, Name: "addedfiles", RequiresBothBuilds: true, Description: "files present only in the after build", Driver: AddedFiles},
	{Flag: flagRemovedFiles, Name: "removedfiles", RequiresBothBuilds: true, Description: "files present only in the before build", Driver: RemovedFiles},
	{Flag: flagMovedFiles, Name: "movedfiles", RequiresBothBuilds: true, Description: "files that moved path or subpackage", Driver: MovedFiles},
	{Flag: flagChangedFiles, Name: "changedfiles", RequiresBothBuilds: true, Description: "files whose content changed", Driver: ChangedFiles},
	{Flag: flagConfig, Name: "config", RequiresBothBuilds: true, Description: "%config flag and content drift", Driver: Config},
	{Flag: flagDoc, Name: "doc", RequiresBothBuilds: true, Description: "%doc flag drift", Driver: Doc},
	{Flag: flagSymlinks, Name: "symlinks", Description: "symbolic link resolvability", Driver: Symlinks},
	{Flag: flagDSODeps, Name: "dsodeps", RequiresBothBuilds: true, Description: "shared object DT_NEEDED drift", Driver: DSODeps},
	{Flag: flagRunpath, Name: "runpath", PerformsSecurityChecks: true, Description: "DT_RPATH / DT_RUNPATH validation", Driver: Runpath},
	{Flag: flagCapabilities, Name: "capabilities", PerformsSecurityChecks: true, Description: "file capability policy", Driver: Capabilities},
	{Flag: flagPathmigration, Name: "pathmigration", Description: "deprecated path prefixes", Driver: Pathmigration},
	{Flag: flagSubpackages, Name: "subpackages", RequiresBothBuilds: true, Description: "gained/lost subpackages", Driver: Subpackages},
	{Flag: flagDebuginfo, Name: "debuginfo", Description: "debug section placement", Driver: Debuginfo},
	{Flag: flagUnicode, Name: "unicode", PerformsSecurityChecks: true, Description: "forbidden Unicode code points in source", Driver: Unicode},
	{Flag: flagPolitics, Name: "politics", Description: "politically sensitive content", Driver: Politics},
	{Flag: flagLicense, Name: "license", Description: "license tag validity", Driver: License},
	{Flag: flagDisttag, Name: "disttag", Description: "release dist-tag consistency", Driver: Disttag},
	{Flag: flagArch, Name: "arch", Description: "architecture consistency", Driver: Arch},
	{Flag: flagSpecname, Name: "specname", Description: "spec file naming convention", Driver: Specname},
	{Flag: flagManpage, Name: "manpage", Description: "man page presence and syntax", Driver: Manpage},
	{Flag: flagXML, Name: "xml", Description: "XML file well-formedness", Driver: XML},
	{Flag: flagDesktop, Name: "desktop", Description: "desktop entry file validity", Driver: Desktop},
	{Flag: flagShellsyntax, Name: "shellsyntax", Description: "shell script syntax", Driver: Shellsyntax},
	{Flag: flagUdevrules, Name: "udevrules", Description: "udev rules file validity", Driver: Udevrules},
	{Flag: flagModularity, Name: "modularity", Description: "module static-context policy", Driver: Modularity},
	{Flag: flagJavabytecode, Name: "javabytecode", Description: "minimum JVM bytecode version", Driver: Javabytecode},
	{Flag: flagLTO, Name: "lto", Description: "leftover LTO bytecode symbols", Driver: LTO},
	{Flag: flagBadfuncs, Name: "badfuncs", Description: "forbidden ELF symbol usage", Driver: Badfuncs},
	{Flag: flagFiles, Name: "files", Description: "forbidden file paths", Driver: Files},
	{Flag: flagOwnership, Name: "ownership", Description: "file owner/group policy", Driver: Ownership},
	{Flag: flagFilesize, Name: "filesize", RequiresBothBuilds: true, Description: "file size growth", Driver: Filesize},
	{Flag: flagPatches, Name: "patches", RequiresBothBuilds: true, Description: "source patch churn", Driver: Patches},
	{Flag: flagUpstream, Name: "upstream", RequiresBothBuilds: true, Description: "upstream source archive changed without a version bump", Driver: Upstream},
	{Flag: flagAbidiff, Name: "abidiff", RequiresBothBuilds: true, Description: "ABI comparison via abidiff", Driver: Abidiff},
	{Flag: flagKmidiff, Name: "kmidiff", RequiresBothBuilds: true, Description: "kernel module ABI comparison", Driver: Kmidiff},
	{Flag: flagAnnocheck, Name: "annocheck", Description: "annocheck hardening tests", Driver: Annocheck},
	{Flag: flagRPMDeps, Name: "rpmdeps", RequiresBothBuilds: true, Description: "RPM dependency metadata drift", Driver: RPMDeps},
	{Flag: flagMetadata, Name: "metadata", Description: "package metadata policy", Driver: Metadata},
	{Flag: flagChangelog, Name: "changelog", RequiresBothBuilds: true, Description: "changelog progression", Driver: Changelog},
}

// Names returns every registered inspection name, in table order.
func Names() []string {
	names := make([]string, len(Registry))
	for i, insp := range Registry {
		names[i] = insp.Name
	}
	return names
}
