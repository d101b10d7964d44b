package uploadkit

import (
	"sort"
	"strings"
)

// extensionCategories maps each named category of dangerous file types to
// its extensions. The union forms the blocked single-extension set. Built
// into a lookup set once at package init; validators never iterate the
// categories per call.
var extensionCategories = map[string][]string{
	"windows_executables": {".exe", ".com", ".scr", ".pif", ".msi", ".msp", ".mst", ".cpl", ".dll", ".gadget"},
	"scripts": {
		".bat", ".cmd", ".vb", ".vbs", ".vbe", ".js", ".jse", ".ws", ".wsf", ".wsc", ".wsh",
		".ps1", ".ps1xml", ".ps2", ".ps2xml", ".psc1", ".psc2",
		".msh", ".msh1", ".msh2", ".mshxml", ".msh1xml", ".msh2xml",
		".sh", ".bash", ".zsh", ".csh", ".ksh", ".pl", ".py", ".rb", ".lua",
	},
	"web_scripts": {
		".php", ".phtml", ".php3", ".php4", ".php5", ".php7", ".phps",
		".asp", ".aspx", ".jsp", ".jspx", ".cgi", ".htaccess",
	},
	"unix_executables":     {".bin", ".run", ".out", ".elf"},
	"macos_executables":    {".app", ".dmg", ".pkg", ".command"},
	"java_bytecode":        {".class", ".jar", ".war", ".ear"},
	"mobile_packages":      {".apk", ".ipa", ".aab"},
	"browser_extensions":   {".crx", ".xpi", ".safariextz"},
	"package_formats":      {".deb", ".rpm", ".snap", ".flatpak", ".appimage"},
	"archive_formats":      {".rar", ".7z", ".ace", ".arj", ".cab", ".tar", ".gz", ".bz2", ".xz", ".tgz"},
	"virtualization_images": {".iso", ".img", ".vhd", ".vhdx", ".vmdk", ".ova", ".ovf", ".qcow2"},
	"office_macro_documents": {
		".docm", ".dotm", ".xlsm", ".xltm", ".xlam",
		".pptm", ".potm", ".ppam", ".ppsm", ".sldm",
	},
	"system_shortcuts": {".lnk", ".scf", ".url", ".inf", ".reg", ".desktop"},
	"system_drivers":   {".sys", ".drv", ".vxd", ".ocx"},
	"theme_files":      {".theme", ".themepack", ".deskthemepack", ".msstyles"},
	"help_files":       {".chm", ".hlp"},
}

// compoundBlockedExtensions are multi-segment suffixes treated as a single
// indivisible unit. Checked as a full-suffix match before any per-segment
// analysis; a match here takes priority over the single-extension set.
var compoundBlockedExtensions = []string{
	".tar.gz", ".tar.bz2", ".tar.xz", ".tar.z", ".tar.lz", ".tar.lzma",
	".user.js", ".min.js",
}

// blockedExtensions is the union of all extension categories
var blockedExtensions = buildBlockedExtensionSet()

func buildBlockedExtensionSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, exts := range extensionCategories {
		for _, ext := range exts {
			set[ext] = struct{}{}
		}
	}
	return set
}

// ExtensionCategory returns the category names a blocked extension belongs
// to, or nil if the extension is not blocked
func ExtensionCategory(ext string) []string {
	ext = strings.ToLower(ext)
	var categories []string
	for name, exts := range extensionCategories {
		for _, blocked := range exts {
			if ext == blocked {
				categories = append(categories, name)
				break
			}
		}
	}
	sort.Strings(categories)
	return categories
}

// extensionConflicts reports extensions that appear in both the compound
// and the single blocked set. A non-empty result is a configuration
// conflict surfaced by the startup invariant checks.
func extensionConflicts() []string {
	var conflicts []string
	for _, compound := range compoundBlockedExtensions {
		if _, ok := blockedExtensions[compound]; ok {
			conflicts = append(conflicts, compound)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

// CheckExtensions rejects filenames carrying a blocked extension. The
// compound set is matched first as a full suffix; after that every
// dot-separated suffix segment is checked against the single blocked set,
// not just the last one, so report.csv.exe fails on .exe and
// archive.exe.zip fails even though it ends in an allowed extension.
func CheckExtensions(filename string) error {
	lower := strings.ToLower(filename)

	for _, compound := range compoundBlockedExtensions {
		if strings.HasSuffix(lower, compound) {
			return Errorf(KindCompoundExtensionBlocked,
				"dangerous compound file extension %q detected", compound)
		}
	}

	segments := strings.Split(lower, ".")
	for _, segment := range segments[1:] {
		ext := "." + segment
		if _, ok := blockedExtensions[ext]; ok {
			return Errorf(KindExtensionBlocked,
				"dangerous file extension %q detected", ext)
		}
	}

	return nil
}
