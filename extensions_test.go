package uploadkit

import "testing"

func TestCheckExtensions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind RejectionKind
	}{
		{name: "allowed image", input: "photo.jpg"},
		{name: "allowed archive", input: "backup.zip"},
		{name: "no extension", input: "README"},
		{name: "windows executable", input: "setup.exe", wantKind: KindExtensionBlocked},
		{name: "case insensitive", input: "SETUP.EXE", wantKind: KindExtensionBlocked},
		{name: "script", input: "install.sh", wantKind: KindExtensionBlocked},
		{name: "web script", input: "shell.php", wantKind: KindExtensionBlocked},
		{name: "office macro document", input: "invoice.docm", wantKind: KindExtensionBlocked},
		{name: "double extension hides executable", input: "report.csv.exe", wantKind: KindExtensionBlocked},
		{name: "executable before allowed suffix", input: "archive.exe.zip", wantKind: KindExtensionBlocked},
		{name: "inner segment checked", input: "a.bat.b.c", wantKind: KindExtensionBlocked},
		{name: "compound tarball", input: "backup.tar.gz", wantKind: KindCompoundExtensionBlocked},
		{name: "compound userscript", input: "tweak.user.js", wantKind: KindCompoundExtensionBlocked},
		{name: "compound minified script", input: "app.min.js", wantKind: KindCompoundExtensionBlocked},
		{name: "compound beats single", input: "x.tar.xz", wantKind: KindCompoundExtensionBlocked},
		{name: "extension-like stem is safe", input: "exe.txt"},
		{name: "dotfile with safe extension", input: ".config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExtensions(tt.input)

			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected rejection %s, got nil", tt.wantKind)
				}
				if KindOf(err) != tt.wantKind {
					t.Errorf("expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
				}
			} else if err != nil {
				t.Errorf("unexpected rejection: %v", err)
			}
		})
	}
}

func TestExtensionCategory(t *testing.T) {
	tests := []struct {
		ext  string
		want []string
	}{
		{".exe", []string{"windows_executables"}},
		{".PHP", []string{"web_scripts"}},
		{".txt", nil},
	}
	for _, tt := range tests {
		got := ExtensionCategory(tt.ext)
		if len(got) != len(tt.want) {
			t.Errorf("ExtensionCategory(%q) = %v, want %v", tt.ext, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ExtensionCategory(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		}
	}
}

func TestExtensionConflicts(t *testing.T) {
	// Compound suffixes are matched before single segments, so a compound
	// entry also present in the single set would shadow its own kind.
	if conflicts := extensionConflicts(); len(conflicts) != 0 {
		t.Errorf("compound extensions overlap the single blocked set: %v", conflicts)
	}
}
