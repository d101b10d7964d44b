package uploadkit

import "strings"

// reservedDeviceNames are Windows device names that collide with filenames
// regardless of extension (CON.txt opens the console device on Windows)
var reservedDeviceNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// CheckWindowsReservedName rejects filenames whose stem equals a Windows
// reserved device name. The rightmost extension is stripped iteratively so
// compound extensions are handled: CON.tar.gz is caught via con.tar and
// finally con. Iteration stops when stripping no longer changes the stem,
// which also terminates extensionless names.
func CheckWindowsReservedName(filename string) error {
	stem := strings.ToLower(strings.Trim(filename, " ."))
	for stem != "" {
		if _, ok := reservedDeviceNames[stem]; ok {
			return Errorf(KindWindowsReservedName,
				"filename %q collides with Windows reserved device name %q", filename, stem)
		}
		next := stem
		if i := strings.LastIndex(stem, "."); i >= 0 {
			next = strings.Trim(stem[:i], " .")
		}
		if next == stem {
			break
		}
		stem = next
	}
	return nil
}
