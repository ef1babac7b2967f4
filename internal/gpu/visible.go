package gpu

import (
	"os"
	"strconv"
	"strings"
)

// VisibleDevicesEnv is the variable the CUDA runtime consults to restrict and reorder devices.
const VisibleDevicesEnv = "CUDA_VISIBLE_DEVICES"

// VisibleOrdinals maps CUDA ordinals to physical device indices. uuids holds the
// UUID of every physical device, indexed by NVML index; an empty string marks a
// device whose UUID could not be read.
//
// When set is false every device is visible in NVML order. Otherwise value is
// parsed like the CUDA runtime does: comma-separated indices or UUID prefixes,
// stopping at the first entry that is invalid, out of range, ambiguous or a
// repeat of an earlier one.
func VisibleOrdinals(value string, set bool, uuids []string) []int {
	if !set {
		all := make([]int, len(uuids))
		for i := range all {
			all[i] = i
		}
		return all
	}

	visible := make([]int, 0, len(uuids))
	seen := make(map[int]bool, len(uuids))

	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		index, ok := resolveVisibleEntry(entry, uuids)
		if !ok || seen[index] {
			break
		}
		seen[index] = true
		visible = append(visible, index)
	}

	return visible
}

func resolveVisibleEntry(entry string, uuids []string) (int, bool) {
	if entry == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(entry); err == nil {
		if n < 0 || n >= len(uuids) {
			return 0, false
		}
		return n, true
	}

	match := -1
	for i, uuid := range uuids {
		if uuid == "" || !strings.HasPrefix(uuid, entry) {
			continue
		}
		if match >= 0 {
			return 0, false
		}
		match = i
	}
	return match, match >= 0
}

func lookupVisibleDevices() (string, bool) {
	return os.LookupEnv(VisibleDevicesEnv)
}
