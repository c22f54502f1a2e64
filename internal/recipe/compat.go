package recipe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// cudaBases lists the nvidia/cuda devel tags envforge knows how to pin,
// mapped to the Ubuntu releases they are published for.
var cudaBases = map[string][]string{
	"11.3.1": {"ubuntu20.04"},
	"11.6.2": {"ubuntu20.04"},
	"11.7.1": {"ubuntu20.04", "ubuntu22.04"},
	"11.8.0": {"ubuntu20.04", "ubuntu22.04"},
	"12.1.1": {"ubuntu20.04", "ubuntu22.04"},
	"12.4.1": {"ubuntu22.04"},
}

// localTagSeries maps wheel local version tags to the CUDA series they
// are built against. A torch==X+cu118 wheel loads only on CUDA 11.8.
var localTagSeries = map[string]string{
	"cu113": "11.3",
	"cu116": "11.6",
	"cu117": "11.7",
	"cu118": "11.8",
	"cu121": "12.1",
	"cu124": "12.4",
	"cpu":   "",
}

const (
	minPythonMinor = 8
	maxPythonMinor = 12
)

// distroPython maps Ubuntu releases to the python3 version they ship.
// The pip manager uses the distro interpreter, so recipes pinning pip
// must pin the version the base OS actually provides.
var distroPython = map[string]string{
	"ubuntu20.04": "3.8",
	"ubuntu22.04": "3.10",
}

// SupportedCUDA returns the known CUDA versions in ascending order.
func SupportedCUDA() []string {
	versions := make([]string, 0, len(cudaBases))
	for v := range cudaBases {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// CheckBase verifies the CUDA/OS pair corresponds to a published base tag.
func CheckBase(cuda, os string) error {
	oses, ok := cudaBases[cuda]
	if !ok {
		return fmt.Errorf("unknown cuda version %q (supported: %s)", cuda, strings.Join(SupportedCUDA(), ", "))
	}
	for _, o := range oses {
		if o == os {
			return nil
		}
	}
	return fmt.Errorf("cuda %s has no published base for %s (available: %s)", cuda, os, strings.Join(oses, ", "))
}

// CheckLocalTag verifies a wheel's local version tag is coherent with
// the recipe base: +cuXYZ wheels need a matching CUDA series, +cpu
// wheels must not be used on a CUDA base.
func CheckLocalTag(req Requirement, base Base) error {
	series, ok := localTagSeries[req.LocalTag]
	if !ok {
		// Unknown local tags are tolerated: not every wheel tag encodes
		// a CUDA series.
		return nil
	}

	if series == "" {
		if base.Flavor == FlavorCUDA {
			return fmt.Errorf("%s==%s+%s is a cpu wheel but the base is cuda %s", req.Name, req.Version, req.LocalTag, base.CUDA)
		}
		return nil
	}

	if base.Flavor != FlavorCUDA {
		return fmt.Errorf("%s==%s+%s requires a cuda base", req.Name, req.Version, req.LocalTag)
	}
	if !strings.HasPrefix(base.CUDA, series+".") && base.CUDA != series {
		return fmt.Errorf("%s==%s+%s requires cuda %s.x, base pins cuda %s", req.Name, req.Version, req.LocalTag, series, base.CUDA)
	}
	return nil
}

// CheckPythonVersion verifies the interpreter version is a supported
// minor release the manager can provide. micromamba and uv install any
// supported interpreter; pip uses the distro python, so the pinned
// version must match what the base OS ships.
func CheckPythonVersion(version string, manager Manager, os string) error {
	parts := strings.Split(version, ".")
	if len(parts) != 2 || parts[0] != "3" {
		return fmt.Errorf("python.version must be a 3.x minor version, got %q", version)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("python.version must be a 3.x minor version, got %q", version)
	}
	if minor < minPythonMinor || minor > maxPythonMinor {
		return fmt.Errorf("python 3.%d is outside the supported range (3.%d-3.%d)", minor, minPythonMinor, maxPythonMinor)
	}

	if manager == ManagerPip {
		if distro, ok := distroPython[os]; ok && distro != version {
			return fmt.Errorf("python.manager pip uses the distro interpreter: %s ships python %s, not %s (use micromamba or uv to pin another version)", os, distro, version)
		}
	}
	return nil
}
