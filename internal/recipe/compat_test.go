package recipe

import (
	"sort"
	"strings"
	"testing"
)

func TestSupportedCUDA_Sorted(t *testing.T) {
	t.Parallel()

	versions := SupportedCUDA()
	if len(versions) == 0 {
		t.Fatal("SupportedCUDA() returned no versions")
	}
	if !sort.StringsAreSorted(versions) {
		t.Errorf("SupportedCUDA() not sorted: %v", versions)
	}
}

func TestCheckBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cuda    string
		os      string
		wantErr string
	}{
		{name: "known pair", cuda: "11.8.0", os: "ubuntu22.04"},
		{name: "older release", cuda: "11.3.1", os: "ubuntu20.04"},
		{name: "unknown cuda", cuda: "10.2.0", os: "ubuntu20.04", wantErr: "unknown cuda version"},
		{name: "unpublished os", cuda: "11.3.1", os: "ubuntu22.04", wantErr: "no published base"},
		{name: "newest needs jammy", cuda: "12.4.1", os: "ubuntu20.04", wantErr: "no published base"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckBase(tt.cuda, tt.os)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CheckBase(%q, %q) error: %v", tt.cuda, tt.os, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckBase(%q, %q) = %v, want error containing %q", tt.cuda, tt.os, err, tt.wantErr)
			}
		})
	}
}

func TestCheckLocalTag(t *testing.T) {
	t.Parallel()

	cudaBase := Base{Flavor: FlavorCUDA, CUDA: "11.8.0"}
	cpuBase := Base{Flavor: FlavorCPU}

	tests := []struct {
		name    string
		req     Requirement
		base    Base
		wantErr string
	}{
		{
			name: "matching series",
			req:  Requirement{Name: "torch", Version: "2.0.1", LocalTag: "cu118"},
			base: cudaBase,
		},
		{
			name: "no local tag",
			req:  Requirement{Name: "numpy", Version: "1.24.4"},
			base: cudaBase,
		},
		{
			name: "unknown tag tolerated",
			req:  Requirement{Name: "pkg", Version: "1.0", LocalTag: "rocm5"},
			base: cpuBase,
		},
		{
			name:    "series mismatch",
			req:     Requirement{Name: "torch", Version: "2.1.0", LocalTag: "cu121"},
			base:    cudaBase,
			wantErr: "requires cuda 12.1.x",
		},
		{
			name:    "cuda wheel on cpu base",
			req:     Requirement{Name: "torch", Version: "2.0.1", LocalTag: "cu118"},
			base:    cpuBase,
			wantErr: "requires a cuda base",
		},
		{
			name:    "cpu wheel on cuda base",
			req:     Requirement{Name: "torch", Version: "2.0.1", LocalTag: "cpu"},
			base:    cudaBase,
			wantErr: "cpu wheel",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckLocalTag(tt.req, tt.base)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CheckLocalTag() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckLocalTag() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPythonVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		manager Manager
		os      string
		wantErr bool
	}{
		{name: "micromamba oldest", version: "3.8", manager: ManagerMicromamba, os: "ubuntu22.04"},
		{name: "uv mid range", version: "3.10", manager: ManagerUV, os: "ubuntu22.04"},
		{name: "micromamba newest", version: "3.12", manager: ManagerMicromamba, os: "ubuntu22.04"},
		{name: "below range", version: "3.7", manager: ManagerMicromamba, os: "ubuntu22.04", wantErr: true},
		{name: "above range", version: "3.13", manager: ManagerUV, os: "ubuntu22.04", wantErr: true},
		{name: "python 2", version: "2.7", manager: ManagerMicromamba, os: "ubuntu22.04", wantErr: true},
		{name: "no minor", version: "3", manager: ManagerMicromamba, os: "ubuntu22.04", wantErr: true},
		{name: "patch version", version: "3.10.4", manager: ManagerMicromamba, os: "ubuntu22.04", wantErr: true},
		{name: "not a version", version: "three.ten", manager: ManagerMicromamba, os: "ubuntu22.04", wantErr: true},
		{name: "pip matches jammy distro", version: "3.10", manager: ManagerPip, os: "ubuntu22.04"},
		{name: "pip matches focal distro", version: "3.8", manager: ManagerPip, os: "ubuntu20.04"},
		{name: "pip cannot pin newer than distro", version: "3.11", manager: ManagerPip, os: "ubuntu22.04", wantErr: true},
		{name: "pip cannot pin older than distro", version: "3.8", manager: ManagerPip, os: "ubuntu22.04", wantErr: true},
		{name: "uv pins any version regardless of distro", version: "3.8", manager: ManagerUV, os: "ubuntu22.04"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckPythonVersion(tt.version, tt.manager, tt.os)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPythonVersion(%q, %q, %q) = %v, wantErr %v", tt.version, tt.manager, tt.os, err, tt.wantErr)
			}
		})
	}
}
