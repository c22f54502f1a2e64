package recipe

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// namePattern matches valid kebab-case recipe names.
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	// requirementPattern matches pinned pip requirements: name, optional
	// extras, exact version, optional local version tag (e.g. +cu118).
	requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[A-Za-z0-9,_-]+\])?==([0-9][A-Za-z0-9.]*)(\+[A-Za-z0-9.]+)?$`)

	// commitPattern matches a full git commit hash.
	commitPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// ValidateName validates a recipe name follows kebab-case convention.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name must be kebab-case (lowercase letters, numbers, and hyphens only, starting with a letter)")
	}
	return nil
}

// Requirement is a parsed pinned pip requirement.
type Requirement struct {
	Name     string
	Extras   string
	Version  string
	LocalTag string // local version tag without the '+', e.g. "cu118"
}

// ParseRequirement parses a pinned requirement line.
func ParseRequirement(line string) (Requirement, error) {
	m := requirementPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Requirement{}, fmt.Errorf("requirement %q must be exactly pinned (name==version)", line)
	}
	return Requirement{
		Name:     strings.ToLower(m[1]),
		Extras:   strings.Trim(m[2], "[]"),
		Version:  m[3],
		LocalTag: strings.TrimPrefix(m[4], "+"),
	}, nil
}

// IsCommit reports whether ref is a full commit hash.
func IsCommit(ref string) bool {
	return commitPattern.MatchString(ref)
}

// Validate checks the recipe for semantic errors beyond what the JSON
// schema can express.
func (r *Recipe) Validate() error {
	if r.Version != "1" {
		return fmt.Errorf("unsupported recipe version %q", r.Version)
	}

	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := ValidateName(r.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	if err := r.validateBase(); err != nil {
		return err
	}
	if err := r.validateSystem(); err != nil {
		return err
	}
	if err := r.validatePython(); err != nil {
		return err
	}
	if err := r.validateSource(); err != nil {
		return err
	}
	if err := r.validateExtensions(); err != nil {
		return err
	}

	return nil
}

func (r *Recipe) validateBase() error {
	switch r.Base.Flavor {
	case FlavorCUDA:
		if r.Base.CUDA == "" {
			return fmt.Errorf("base.cuda is required for the cuda flavor")
		}
		if err := CheckBase(r.Base.CUDA, r.Base.OS); err != nil {
			return err
		}
	case FlavorCPU:
		if r.Base.CUDA != "" {
			return fmt.Errorf("base.cuda is not allowed for the cpu flavor")
		}
	default:
		return fmt.Errorf("invalid base.flavor %q", r.Base.Flavor)
	}
	return nil
}

func (r *Recipe) validateSystem() error {
	seen := make(map[string]bool)
	for _, pkg := range r.System.Packages {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("system.packages contains an empty entry")
		}
		if seen[pkg] {
			return fmt.Errorf("duplicate system package: %s", pkg)
		}
		seen[pkg] = true
	}
	return nil
}

func (r *Recipe) validatePython() error {
	switch r.Python.Manager {
	case ManagerMicromamba, ManagerUV, ManagerPip:
	default:
		return fmt.Errorf("invalid python.manager %q", r.Python.Manager)
	}

	if err := CheckPythonVersion(r.Python.Version, r.Python.Manager, r.Base.OS); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, line := range r.Python.Requirements {
		req, err := ParseRequirement(line)
		if err != nil {
			return err
		}
		if seen[req.Name] {
			return fmt.Errorf("duplicate requirement: %s", req.Name)
		}
		seen[req.Name] = true

		if req.LocalTag != "" {
			if err := CheckLocalTag(req, r.Base); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Recipe) validateSource() error {
	if r.Source == nil {
		return nil
	}
	if r.Source.Repo == "" {
		return fmt.Errorf("source.repo is required")
	}
	if !strings.HasPrefix(r.Source.Repo, "https://") && !strings.HasPrefix(r.Source.Repo, "git@") {
		return fmt.Errorf("source.repo must be an https or ssh git URL")
	}
	if !strings.HasPrefix(r.Source.Dest, "/") {
		return fmt.Errorf("source.dest must be an absolute path")
	}
	return nil
}

func (r *Recipe) validateExtensions() error {
	if len(r.Extensions) > 0 && r.Source == nil {
		return fmt.Errorf("extensions require a source block")
	}

	seen := make(map[string]bool)
	for _, ext := range r.Extensions {
		if ext.Name == "" {
			return fmt.Errorf("extension name is required")
		}
		if err := ValidateName(ext.Name); err != nil {
			return fmt.Errorf("extension %q: %w", ext.Name, err)
		}
		if seen[ext.Name] {
			return fmt.Errorf("duplicate extension: %s", ext.Name)
		}
		seen[ext.Name] = true

		if ext.Command == "" {
			return fmt.Errorf("extension %s: command is required", ext.Name)
		}
		if !strings.HasPrefix(ext.Workdir, "/") {
			return fmt.Errorf("extension %s: workdir must be an absolute path", ext.Name)
		}
	}
	return nil
}
