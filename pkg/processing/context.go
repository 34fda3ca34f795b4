package processing

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/systemstart/release-pipeline/pkg/api"
)

// Context is the per-release data every step renders its templates from.
// It is built once and not modified while steps run.
type Context struct {
	AppName      string
	Version      string
	SemVer       *semver.Version // nil when Version is not a semantic version
	PackageName  string
	VersionEnv   string
	Icon         string
	AsarUnpack   string
	NativeBinary string
	StackSize    int
	Root         string
	ToolPaths    []string
	Vars         map[string]any
}

// PackageName derives the packaging output name.
func PackageName(appName, version string) string {
	return appName + "-" + version
}

// NewContext builds the release context for version. Any non-empty version
// is accepted; semantic versions additionally expose their components to
// templates. Extra vars override the pipeline's vars.
func NewContext(pipeline *api.Pipeline, version string, extraVars map[string]any) (*Context, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, ErrMissingVersion
	}

	sv, err := semver.NewVersion(version)
	if err != nil {
		slog.Warn("version is not a semantic version", "version", version, "error", err)
		sv = nil
	}

	return &Context{
		AppName:      pipeline.AppName,
		Version:      version,
		SemVer:       sv,
		PackageName:  PackageName(pipeline.AppName, version),
		VersionEnv:   pipeline.VersionEnv,
		Icon:         pipeline.Icon,
		AsarUnpack:   pipeline.AsarUnpack,
		NativeBinary: pipeline.NativeBinary,
		StackSize:    pipeline.StackSize,
		Root:         pipeline.RootDir(),
		ToolPaths:    slices.Clone(pipeline.ToolPaths),
		Vars:         MergeVars(pipeline.Vars, extraVars),
	}, nil
}

// TemplateData returns the values visible to step templates.
func (c *Context) TemplateData() map[string]any {
	data := map[string]any{
		"AppName":      c.AppName,
		"Version":      c.Version,
		"Major":        uint64(0),
		"Minor":        uint64(0),
		"Patch":        uint64(0),
		"Prerelease":   "",
		"PackageName":  c.PackageName,
		"VersionEnv":   c.VersionEnv,
		"Icon":         c.Icon,
		"AsarUnpack":   c.AsarUnpack,
		"NativeBinary": c.NativeBinary,
		"StackSize":    c.StackSize,
		"Root":         c.Root,
		"ToolPaths":    slices.Clone(c.ToolPaths),
		"Vars":         maps.Clone(c.Vars),
	}
	if c.SemVer != nil {
		data["Major"] = c.SemVer.Major()
		data["Minor"] = c.SemVer.Minor()
		data["Patch"] = c.SemVer.Patch()
		data["Prerelease"] = c.SemVer.Prerelease()
	}
	return data
}

// LoadVarsFile reads a YAML file of template variables.
func LoadVarsFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading vars file: %w", err)
	}

	var vars map[string]any
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parsing vars file: %w", err)
	}

	if vars == nil {
		vars = make(map[string]any)
	}

	return vars, nil
}

// MergeVars performs a shallow merge of override over base.
// Override keys replace base keys at the top level.
func MergeVars(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}
