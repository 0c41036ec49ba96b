package doctor

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/disk"

	"github.com/thoreinstein/mimeo/internal/config"
	"github.com/thoreinstein/mimeo/internal/rules"
	"github.com/thoreinstein/mimeo/internal/validator"
)

// ConfigCheck reports whether the configuration loaded cleanly.
type ConfigCheck struct {
	// File is the config file that was read, or "" if defaults were used.
	File string

	// Config is the loaded configuration; nil when Err is set.
	Config *config.Config

	// Err is the error returned by config.Load, if any.
	Err error
}

var _ Check = (*ConfigCheck)(nil)

// Name returns the check identifier.
func (c *ConfigCheck) Name() string { return "config" }

// Category returns the check category.
func (c *ConfigCheck) Category() string { return "config" }

// Run executes the config check.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.Err != nil {
		result.Status = SeverityError
		result.Message = "config could not be loaded"
		result.Details = map[string]any{"error": c.Err.Error()}
		result.FixHint = "Fix the config file or pass a different one with --config"
		return result
	}

	if c.Config != nil {
		result.Details = map[string]any{
			"rules_file":     c.Config.RulesFile,
			"log_dir":        c.Config.LogDir,
			"rule_spacing":   c.Config.RuleSpacing.String(),
			"hash_algorithm": c.Config.HashAlgorithm,
		}
	}

	if c.File == "" {
		result.Status = SeverityInfo
		result.Message = "no config file found, using defaults"
		return result
	}

	result.Status = SeverityPass
	result.Message = "loaded " + c.File
	return result
}

// LogDirCheck verifies the dated run log directory can be written.
type LogDirCheck struct {
	Dir string
}

var _ Check = (*LogDirCheck)(nil)

// Name returns the check identifier.
func (c *LogDirCheck) Name() string { return "log-dir" }

// Category returns the check category.
func (c *LogDirCheck) Category() string { return "filesystem" }

// Run executes the log directory check.
func (c *LogDirCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.Dir == "" {
		result.Status = SeverityInfo
		result.Message = "file logging disabled"
		return result
	}
	result.Details = map[string]any{"path": c.Dir}

	info, err := os.Stat(c.Dir)
	switch {
	case os.IsNotExist(err):
		result.Status = SeverityInfo
		result.Message = "log directory will be created on the first run"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat log directory: %v", err)
		return result
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "log_dir is not a directory"
		result.FixHint = "Point log_dir at a directory"
		return result
	}

	if !isDirectoryWritable(c.Dir) {
		result.Status = SeverityError
		result.Message = "log directory is not writable"
		result.FixHint = fmt.Sprintf("chmod u+w %q", c.Dir)
		return result
	}

	result.Status = SeverityPass
	result.Message = "log directory is writable"
	return result
}

// RulesFileCheck parses the rules file and checks every record.
type RulesFileCheck struct {
	Path string
}

var _ Check = (*RulesFileCheck)(nil)

// Name returns the check identifier.
func (c *RulesFileCheck) Name() string { return "rules-file" }

// Category returns the check category.
func (c *RulesFileCheck) Category() string { return "rules" }

// Run executes the rules file check.
func (c *RulesFileCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}

	records, err := rules.Load(c.Path)
	if err != nil {
		result.Status = SeverityError
		result.Message = "rules file could not be read"
		result.Details["error"] = err.Error()
		result.FixHint = "Create the rules file or set rules_file in the config"
		return result
	}
	result.Details["rules"] = len(records)

	res := rules.CheckAll(records)
	var issues []string
	for _, issue := range res.Errors() {
		issues = append(issues, issueLine(issue))
	}
	for _, issue := range res.Warnings() {
		issues = append(issues, issueLine(issue))
	}
	if len(issues) > 0 {
		result.Details["issues"] = issues
	}

	switch {
	case res.HasErrors():
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d invalid rule field(s)", len(res.Errors()))
		result.FixHint = fmt.Sprintf("Run 'mimeo check %s' for details", c.Path)
	case len(res.Warnings()) > 0:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d rule(s) with warnings", len(res.Warnings()))
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("%d rule(s) parsed", len(records))
	}
	return result
}

// issueLine prefixes an issue with the rule it belongs to.
func issueLine(issue validator.Issue) string {
	if id := issue.Context["rule"]; id != "" {
		return id + ": " + issue.Error()
	}
	return issue.Error()
}

// diskUsage reports filesystem usage for a path.
var diskUsage = disk.Usage

// BackupTargetsCheck verifies that each rule's source is present and its
// backup directory can be written and has free space.
type BackupTargetsCheck struct {
	Records []rules.Record
}

var _ Check = (*BackupTargetsCheck)(nil)

// Name returns the check identifier.
func (c *BackupTargetsCheck) Name() string { return "backup-targets" }

// Category returns the check category.
func (c *BackupTargetsCheck) Category() string { return "filesystem" }

// Run executes the backup target check.
func (c *BackupTargetsCheck) Run() *CheckResult {
	var missing, unwritable []string
	free := make(map[string]string)
	checked := 0

	for _, r := range c.Records {
		if !r.Type.Known() {
			continue
		}
		checked++

		if _, err := os.Stat(r.OriginalPath); err != nil {
			missing = append(missing, fmt.Sprintf("%s: original_path %s", r.ID, r.OriginalPath))
		}

		info, err := os.Stat(r.BackupPath)
		switch {
		case err != nil:
			missing = append(missing, fmt.Sprintf("%s: backup_path %s", r.ID, r.BackupPath))
		case !info.IsDir():
			unwritable = append(unwritable, fmt.Sprintf("%s: %s is not a directory", r.ID, r.BackupPath))
		case !isDirectoryWritable(r.BackupPath):
			unwritable = append(unwritable, fmt.Sprintf("%s: %s is not writable", r.ID, r.BackupPath))
		default:
			if _, seen := free[r.BackupPath]; seen {
				continue
			}
			usage, err := diskUsage(r.BackupPath)
			if err != nil {
				free[r.BackupPath] = "unknown"
				continue
			}
			free[r.BackupPath] = humanize.IBytes(usage.Free)
			if usage.Free == 0 {
				unwritable = append(unwritable, fmt.Sprintf("%s: %s has no free space", r.ID, r.BackupPath))
			}
		}
	}

	return buildTargetsResult(c, checked, missing, unwritable, free)
}

func buildTargetsResult(c *BackupTargetsCheck, checked int, missing, unwritable []string, free map[string]string) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"rules_checked": checked},
	}
	if len(free) > 0 {
		result.Details["free_space"] = free
	}
	if len(missing) > 0 {
		result.Details["missing"] = missing
	}
	if len(unwritable) > 0 {
		result.Details["unwritable"] = unwritable
	}

	switch {
	case len(unwritable) > 0:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d backup target(s) cannot be written", len(unwritable))
		result.FixHint = "Free space or fix permissions on the listed backup directories"
	case len(missing) > 0:
		// Backup drives are often mounted only for the run.
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d path(s) do not exist right now", len(missing))
	case checked == 0:
		result.Status = SeverityInfo
		result.Message = "no rules to check"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d rule target(s) reachable", checked)
	}
	return result
}

// isDirectoryWritable checks if a directory is writable by creating a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".mimeo-doctor-test-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
