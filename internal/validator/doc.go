// Package validator provides the issue/result types used to report problems
// found in rule records before a run.
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: Represents a single validation problem with field context.
//   - [Result]: Aggregates multiple issues and provides helper methods.
//   - [Reporter]: Writes a Result as colored text or JSON.
//
// # Basic Usage
//
//	result := &validator.Result{}
//	if rec.BackupPath == "" {
//		result.AddError("backup_path", "is required", rec.BackupPath)
//	}
//
//	if result.HasErrors() {
//		// the record cannot be run
//	}
package validator
