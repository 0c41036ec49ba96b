// Package backup runs backup rules: it validates the paths a rule names,
// copies the source into a fresh timestamped destination and verifies the
// copy by comparing content digests.
//
// # Rules
//
// Three rule variants exist, all behind the [Rule] interface:
//
//   - [FileRule] copies one named file out of a directory.
//   - [FolderRule] copies a directory tree.
//   - [RecentRule] copies the K most recently modified regular files of a
//     directory.
//
// Every rule follows the same protocol. Paths are validated first and no
// filesystem mutation happens if any is missing. A destination directory
// is then created, the data is copied and source and destination are
// hashed and compared. The result is a [RunOutcome]; neither errors nor
// panics escape a rule.
//
// # Destinations
//
// Copies land in
//
//	<backup_path>/<subject> [mimeo]/<YYYY-MM-DD HH_MM_SS>
//
// where the subject is the file name with dots replaced by underscores, or
// the base name of the source directory. The final directory is created
// exclusively, so two runs of the same rule within one clock second fail
// with [ErrAlreadyExists] instead of mixing their files.
//
// # Running
//
// [Runner.ProcessAll] runs parsed rule records sequentially in input order.
// A record with an unknown type yields a ValidationFailed outcome and does
// not stop the records after it:
//
//	r := backup.NewRunner(backup.WithLogger(logger), backup.WithSpacing(time.Second))
//	for _, out := range r.ProcessAll(ctx, records) {
//	    fmt.Println(out.RuleID, out.Status)
//	}
package backup
