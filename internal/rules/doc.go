// Package rules defines the rule record consumed by the backup engine and
// loads records from rule files.
//
// # Rule Files
//
// Four formats are accepted, chosen by file extension:
//
//   - .json: a document with a top-level "rules" array
//   - .yaml / .yml: the same structure in YAML
//   - .toml: the same structure as [[rules]] tables
//   - anything else: the line-oriented format described below
//
// A JSON rule file looks like:
//
//	{
//	  "rules": [
//	    {"id": "notes", "type": "File", "original_path": "~/Documents", "filename": "notes.txt", "backup_path": "/mnt/backup"},
//	    {"id": "photos", "type": "Folder", "original_path": "~/Pictures", "backup_path": "/mnt/backup"},
//	    {"id": "logs", "type": "Recent", "original_path": "/var/log/app", "count": 3, "backup_path": "/mnt/backup"}
//	  ]
//	}
//
// The keys "file" and "number" are accepted as aliases of "filename" and
// "count", and the type names FileRule, FolderRule and RecentRule are
// accepted as aliases of File, Folder and Recent.
//
// # Line Format
//
// One rule per line, fields separated by "|". Blank lines and lines
// starting with "#" are ignored:
//
//	R1 | notes  | ~/Documents  | /mnt/backup | notes.txt
//	R2 | photos | ~/Pictures   | /mnt/backup
//	R3 | logs   | /var/log/app | /mnt/backup | 3
//
// R1 copies one file, R2 a folder, R3 the N most recent files.
//
// # Checking Records
//
// Loading never rejects an individual record: malformed records are kept so
// that the runner can report them alongside the others. Use [Check] or
// [CheckAll] to find problems up front.
package rules
