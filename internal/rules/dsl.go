package rules

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/thoreinstein/mimeo/internal/errors"
)

// dslFields is the number of "|"-separated fields each rule code expects.
var dslFields = map[Type]int{
	TypeFile:   5, // R1 | id | original_path | backup_path | filename
	TypeFolder: 4, // R2 | id | original_path | backup_path
	TypeRecent: 5, // R3 | id | original_path | backup_path | count
}

func parseDSL(data []byte) ([]Record, error) {
	var records []Record

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		records = append(records, parseDSLLine(text, line))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading line %d", line+1)
	}

	return records, nil
}

func parseDSLLine(text string, line int) Record {
	fields := strings.Split(text, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	r := Record{
		Type:         NormalizeType(field(0)),
		ID:           field(1),
		OriginalPath: field(2),
		BackupPath:   field(3),
		Line:         line,
	}

	want, known := dslFields[r.Type]
	if !known {
		return r
	}
	if len(fields) != want {
		r.Problems = append(r.Problems,
			fmt.Sprintf("line %d: %s expects %d fields, got %d", line, field(0), want, len(fields)))
	}

	switch r.Type {
	case TypeFile:
		r.Filename = field(4)
	case TypeRecent:
		if n, err := toCount(field(4)); err != nil {
			r.Problems = append(r.Problems, fmt.Sprintf("line %d: count: %v", line, err))
		} else {
			r.Count = n
		}
	}

	return r
}
