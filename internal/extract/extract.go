// Package extract turns uploaded JSON, CSV, XLSX, or plain-text content into
// the flat ordered list of feedback strings the batch endpoint consumes. The
// list is truncated to MaxFeedbacks before it ever reaches the pipeline.
package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"feedback-insights-go/internal/types"
)

// MaxFeedbacks caps the extracted list at the batch endpoint's limit.
const MaxFeedbacks = 100

// textColumnNames are header heuristics for picking the feedback column in
// CSV/XLSX files.
var textColumnNames = []string{"feedback", "comment", "review", "text", "message"}

// FromUpload parses an uploaded file into feedback strings. The format is
// chosen by filename extension, falling back to content sniffing for files
// without a recognized one.
func FromUpload(filename string, data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, types.NewError(types.ErrValidation, "uploaded file is empty")
	}

	switch {
	case hasExt(filename, ".json"):
		return fromJSON(data)
	case hasExt(filename, ".csv"):
		return fromCSV(data)
	case hasExt(filename, ".xlsx"):
		return fromXLSX(data)
	case hasExt(filename, ".txt"):
		return fromText(data), nil
	}

	// no recognized extension: sniff
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '[' || trimmed[0] == '{' {
		return fromJSON(data)
	}
	if bytes.HasPrefix(data, []byte("PK")) {
		return fromXLSX(data)
	}
	return fromText(data), nil
}

func hasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), ext)
}

// fromJSON accepts an array of strings, an array of objects carrying a text
// column, or an object wrapping either under "feedbacks".
func fromJSON(data []byte) ([]string, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, types.NewError(types.ErrValidation, "uploaded file is not valid JSON").WithCause(err)
	}

	if obj, ok := root.(map[string]any); ok {
		if inner, ok := obj["feedbacks"]; ok {
			root = inner
		}
	}

	arr, ok := root.([]any)
	if !ok {
		return nil, types.NewError(types.ErrValidation, "JSON upload must be an array of feedback entries")
	}

	var out []string
	for _, el := range arr {
		switch v := el.(type) {
		case string:
			out = appendFeedback(out, v)
		case map[string]any:
			for _, col := range textColumnNames {
				if s, ok := v[col].(string); ok {
					out = appendFeedback(out, s)
					break
				}
			}
		}
	}
	return capList(out), nil
}

func fromCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, types.NewError(types.ErrValidation, "uploaded file is not valid CSV").WithCause(err)
	}
	return fromRows(rows), nil
}

func fromXLSX(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewError(types.ErrValidation, "uploaded file is not a readable workbook").WithCause(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, types.NewError(types.ErrValidation, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, types.NewError(types.ErrValidation, fmt.Sprintf("cannot read sheet %q", sheets[0])).WithCause(err)
	}
	return fromRows(rows), nil
}

// fromRows picks the feedback column by header heuristics; without a matching
// header every first cell is taken and the first row is kept as data.
func fromRows(rows [][]string) []string {
	if len(rows) == 0 {
		return []string{}
	}

	col := -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		for _, name := range textColumnNames {
			if strings.Contains(l, name) {
				col = i
				break
			}
		}
		if col != -1 {
			break
		}
	}

	start := 1
	if col == -1 {
		col = 0
		start = 0
	}

	var out []string
	for _, row := range rows[start:] {
		if col < len(row) {
			out = appendFeedback(out, row[col])
		}
	}
	return capList(out)
}

func fromText(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		out = appendFeedback(out, line)
	}
	return capList(out)
}

func appendFeedback(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	return append(list, s)
}

func capList(list []string) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > MaxFeedbacks {
		return list[:MaxFeedbacks]
	}
	return list
}
