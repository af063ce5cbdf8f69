package cms

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/jonathan/peoplemap/internal/schemas"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var resultPath = jp.MustParseString("$.result")

// DecodeQueryResponse extracts the person records from a query API response body
// of the form {"result": [...]}.
func DecodeQueryResponse(body []byte) ([]types.PersonRecord, error) {
	doc, err := oj.Parse(body)
	if err != nil {
		return nil, &MalformedResponseError{Message: "response is not valid JSON", Cause: err}
	}

	matches := resultPath.Get(doc)
	if len(matches) == 0 {
		return nil, &MalformedResponseError{Message: "response has no result member"}
	}

	return toRecords(matches[0])
}

// DecodeExport reads a content export, either a JSON array of documents or
// newline-delimited JSON with one document per line.
func DecodeExport(data []byte) ([]types.PersonRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []types.PersonRecord{}, nil
	}

	if trimmed[0] == '[' {
		doc, err := oj.Parse(trimmed)
		if err != nil {
			return nil, &MalformedResponseError{Message: "export is not valid JSON", Cause: err}
		}
		return toRecords(doc)
	}

	var docs []any
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		doc, err := oj.Parse(text)
		if err != nil {
			return nil, &MalformedResponseError{Message: fmt.Sprintf("export line %d is not valid JSON", line), Cause: err}
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, &MalformedResponseError{Message: "failed to read export", Cause: err}
	}

	return toRecords(docs)
}

// toRecords checks that v is a sequence of objects and converts it.
func toRecords(v any) ([]types.PersonRecord, error) {
	if err := schemas.ValidateDocument(schemas.QueryResult, v); err != nil {
		return nil, &MalformedResponseError{Message: "expected a sequence of documents", Cause: err}
	}

	items, _ := v.([]any)
	records := make([]types.PersonRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &MalformedResponseError{Message: fmt.Sprintf("document %d is not an object", i)}
		}
		records = append(records, types.PersonRecord(obj))
	}
	return records, nil
}
