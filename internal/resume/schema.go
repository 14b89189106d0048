package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var schemaJSON []byte

// ErrInvalidDocument 表示原始 JSON 不符合简历结构。
var ErrInvalidDocument = errors.New("invalid resume document")

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// ValidateJSON 在解码之前按内置 schema 校验原始文档。
func ValidateJSON(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load resume schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// DecodeJSON 校验并解码为 RawDocument，之后仍需经过 Normalize。
func DecodeJSON(raw []byte) (RawDocument, error) {
	if err := ValidateJSON(raw); err != nil {
		return RawDocument{}, err
	}
	var doc RawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return RawDocument{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}
