package versionstore

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// encode serializes a single record into a one-row parquet blob. The schema
// is derived from the record struct, so every stored object carries its own
// column layout.
func encode[T any](rec *T) ([]byte, error) {
	buf := new(bytes.Buffer)

	w := parquet.NewGenericWriter[T](buf)
	if _, err := w.Write([]T{*rec}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}

// decode deserializes a one-row parquet blob back into a record.
func decode[T any](data []byte) (*T, error) {
	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("decode: empty version object")
	}

	return &rows[0], nil
}
