package common

import (
	"database/sql/driver"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// JSONList 以 JSON 文本存储的切片列
type JSONList[T any] []T

// Scan 实现 sql.Scanner
func (j *JSONList[T]) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return fmt.Errorf("failed to unmarshal JSON value: %v", value)
	}

	var result []T
	if err := jsoniter.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Value 实现 driver.Valuer
func (j JSONList[T]) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	bytes, err := jsoniter.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}
