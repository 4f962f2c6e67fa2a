package service

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional 三态可选字段：未提供 / 显式 null / 有值
// 仅在 JSON 中出现对应键时 Set 为 true
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON 实现 json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Some 构造有值的可选字段
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: value}
}

// Null 构造显式 null 的可选字段
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// HasValue 是否提供了非 null 值
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}
