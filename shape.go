package clonex

import (
	"reflect"
	"sync"
	"time"
)

// category 类型的结构分类。每个类型都恰好落入一个分类，分类只取决于类型本身。
type category int

const (
	// categoryScalar 按值复制、没有嵌套标识的类型
	categoryScalar category = iota + 1
	// categoryValueAggregate 值语义的复合类型，复制即逐成员复制
	categoryValueAggregate
	// categoryArray 数组或切片，任意秩
	categoryArray
	// categoryReferenceAggregate 具有标识语义的堆对象
	categoryReferenceAggregate
)

// scalarStructs 被登记为标量的结构体类型
var scalarStructs sync.Map

func init() {
	// 常见的类标量结构体
	RegisterScalar(time.Time{}, reflect.Value{})
}

// RegisterScalar marks the struct types of the given values as scalar, so every
// clone mode copies them by value instead of walking their members. Non-struct
// values are ignored. Register types before the first clone of anything that
// contains them; classification of a type is fixed once a procedure for it is
// synthesized.
func RegisterScalar(values ...any) {
	for _, v := range values {
		t := reflect.TypeOf(v)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			continue
		}
		scalarStructs.Store(t, struct{}{})
	}
}

// classify 分类类型。纯函数，无副作用，覆盖所有kind。
func classify(t reflect.Type) category {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String,
		// func、chan、unsafe.Pointer 是不透明句柄，按值复制
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return categoryScalar
	case reflect.Struct:
		if _, ok := scalarStructs.Load(t); ok {
			return categoryScalar
		}
		return categoryValueAggregate
	case reflect.Array, reflect.Slice:
		return categoryArray
	default:
		return categoryReferenceAggregate
	}
}
