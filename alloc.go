package clonex

import (
	"reflect"

	"github.com/modern-go/reflect2"
)

// allocate 为类型 t 分配一块清零的存储并返回指向它的指针。
// 分配只涉及存储，不运行任何构造逻辑。
func allocate(t reflect.Type) (reflect.Value, error) {
	if t == nil || t.Kind() == reflect.Invalid {
		return reflect.Value{}, newConstructionBypassError(t)
	}
	return reflect.NewAt(t, reflect2.Type2(t).UnsafeNew()), nil
}

// rtypeOf 返回类型的运行时标识，用作缓存键
func rtypeOf(t reflect.Type) uintptr {
	return reflect2.Type2(t).RType()
}
