package clonex

import (
	"fmt"
	"reflect"
	"strings"
)

type Code int

const (
	// Introspection 运行时无法描述某个类型的成员。致命错误，立即上抛。
	Introspection Code = iota + 1
	// ConstructionBypass 无法为某个类型分配未构造的存储。致命错误，立即上抛。
	ConstructionBypass
	// TypeMismatch 克隆结果无法表示为调用方声明的类型。正确分类下不应出现。
	TypeMismatch
	// PointerCycle 对象图中存在循环引用
	PointerCycle
	// UnsupportedType 无法克隆的类型
	UnsupportedType
)

type Error struct {
	Code       Code
	Labels     []string
	TargetType reflect.Type
	SourceType reflect.Type
	err        error
}

func (e Error) Error() string {
	labels := strings.Join(e.Labels, ".")
	switch e.Code {
	case Introspection:
		return fmt.Sprintf("clonex: failed to introspect type(%s), %v", e.SourceType.String(), e.err)
	case ConstructionBypass:
		if e.SourceType == nil {
			return "clonex: failed to allocate storage for invalid type"
		}
		return fmt.Sprintf("clonex: failed to allocate storage for type(%s) without construction", e.SourceType.String())
	case TypeMismatch:
		if e.TargetType == nil {
			return fmt.Sprintf("clonex: type mismatch error, type(%s) -> nil", e.SourceType.String())
		}
		return fmt.Sprintf("clonex: type mismatch error, type(%s) -> type(%s)", e.SourceType.String(), e.TargetType.String())
	case PointerCycle:
		return fmt.Sprintf("clonex: pointer cycle error, %s, encountered a cycle via %s", labels, e.SourceType.String())
	case UnsupportedType:
		return fmt.Sprintf("clonex: unsupported type error, %s, type(%s)", labels, e.SourceType.String())
	default:
		return ""
	}
}

func (e Error) Unwrap() error {
	return e.err
}

func newConstructionBypassError(srcType reflect.Type) error {
	return Error{Code: ConstructionBypass, SourceType: srcType}
}

func newTypeMismatchError(tgtType reflect.Type, srcType reflect.Type) error {
	return Error{Code: TypeMismatch, TargetType: tgtType, SourceType: srcType}
}

func newPointerCycleError(labels []string, srcType reflect.Type) error {
	return Error{Code: PointerCycle, Labels: labels, SourceType: srcType}
}

func newUnsupportedTypeError(labels []string, srcType reflect.Type) error {
	return Error{Code: UnsupportedType, Labels: labels, SourceType: srcType}
}
