// Package clonex 提供任意对象图的通用高性能克隆，被克隆的类型无须任何配合。
//
// 支持两种克隆深度：浅克隆（复制顶层状态，被引用的子对象与源共享）与
// 深克隆（整个可达图被复制，每一层的引用标识都被打破）。每种深度再分
// 两种访问方式：字段模式（复制原始存储槽，绕过访问器逻辑）与属性模式
// （经由 getter/setter 对传输，访问器副作用照常发生）。
//
// 核心是按类型特化的克隆过程缓存：每个具体运行时类型的克隆过程只合成
// 一次，之后对该类型的每次克隆请求直接复用。
package clonex

import (
	"reflect"
)

// DeepFieldClone 深克隆，字段模式。返回一个与 src 可达图完全独立的副本。
func DeepFieldClone[T any](src T) (T, error) {
	return cloneValue(src, deepField)
}

// ShallowFieldClone 浅克隆，字段模式。返回新的顶层实例，
// 引用型成员与源共享。
func ShallowFieldClone[T any](src T) (T, error) {
	return cloneValue(src, shallowField)
}

// DeepPropertyClone 深克隆，属性模式。状态经由访问器对传输。
func DeepPropertyClone[T any](src T) (T, error) {
	return cloneValue(src, deepAccessor)
}

// ShallowPropertyClone 浅克隆，属性模式。
func ShallowPropertyClone[T any](src T) (T, error) {
	return cloneValue(src, shallowAccessor)
}

func cloneValue[T any](src T, m mode) (T, error) {
	var zero T
	// reflect.ValueOf 剥掉接口，得到的就是值的运行时类型：
	// 调用方声明的类型可能是接口或更宽的基类型
	srcVal := reflect.ValueOf(src)
	if !srcVal.IsValid() {
		return zero, nil
	}
	switch srcVal.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		// 缺席的源原样返回，不分配，不触碰缓存
		if srcVal.IsNil() {
			return zero, nil
		}
	}
	srcType := srcVal.Type()
	cloner := typeCloner(srcType, m)

	g := newCloneState()
	defer freeCloneState(g)

	// 过程要求两侧可寻址
	srcAddr := reflect.New(srcType).Elem()
	srcAddr.Set(srcVal)
	tgtVal := reflect.New(srcType).Elem()
	if err := cloner(g, []string{}, tgtVal, srcAddr); err != nil {
		return zero, err
	}
	cloned, ok := tgtVal.Interface().(T)
	if !ok {
		// 正确分类下不可达，出现即是分类器缺陷
		return zero, newTypeMismatchError(reflect.TypeOf(zero), srcType)
	}
	return cloned, nil
}
