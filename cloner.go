package clonex

import (
	"reflect"
	"unsafe"

	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/proto"
)

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

// clonerFunc 通用克隆过程。tgtVal 与 srcVal 是同一类型的可寻址值，
// 过程把 srcVal 的状态传输到 tgtVal 上。
type clonerFunc func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error

// newTypeCloner 为一个 (具体类型, 深浅, 字段/访问器) 配置合成克隆过程。
// 过程体完全由类型形状决定，合成一次后由缓存复用。
func newTypeCloner(srcType reflect.Type, m mode) clonerFunc {
	switch classify(srcType) {
	case categoryScalar:
		return scalarCloner
	case categoryValueAggregate:
		if m.byAccessor {
			return newAccessorStructCloner(srcType, m)
		}
		return newFieldStructCloner(srcType, m)
	case categoryArray:
		return newArrayCloner(srcType, m)
	default:
		return newReferenceCloner(srcType, m)
	}
}

// memberCloner 成员传输过程。浅模式下引用型与数组型成员与源共享标识，
// 只有标量与值聚合状态被真正传输；深模式下经由缓存全量递归。
func memberCloner(srcType reflect.Type, m mode) clonerFunc {
	return shapedMemberCloner(classify(srcType), srcType, m)
}

// shapedMemberCloner 同 memberCloner，复用枚举期已算好的分类
func shapedMemberCloner(shape category, srcType reflect.Type, m mode) clonerFunc {
	if !m.deep {
		switch shape {
		case categoryArray, categoryReferenceAggregate:
			return shareCloner
		}
	}
	return typeCloner(srcType, m)
}

// scalarCloner 标量没有嵌套标识，按值复制本身即是克隆
func scalarCloner(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
	tgtVal.Set(srcVal)
	return nil
}

// shareCloner 直接赋值，目标与源共享标识
func shareCloner(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
	tgtVal.Set(srcVal)
	return nil
}

/*
newFieldStructCloner 字段模式的值聚合克隆。
不分配新标识，绕过访问器逻辑，按声明顺序逐槽原地传输，
未导出槽通过其地址重新绑定后照常读写。
*/
func newFieldStructCloner(srcType reflect.Type, m mode) clonerFunc {
	info := cachedStructInfo(srcType)
	memberCloners := make([]clonerFunc, len(info.Fields))
	for i, field := range info.Fields {
		memberCloners[i] = shapedMemberCloner(field.shape, field.Type, m)
	}
	return func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		for i, field := range info.Fields {
			srcField := srcVal.Field(i)
			tgtField := tgtVal.Field(i)
			if !field.IsExported() {
				srcField = reflect.NewAt(field.Type, unsafe.Pointer(srcField.UnsafeAddr())).Elem()
				tgtField = reflect.NewAt(field.Type, unsafe.Pointer(tgtField.UnsafeAddr())).Elem()
			}
			memberLabels := append(slices.Clone(labels), field.Name)
			if err := memberCloners[i](g, memberLabels, tgtField, srcField); err != nil {
				return err
			}
		}
		return nil
	}
}

/*
newAccessorStructCloner 访问器模式的值聚合克隆。
状态经由 getter/setter 对传输，访问器携带的副作用照常发生；
没有配对访问器的状态在克隆上保持零值。
*/
func newAccessorStructCloner(srcType reflect.Type, m mode) clonerFunc {
	info := cachedStructInfo(srcType)
	memberCloners := make([]clonerFunc, len(info.Accessors))
	for i, accessor := range info.Accessors {
		memberCloners[i] = shapedMemberCloner(accessor.shape, accessor.typ, m)
	}
	return func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		for i, accessor := range info.Accessors {
			got := srcVal.Addr().Method(accessor.getter.Index).Call(nil)[0]
			src := reflect.New(accessor.typ).Elem()
			src.Set(got)
			in := reflect.New(accessor.typ).Elem()
			memberLabels := append(slices.Clone(labels), accessor.name)
			if err := memberCloners[i](g, memberLabels, in, src); err != nil {
				return err
			}
			tgtVal.Addr().Method(accessor.setter.Index).Call([]reflect.Value{in})
		}
		return nil
	}
}

func newReferenceCloner(srcType reflect.Type, m mode) clonerFunc {
	switch srcType.Kind() {
	case reflect.Pointer:
		return newPointerCloner(srcType, m)
	case reflect.Map:
		return newMapCloner(srcType, m)
	case reflect.Interface:
		return newInterfaceCloner(m)
	default:
		return unsupportedTypeCloner
	}
}

/*
newPointerCloner 指针克隆。
为被指对象分配清零的存储，不触发任何构造逻辑，再按被指类型的形状传输。
proto 消息携带未导出的运行时状态，原始反射复制会破坏它们，
深模式下交给 proto.Clone 处理。
*/
func newPointerCloner(srcType reflect.Type, m mode) clonerFunc {
	if m.deep && srcType.Implements(protoMessageType) && srcType.Elem().Kind() == reflect.Struct {
		return protoMessageCloner
	}
	elemType := srcType.Elem()
	elemCloner := memberCloner(elemType, m)
	cloner := func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		if srcVal.IsNil() {
			return nil
		}
		ptr, err := allocate(elemType)
		if err != nil {
			return err
		}
		if err := elemCloner(g, labels, ptr.Elem(), srcVal.Elem()); err != nil {
			return err
		}
		tgtVal.Set(ptr)
		return nil
	}
	return checkPointerCycle(func(srcVal reflect.Value) any { return srcVal.Interface() }, cloner)
}

func protoMessageCloner(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
	if srcVal.IsNil() {
		return nil
	}
	tgtVal.Set(reflect.ValueOf(proto.Clone(srcVal.Interface().(proto.Message))))
	return nil
}

/*
newMapCloner map克隆。
深模式重建 map 并逐项克隆键与值，接口型的项以其运行时类型重新进入缓存；
浅模式重建 map 但项本身与源共享。
*/
func newMapCloner(srcType reflect.Type, m mode) clonerFunc {
	keyType, elemType := srcType.Key(), srcType.Elem()
	keyCloner := memberCloner(keyType, m)
	elemCloner := memberCloner(elemType, m)
	cloner := func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		if srcVal.IsNil() {
			return nil
		}
		nv := reflect.MakeMapWithSize(srcType, srcVal.Len())
		iter := srcVal.MapRange()
		if !m.deep {
			for iter.Next() {
				nv.SetMapIndex(iter.Key(), iter.Value())
			}
			tgtVal.Set(nv)
			return nil
		}
		for iter.Next() {
			srcKey := reflect.New(keyType).Elem()
			srcKey.Set(iter.Key())
			tgtKey := reflect.New(keyType).Elem()
			if err := keyCloner(g, labels, tgtKey, srcKey); err != nil {
				return err
			}
			srcElem := reflect.New(elemType).Elem()
			srcElem.Set(iter.Value())
			tgtElem := reflect.New(elemType).Elem()
			if err := elemCloner(g, labels, tgtElem, srcElem); err != nil {
				return err
			}
			nv.SetMapIndex(tgtKey, tgtElem)
		}
		tgtVal.Set(nv)
		return nil
	}
	return checkPointerCycle(func(srcVal reflect.Value) any { return srcVal.UnsafePointer() }, cloner)
}

/*
newInterfaceCloner 接口克隆。
成员的声明类型可能宽于实例的实际类型，深模式在克隆时刻以值的运行时类型
重新进入缓存查找过程，而不是用声明类型在合成期定死。
*/
func newInterfaceCloner(m mode) clonerFunc {
	// 浅模式的接口成员在 shapedMemberCloner 处就被共享，正常不会走到这里；
	// 该分支保证 typeCloner 对任何 (类型, 模式) 组合都给出正确的过程
	if !m.deep {
		return shareCloner
	}
	return func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		if srcVal.IsNil() {
			return nil
		}
		elem := srcVal.Elem()
		elemType := elem.Type()
		cloner := typeCloner(elemType, m)
		src := reflect.New(elemType).Elem()
		src.Set(elem)
		tgt := reflect.New(elemType).Elem()
		if err := cloner(g, labels, tgt, src); err != nil {
			return err
		}
		tgtVal.Set(tgt)
		return nil
	}
}

func unsupportedTypeCloner(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
	return newUnsupportedTypeError(labels, srcVal.Type())
}
