package clonex

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/go-leo/gox/convx"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/proto"
)

/*
interpretClone 解释执行的参考克隆器。
每次调用都重新遍历类型元数据，不合成也不缓存任何过程，
与类型特化过程的可观察行为完全一致。只作为正确性基准存在，
不是设计目标。
*/
func interpretClone(srcVal reflect.Value, m mode) (reflect.Value, error) {
	srcType := srcVal.Type()
	srcAddr := reflect.New(srcType).Elem()
	srcAddr.Set(srcVal)
	tgtVal := reflect.New(srcType).Elem()
	g := newCloneState()
	defer freeCloneState(g)
	if err := interpret(g, []string{}, tgtVal, srcAddr, m); err != nil {
		return reflect.Value{}, err
	}
	return tgtVal, nil
}

func interpret(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	switch classify(srcVal.Type()) {
	case categoryScalar:
		tgtVal.Set(srcVal)
		return nil
	case categoryValueAggregate:
		if m.byAccessor {
			return interpretAccessors(g, labels, tgtVal, srcVal, m)
		}
		return interpretFields(g, labels, tgtVal, srcVal, m)
	case categoryArray:
		return interpretArray(g, labels, tgtVal, srcVal, m)
	default:
		return interpretReference(g, labels, tgtVal, srcVal, m)
	}
}

// interpretMember 浅模式下引用型与数组型成员共享标识，其余照常递归
func interpretMember(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	if !m.deep {
		switch classify(srcVal.Type()) {
		case categoryArray, categoryReferenceAggregate:
			tgtVal.Set(srcVal)
			return nil
		}
	}
	return interpret(g, labels, tgtVal, srcVal, m)
}

func interpretFields(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	srcType := srcVal.Type()
	for i := 0; i < srcType.NumField(); i++ {
		field := srcType.Field(i)
		srcField := srcVal.Field(i)
		tgtField := tgtVal.Field(i)
		if !field.IsExported() {
			srcField = reflect.NewAt(field.Type, unsafe.Pointer(srcField.UnsafeAddr())).Elem()
			tgtField = reflect.NewAt(field.Type, unsafe.Pointer(tgtField.UnsafeAddr())).Elem()
		}
		memberLabels := append(slices.Clone(labels), field.Name)
		if err := interpretMember(g, memberLabels, tgtField, srcField, m); err != nil {
			return err
		}
	}
	return nil
}

func interpretAccessors(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	ptrType := reflect.PointerTo(srcVal.Type())
	names := make([]string, 0, ptrType.NumMethod())
	for i := 0; i < ptrType.NumMethod(); i++ {
		setter := methodInfo{ptrType.Method(i)}
		if !strings.HasPrefix(setter.Name, setterPrefix) || !setter.isSetter() {
			continue
		}
		name := strings.TrimPrefix(setter.Name, setterPrefix)
		if len(name) <= 0 {
			continue
		}
		if _, ok := findGetter(ptrType, name, setter.Type.In(1)); !ok {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		setter, _ := ptrType.MethodByName(setterPrefix + name)
		typ := setter.Type.In(1)
		getter, _ := findGetter(ptrType, name, typ)
		got := srcVal.Addr().Method(getter.Index).Call(nil)[0]
		src := reflect.New(typ).Elem()
		src.Set(got)
		in := reflect.New(typ).Elem()
		memberLabels := append(slices.Clone(labels), name)
		if err := interpretMember(g, memberLabels, in, src, m); err != nil {
			return err
		}
		tgtVal.Addr().Method(setter.Index).Call([]reflect.Value{in})
	}
	return nil
}

func interpretArray(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	srcType := srcVal.Type()
	if srcType.Kind() == reflect.Slice && srcVal.IsNil() {
		return nil
	}
	if !m.deep || classify(srcType.Elem()) == categoryScalar {
		if srcType.Kind() == reflect.Slice {
			tgtVal.Set(reflect.MakeSlice(srcType, srcVal.Len(), srcVal.Cap()))
		}
		reflect.Copy(tgtVal, srcVal)
		return nil
	}
	elementwise := func() error {
		if srcType.Kind() == reflect.Slice {
			tgtVal.Set(reflect.MakeSlice(srcType, srcVal.Len(), srcVal.Cap()))
		}
		for i := 0; i < srcVal.Len(); i++ {
			elemLabels := append(slices.Clone(labels), convx.ToString(i))
			if err := interpret(g, elemLabels, tgtVal.Index(i), srcVal.Index(i), m); err != nil {
				return err
			}
		}
		return nil
	}
	if srcType.Kind() != reflect.Slice {
		return elementwise()
	}
	return g.guard(labels, srcVal, func(srcVal reflect.Value) any {
		return struct {
			ptr any
			len int
		}{ptr: srcVal.UnsafePointer(), len: srcVal.Len()}
	}, elementwise)
}

func interpretReference(g *cloneState, labels []string, tgtVal, srcVal reflect.Value, m mode) error {
	srcType := srcVal.Type()
	switch srcType.Kind() {
	case reflect.Pointer:
		if srcVal.IsNil() {
			return nil
		}
		if m.deep && srcType.Implements(protoMessageType) && srcType.Elem().Kind() == reflect.Struct {
			tgtVal.Set(reflect.ValueOf(proto.Clone(srcVal.Interface().(proto.Message))))
			return nil
		}
		return g.guard(labels, srcVal, func(srcVal reflect.Value) any { return srcVal.Interface() }, func() error {
			ptr, err := allocate(srcType.Elem())
			if err != nil {
				return err
			}
			if err := interpretMember(g, labels, ptr.Elem(), srcVal.Elem(), m); err != nil {
				return err
			}
			tgtVal.Set(ptr)
			return nil
		})
	case reflect.Map:
		if srcVal.IsNil() {
			return nil
		}
		return g.guard(labels, srcVal, func(srcVal reflect.Value) any { return srcVal.UnsafePointer() }, func() error {
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
				srcKey := reflect.New(srcType.Key()).Elem()
				srcKey.Set(iter.Key())
				tgtKey := reflect.New(srcType.Key()).Elem()
				if err := interpretMember(g, labels, tgtKey, srcKey, m); err != nil {
					return err
				}
				srcElem := reflect.New(srcType.Elem()).Elem()
				srcElem.Set(iter.Value())
				tgtElem := reflect.New(srcType.Elem()).Elem()
				if err := interpretMember(g, labels, tgtElem, srcElem, m); err != nil {
					return err
				}
				nv.SetMapIndex(tgtKey, tgtElem)
			}
			tgtVal.Set(nv)
			return nil
		})
	case reflect.Interface:
		if srcVal.IsNil() {
			return nil
		}
		if !m.deep {
			tgtVal.Set(srcVal)
			return nil
		}
		elem := srcVal.Elem()
		src := reflect.New(elem.Type()).Elem()
		src.Set(elem)
		tgt := reflect.New(elem.Type()).Elem()
		if err := interpret(g, labels, tgt, src, m); err != nil {
			return err
		}
		tgtVal.Set(tgt)
		return nil
	default:
		return newUnsupportedTypeError(labels, srcType)
	}
}
