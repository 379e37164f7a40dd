package clonex

import (
	"reflect"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

const (
	getterPrefix = "Get"
	setterPrefix = "Set"
)

// fieldMember 聚合类型的一个实例存储槽
type fieldMember struct {
	reflect.StructField
	shape category
}

// accessorMember 聚合类型暴露的一对访问器。只枚举同时具备 getter 和 setter 的对，
// 只读或只写的访问器被静默跳过。
type accessorMember struct {
	name   string
	typ    reflect.Type
	getter reflect.Method
	setter reflect.Method
	shape  category
}

type structInfo struct {
	Type      reflect.Type
	Fields    []fieldMember
	Accessors []accessorMember
}

func (s *structInfo) analysis() *structInfo {
	s.analysisFields()
	s.analysisAccessors()
	return s
}

func (s *structInfo) analysisFields() {
	// 字段分析：声明顺序枚举全部实例字段，包括未导出字段。
	// 匿名（嵌入）字段作为自身的槽出现，其状态通过该槽递归传输。
	for i := 0; i < s.Type.NumField(); i++ {
		field := s.Type.Field(i)
		s.Fields = append(s.Fields, fieldMember{
			StructField: field,
			shape:       classify(field.Type),
		})
	}
}

func (s *structInfo) analysisAccessors() {
	// 访问器分析：在指针方法集上配对 SetX(T) 与 X() T 或 GetX() T。
	// 指针方法集包含提升（嵌入）方法，祖先的访问器自动可见。
	ptrType := reflect.PointerTo(s.Type)
	for i := 0; i < ptrType.NumMethod(); i++ {
		setter := methodInfo{ptrType.Method(i)}
		if !strings.HasPrefix(setter.Name, setterPrefix) || !setter.isSetter() {
			continue
		}
		name := strings.TrimPrefix(setter.Name, setterPrefix)
		if len(name) <= 0 {
			continue
		}
		typ := setter.Type.In(1)
		getter, ok := findGetter(ptrType, name, typ)
		if !ok {
			continue
		}
		s.Accessors = append(s.Accessors, accessorMember{
			name:   name,
			typ:    typ,
			getter: getter,
			setter: setter.Method,
			shape:  classify(typ),
		})
	}
	// 方法集顺序由运行时决定，按名字排序保证稳定
	slices.SortFunc(s.Accessors, func(a, b accessorMember) int {
		return strings.Compare(a.name, b.name)
	})
}

func findGetter(ptrType reflect.Type, name string, typ reflect.Type) (reflect.Method, bool) {
	for _, methodName := range []string{name, getterPrefix + name} {
		method, ok := ptrType.MethodByName(methodName)
		if !ok {
			continue
		}
		if (methodInfo{method}).isGetter() && method.Type.Out(0) == typ {
			return method, true
		}
	}
	return reflect.Method{}, false
}

type methodInfo struct {
	reflect.Method
}

// isGetter
// func (x *Obj) Method() string
func (m methodInfo) isGetter() bool {
	return m.Type.NumIn() == 1 && m.Type.NumOut() == 1
}

// isSetter
// func (x *Obj) Method(string)
func (m methodInfo) isSetter() bool {
	return m.Type.NumIn() == 2 && m.Type.NumOut() == 0
}

var structInfoCache sync.Map

// cachedStructInfo 返回类型的成员信息，每个类型只分析一次，枚举顺序跨调用稳定
func cachedStructInfo(typ reflect.Type) *structInfo {
	if f, ok := structInfoCache.Load(typ); ok {
		return f.(*structInfo)
	}
	f, _ := structInfoCache.LoadOrStore(typ, newStructInfo(typ).analysis())
	return f.(*structInfo)
}

func newStructInfo(typ reflect.Type) *structInfo {
	return &structInfo{
		Type:      typ,
		Fields:    make([]fieldMember, 0, typ.NumField()),
		Accessors: make([]accessorMember, 0),
	}
}
