package clonex

import (
	"reflect"

	"github.com/go-leo/gox/convx"
	"golang.org/x/exp/slices"
)

/*
newArrayCloner 数组与切片克隆，任意秩。
浅模式分支在秩和元素形状分析之前就被选取：复制一份底层存储，
元素引用与源共享。深模式下标量元素同样整块复制，标量没有可深化的
嵌套标识；复杂元素走逐元素克隆。
*/
func newArrayCloner(srcType reflect.Type, m mode) clonerFunc {
	if !m.deep {
		return bulkArrayCloner
	}
	if classify(srcType.Elem()) == categoryScalar {
		return bulkArrayCloner
	}
	return newElementwiseArrayCloner(srcType, m)
}

// bulkArrayCloner 整块复制底层元素存储，维度尺寸保持不变
func bulkArrayCloner(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
	if srcVal.Kind() == reflect.Slice {
		if srcVal.IsNil() {
			return nil
		}
		tgtVal.Set(reflect.MakeSlice(srcVal.Type(), srcVal.Len(), srcVal.Cap()))
	}
	reflect.Copy(tgtVal, srcVal)
	return nil
}

/*
newElementwiseArrayCloner 复杂元素的逐元素克隆。
分配尺寸相同的新数组，遍历每个线性下标：
值聚合元素原地递归传输成员，不判空，值元素不可能缺席；
引用型与嵌套数组元素先判空，缺席的留空，在场的经由缓存递归，
接口元素以实际运行时类型动态查找。
*/
func newElementwiseArrayCloner(srcType reflect.Type, m mode) clonerFunc {
	elemCloner := typeCloner(srcType.Elem(), m)
	cloner := func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		if srcVal.Kind() == reflect.Slice {
			if srcVal.IsNil() {
				return nil
			}
			tgtVal.Set(reflect.MakeSlice(srcVal.Type(), srcVal.Len(), srcVal.Cap()))
		}
		for i := 0; i < srcVal.Len(); i++ {
			elemLabels := append(slices.Clone(labels), convx.ToString(i))
			if err := elemCloner(g, elemLabels, tgtVal.Index(i), srcVal.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	if srcType.Kind() != reflect.Slice {
		return cloner
	}
	return checkPointerCycle(func(srcVal reflect.Value) any {
		return struct {
			ptr any
			len int
		}{ptr: srcVal.UnsafePointer(), len: srcVal.Len()}
	}, cloner)
}
