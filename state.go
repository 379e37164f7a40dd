package clonex

import (
	"reflect"
	"sync"
)

const startDetectingCyclesAfter = 1000

// cloneState 记录递归调用路径中的源指针，把循环引用图变成 PointerCycle 错误，
// 避免可能导致的堆栈溢出
type cloneState struct {
	ptrLevel uint
	ptrSeen  map[any]struct{}
}

func (g *cloneState) forward() {
	g.ptrLevel++
}

func (g *cloneState) back() {
	g.ptrLevel--
}

func (g *cloneState) isTooDeep() bool {
	return g.ptrLevel > startDetectingCyclesAfter
}

func (g *cloneState) isSeen(ptr any) bool {
	_, ok := g.ptrSeen[ptr]
	return ok
}

func (g *cloneState) remember(ptr any) {
	g.ptrSeen[ptr] = struct{}{}
}

func (g *cloneState) forget(ptr any) {
	delete(g.ptrSeen, ptr)
}

// guard 在递归深到可疑时跟踪源指针，解释器路径直接调用它
func (g *cloneState) guard(labels []string, srcVal reflect.Value, ptrFunc func(srcVal reflect.Value) any, fn func() error) error {
	g.forward()
	defer g.back()
	if g.isTooDeep() {
		ptr := ptrFunc(srcVal)
		if g.isSeen(ptr) {
			return newPointerCycleError(labels, srcVal.Type())
		}
		g.remember(ptr)
		defer g.forget(ptr)
	}
	return fn()
}

// checkPointerCycle 包装合成出的过程，编译路径在合成期套上它
func checkPointerCycle(ptrFunc func(srcVal reflect.Value) any, cloner clonerFunc) clonerFunc {
	return func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		return g.guard(labels, srcVal, ptrFunc, func() error {
			return cloner(g, labels, tgtVal, srcVal)
		})
	}
}

var cloneStatePool sync.Pool

func newCloneState() *cloneState {
	if v := cloneStatePool.Get(); v != nil {
		g := v.(*cloneState)
		if len(g.ptrSeen) > 0 {
			panic("clonex: cloneState should have emptied ptrSeen via defers")
		}
		g.ptrLevel = 0
		return g
	}
	return &cloneState{ptrSeen: make(map[any]struct{})}
}

func freeCloneState(g *cloneState) {
	cloneStatePool.Put(g)
}
