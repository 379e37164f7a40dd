package clonex

import (
	"reflect"
	"sync"
)

// mode 选择四个缓存中的哪一个以及哪条合成路径
type mode struct {
	deep       bool
	byAccessor bool
}

var (
	deepField       = mode{deep: true, byAccessor: false}
	shallowField    = mode{deep: false, byAccessor: false}
	deepAccessor    = mode{deep: true, byAccessor: true}
	shallowAccessor = mode{deep: false, byAccessor: true}
)

// 四个独立的键空间，同一个类型最多同时缓存四个过程
var (
	deepFieldCloners       sync.Map
	shallowFieldCloners    sync.Map
	deepAccessorCloners    sync.Map
	shallowAccessorCloners sync.Map
)

func (m mode) cache() *sync.Map {
	if m.byAccessor {
		if m.deep {
			return &deepAccessorCloners
		}
		return &shallowAccessorCloners
	}
	if m.deep {
		return &deepFieldCloners
	}
	return &shallowFieldCloners
}

// typeCloner is the only entry point to the cloner cache: it returns the
// procedure synthesized for (srcType, m), building and installing it on first
// use. Whichever procedure is installed first for a key is the one all callers
// observe; a losing racer's synthesis is wasted work, not a correctness issue.
func typeCloner(srcType reflect.Type, m mode) clonerFunc {
	cache := m.cache()
	rtype := rtypeOf(srcType)
	if fi, ok := cache.Load(rtype); ok {
		return fi.(clonerFunc)
	}

	// To deal with recursive types, populate the map with an
	// indirect func before we build it. This type waits on the
	// real func (f) to be ready and then calls it. This indirect
	// func is only used for recursive types.
	var (
		wg sync.WaitGroup
		f  clonerFunc
	)
	wg.Add(1)
	fi, loaded := cache.LoadOrStore(rtype, clonerFunc(func(g *cloneState, labels []string, tgtVal, srcVal reflect.Value) error {
		wg.Wait()
		return f(g, labels, tgtVal, srcVal)
	}))
	if loaded {
		return fi.(clonerFunc)
	}

	// Compute the real clonerFunc and replace the indirect func with it.
	f = newTypeCloner(srcType, m)
	wg.Done()
	cache.Store(rtype, f)
	return f
}
