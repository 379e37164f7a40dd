package clonex_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-leo/clonex"
	"github.com/go-leo/gox/errorx"
	jsoniter "github.com/json-iterator/go"
	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type testReferenceType struct {
	Value string
}

type testSubject struct {
	TestField    int
	testProperty int
	Ref          *testReferenceType
}

func (s *testSubject) TestProperty() int {
	return s.testProperty
}

func (s *testSubject) SetTestProperty(v int) {
	s.testProperty = v
}

type testUser struct {
	Name     string
	Age      int
	Birthday *time.Time
	Notes    []string
	Tags     map[string]string
}

func TestScalarClone(t *testing.T) {
	i, err := clonex.DeepFieldClone(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, i)

	s, err := clonex.ShallowFieldClone("hello")
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)

	f, err := clonex.DeepPropertyClone(3.14)
	assert.NoError(t, err)
	assert.Equal(t, 3.14, f)

	b, err := clonex.ShallowPropertyClone(true)
	assert.NoError(t, err)
	assert.True(t, b)

	now := time.Now()
	tm, err := clonex.DeepFieldClone(now)
	assert.NoError(t, err)
	assert.True(t, now.Equal(tm))
}

func TestNilSource(t *testing.T) {
	var ptr *testUser
	got, err := clonex.DeepFieldClone(ptr)
	assert.NoError(t, err)
	assert.Nil(t, got)

	var m map[string]int
	gotMap, err := clonex.DeepFieldClone(m)
	assert.NoError(t, err)
	assert.Nil(t, gotMap)

	var s []int
	gotSlice, err := clonex.ShallowFieldClone(s)
	assert.NoError(t, err)
	assert.Nil(t, gotSlice)

	var any0 any
	gotAny, err := clonex.DeepFieldClone(any0)
	assert.NoError(t, err)
	assert.Nil(t, gotAny)
}

func TestDeepFieldCloneReference(t *testing.T) {
	birthday := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &testUser{
		Name:     "alice",
		Age:      30,
		Birthday: &birthday,
		Notes:    []string{"a", "b"},
		Tags:     map[string]string{"role": "admin"},
	}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, got)
	assert.Equal(t, src, got)
	// 深克隆打破每一层的引用标识
	assert.NotSame(t, src.Birthday, got.Birthday)
	if assert.Len(t, got.Notes, 2) {
		got.Notes[0] = "mutated"
		assert.Equal(t, "a", src.Notes[0])
	}
	got.Tags["role"] = "guest"
	assert.Equal(t, "admin", src.Tags["role"])
}

func TestShallowFieldCloneReference(t *testing.T) {
	birthday := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &testUser{
		Name:     "alice",
		Age:      30,
		Birthday: &birthday,
		Notes:    []string{"a", "b"},
		Tags:     map[string]string{"role": "admin"},
	}
	got, err := clonex.ShallowFieldClone(src)
	assert.NoError(t, err)
	// 新的顶层实例，引用型成员与源共享标识
	assert.NotSame(t, src, got)
	assert.Equal(t, src, got)
	assert.Same(t, src.Birthday, got.Birthday)
	got.Notes[0] = "mutated"
	assert.Equal(t, "mutated", src.Notes[0])
	got.Tags["role"] = "guest"
	assert.Equal(t, "guest", src.Tags["role"])
}

type testHolder struct {
	Label string
	Ref   *testReferenceType
}

func TestValueAggregateMembers(t *testing.T) {
	src := testHolder{Label: "x", Ref: &testReferenceType{Value: "v"}}

	shallow, err := clonex.ShallowFieldClone(src)
	assert.NoError(t, err)
	assert.Same(t, src.Ref, shallow.Ref)

	deep, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src.Ref, deep.Ref)
	assert.Equal(t, src.Ref.Value, deep.Ref.Value)
}

func TestFieldModeScenario(t *testing.T) {
	// 字段模式也复制访问器背后的存储槽
	src := &testSubject{TestField: 123}
	src.SetTestProperty(321)

	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, got)
	assert.Equal(t, 123, got.TestField)
	assert.Equal(t, 321, got.TestProperty())
	assert.Nil(t, got.Ref)
}

func TestPropertyModeScenario(t *testing.T) {
	// 属性模式只经由访问器对传输，普通字段保持零值
	src := &testSubject{TestField: 123}
	src.SetTestProperty(321)

	got, err := clonex.DeepPropertyClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, got)
	assert.Equal(t, 0, got.TestField)
	assert.Equal(t, 321, got.TestProperty())
	assert.Nil(t, got.Ref)
}

type testShape interface {
	Area() float64
}

type testCircle struct {
	Radius float64
	Tags   []string
}

func (c *testCircle) Area() float64 {
	return 3 * c.Radius * c.Radius
}

type testCanvas struct {
	Background string
	Main       testShape
}

func TestPolymorphicMember(t *testing.T) {
	// 成员声明为接口，实例是更具体的类型：克隆以运行时类型进行
	src := testCanvas{
		Background: "white",
		Main:       &testCircle{Radius: 2, Tags: []string{"red"}},
	}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	if assert.IsType(t, &testCircle{}, got.Main) {
		circle := got.Main.(*testCircle)
		assert.NotSame(t, src.Main, circle)
		assert.Equal(t, 2.0, circle.Radius)
		circle.Tags[0] = "blue"
		assert.Equal(t, "red", src.Main.(*testCircle).Tags[0])
	}

	shallow, err := clonex.ShallowFieldClone(src)
	assert.NoError(t, err)
	assert.Same(t, src.Main, shallow.Main)
}

func TestInterfaceSourceValue(t *testing.T) {
	var src testShape = &testCircle{Radius: 3}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.IsType(t, &testCircle{}, got)
	assert.NotSame(t, src, got)
	assert.Equal(t, src.Area(), got.Area())
}

var testCounterInits int

type testCounter struct {
	start int
	step  int
}

func newTestCounter(start int) *testCounter {
	// 构造逻辑带有副作用，克隆决不能重新触发它
	testCounterInits++
	return &testCounter{start: start, step: 1}
}

func TestConstructionBypass(t *testing.T) {
	src := newTestCounter(7)
	inits := testCounterInits

	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, got)
	assert.Equal(t, src, got)
	assert.Equal(t, inits, testCounterInits)
}

type testNode struct {
	Name string
	Next *testNode
}

func TestPointerCycle(t *testing.T) {
	a := &testNode{Name: "a"}
	b := &testNode{Name: "b", Next: a}
	a.Next = b

	_, err := clonex.DeepFieldClone(a)
	assert.Error(t, err)
	var cloneErr clonex.Error
	assert.True(t, errors.As(err, &cloneErr))
	assert.Equal(t, clonex.PointerCycle, cloneErr.Code)
}

func TestDeepChainWithinLimit(t *testing.T) {
	head := &testNode{Name: "0"}
	cur := head
	for i := 0; i < 500; i++ {
		cur.Next = &testNode{}
		cur = cur.Next
	}
	got, err := clonex.DeepFieldClone(head)
	assert.NoError(t, err)
	assert.Equal(t, head, got)
	assert.NotSame(t, head.Next, got.Next)
}

func TestProtoMessageClone(t *testing.T) {
	src := wrapperspb.String("hello")
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, got)
	assert.True(t, proto.Equal(src, got))

	d := durationpb.New(3 * time.Second)
	gotDuration, err := clonex.DeepFieldClone(d)
	assert.NoError(t, err)
	assert.NotSame(t, d, gotDuration)
	assert.Equal(t, d.AsDuration(), gotDuration.AsDuration())
}

func TestCloneJSONShape(t *testing.T) {
	src := &testUser{Name: "alice", Age: 30, Notes: []string{"a"}}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)

	ja := jsonassert.New(t)
	actual := string(errorx.Ignore(jsoniter.Marshal(got)))
	ja.Assertf(actual, `{"Name":"alice","Age":30,"Birthday":null,"Notes":["a"],"Tags":null}`)
	assert.Equal(t,
		string(errorx.Ignore(jsoniter.Marshal(src))),
		actual,
	)
}

type testEmbeddedBase struct {
	ID      string
	secret  string
	Aliases []string
}

type testDerived struct {
	testEmbeddedBase
	Name string
}

func TestEmbeddedAncestorState(t *testing.T) {
	src := &testDerived{
		testEmbeddedBase: testEmbeddedBase{ID: "1", secret: "s", Aliases: []string{"x"}},
		Name:             "n",
	}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.Equal(t, src, got)
	got.Aliases[0] = "mutated"
	assert.Equal(t, "x", src.Aliases[0])

	shallow, err := clonex.ShallowFieldClone(src)
	assert.NoError(t, err)
	assert.Equal(t, src, shallow)
	shallow.Aliases[0] = "mutated"
	assert.Equal(t, "mutated", src.Aliases[0])
}

func TestMapClone(t *testing.T) {
	src := map[string]*testReferenceType{
		"a": {Value: "1"},
		"b": {Value: "2"},
		"c": nil,
	}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.Len(t, got, 3)
	assert.NotSame(t, src["a"], got["a"])
	assert.Equal(t, src["a"].Value, got["a"].Value)
	assert.Nil(t, got["c"])

	shallow, err := clonex.ShallowFieldClone(src)
	assert.NoError(t, err)
	assert.Len(t, shallow, 3)
	assert.Same(t, src["a"], shallow["a"])
	// 顶层 map 本身是新的
	shallow["d"] = &testReferenceType{Value: "4"}
	assert.NotContains(t, src, "d")
}

func TestInterfaceValuedMap(t *testing.T) {
	src := map[string]any{
		"circle": &testCircle{Radius: 1},
		"number": 42,
		"nested": map[string]any{"k": "v"},
	}
	got, err := clonex.DeepFieldClone(src)
	assert.NoError(t, err)
	assert.Equal(t, src, got)
	assert.NotSame(t, src["circle"], got["circle"])
}
