package access_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/internal/access"
)

type account struct {
	Name    string
	Balance float64
}

func (a account) Masked() string {
	return strings.Repeat("*", len(a.Name))
}

func (a *account) Deposit(amount float64) float64 {
	return a.Balance + amount
}

func (a account) Scaled(factor float64) (float64, error) {
	if factor < 0 {
		return 0, assert.AnError
	}
	return a.Balance * factor, nil
}

func TestCapabilityOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  access.Capability
	}{
		{"map", map[string]any{}, access.CapOrderedMap},
		{"slice", []int{1}, access.CapIndexedSequence},
		{"array", [2]string{}, access.CapIndexedSequence},
		{"string", "abc", access.CapIndexedSequence},
		{"struct", account{}, access.CapStructuredRecord},
		{"struct pointer", &account{}, access.CapStructuredRecord},
		{"scalar", 42, access.CapNone},
		{"nil", nil, access.CapNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.CapabilityOf(tt.value))
		})
	}
}

func TestMember_Map(t *testing.T) {
	m := map[string]any{"Name": "alice", "age": 30}

	v, ok, err := access.Member(m, "name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	v, ok, err = access.Member(m, "AGE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok, err = access.Member(m, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMember_InterfaceKeyedMap(t *testing.T) {
	m := map[any]any{"host": "localhost", 1: "one"}

	v, ok, err := access.Member(m, "Host")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "localhost", v)
}

func TestMember_Struct(t *testing.T) {
	a := account{Name: "alice", Balance: 12.5}

	v, ok, err := access.Member(a, "balance")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok, err = access.Member(&a, "Name")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestMember_ZeroArgMethod(t *testing.T) {
	a := account{Name: "alice"}

	v, ok, err := access.Member(a, "masked")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "*****", v)
}

func TestMember_SyntheticLength(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		member string
		want   any
	}{
		{"slice count", []int{1, 2, 3}, "count", int64(3)},
		{"slice length", []int{1, 2, 3}, "Length", int64(3)},
		{"string length", "abcd", "length", int64(4)},
		{"map count", map[string]int{"a": 1}, "COUNT", int64(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := access.Member(tt.value, tt.member)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	// A host member of the same name wins over the synthetic one.
	v, ok, err := access.Member(map[string]any{"count": "real"}, "count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "real", v)

	// Scalars have no length.
	_, ok, err = access.Member(42, "length")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMember_Nil(t *testing.T) {
	_, ok, err := access.Member(nil, "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndex_Sequence(t *testing.T) {
	seq := []string{"a", "b", "c"}

	v, err := access.Index(seq, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	// Negative positions count from the end.
	v, err = access.Index(seq, -1)
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	_, err = access.Index(seq, 3)
	assert.Error(t, err)

	_, err = access.Index(seq, "x")
	assert.Error(t, err)
}

func TestIndex_Map(t *testing.T) {
	m := map[string]int{"a": 1}

	v, err := access.Index(m, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Missing map keys index to null rather than failing.
	v, err = access.Index(m, "b")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestIndex_String(t *testing.T) {
	v, err := access.Index("abc", 0)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestFromEnd(t *testing.T) {
	seq := []int{10, 20, 30}

	v, err := access.FromEnd(seq, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	v, err = access.FromEnd(seq, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	// Out-of-range from-end indexes error instead of wrapping around.
	_, err = access.FromEnd(seq, 4)
	assert.Error(t, err)

	_, err = access.FromEnd(seq, 0)
	assert.Error(t, err)

	_, err = access.FromEnd(seq, -1)
	assert.Error(t, err)

	_, err = access.FromEnd(42, 1)
	assert.Error(t, err)
}

func TestLength(t *testing.T) {
	n, ok := access.Length([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = access.Length("abcd")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = access.Length(map[string]int{"a": 1})
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = access.Length(3.14)
	assert.False(t, ok)
}

func TestAsSequence(t *testing.T) {
	out, ok := access.AsSequence([]int{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2, 3}, out)

	_, ok = access.AsSequence("abc")
	assert.False(t, ok)
}

func TestCallMethod(t *testing.T) {
	a := &account{Name: "alice", Balance: 100}

	v, ok, err := access.CallMethod(a, "deposit", []any{int64(50)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 150.0, v)

	// Error-returning methods propagate the error.
	_, ok, err = access.CallMethod(a, "scaled", []any{-1.0})
	require.True(t, ok)
	assert.Error(t, err)

	// Unknown methods report not-found without an error.
	_, ok, err = access.CallMethod(a, "missing", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Wrong arity is an invocation error.
	_, ok, err = access.CallMethod(a, "deposit", nil)
	require.True(t, ok)
	assert.Error(t, err)
}
