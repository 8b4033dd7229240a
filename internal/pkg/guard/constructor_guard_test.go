package guard_test

import (
	"errors"
	"sync"
	"testing"

	"orderflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expected := errors.New("claim command not constructed")

		// When
		err := g.Validate(expected)

		// Then
		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
	})
}

type rider struct {
	name  string
	guard guard.ConstructorGuard
}

var errRiderIsNotConstructed = errors.New("rider must be created via newRider")

func newRider(name string) (rider, error) {
	if name == "" {
		return rider{}, errors.New("name is required")
	}
	return rider{name: name, guard: guard.NewConstructorGuard()}, nil
}

func (r rider) Validate() error {
	return r.guard.Validate(errRiderIsNotConstructed)
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	t.Run("valid_construction", func(t *testing.T) {
		r, err := newRider("ann")
		require.NoError(t, err)
		require.NoError(t, r.Validate())
	})

	t.Run("zero_value_fails", func(t *testing.T) {
		var r rider
		require.ErrorIs(t, r.Validate(), errRiderIsNotConstructed)
	})

	t.Run("failed_constructor_returns_zero_value", func(t *testing.T) {
		r, err := newRider("")
		require.Error(t, err)
		require.ErrorIs(t, r.Validate(), errRiderIsNotConstructed)
	})

	t.Run("copy_keeps_state", func(t *testing.T) {
		r, _ := newRider("bob")
		cp := r
		require.NoError(t, cp.Validate())
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
