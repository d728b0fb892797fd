package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: NotFound("get", "asset %s", "a1"), want: KindNotFound},
		{name: "wrapped kind", err: fmt.Errorf("outer: %w", Unauthorized("write", "denied")), want: KindUnauthorized},
		{name: "plain error", err: errors.New("boom"), want: KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB("op", nil))

	err := FromDB("get asset", gorm.ErrRecordNotFound)
	assert.True(t, Is(err, KindNotFound))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = FromDB("get asset", errors.New("connection reset"))
	assert.True(t, Is(err, KindTransport))

	// kinds survive a second translation
	orig := InvalidInput("store", "size must be >= 0")
	assert.Same(t, orig, FromDB("outer", orig))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "store chunk: index out of range", InvalidInput("store chunk", "index out of range").Error())
	assert.Equal(t, "load: transport_failure: dial tcp", Transport("load", errors.New("dial tcp")).Error())
}
