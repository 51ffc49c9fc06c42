package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFollowsWrappedChain(t *testing.T) {
	base := InvalidArgument("office number must be >= 1, got %d", 0)
	wrapped := fmt.Errorf("register office: %w", base)

	assert.True(t, Is(wrapped, ErrInvalidArgument))
	assert.False(t, Is(wrapped, ErrForgedTicket))
	assert.Equal(t, ErrInvalidArgument, GetCode(wrapped))
	assert.Equal(t, ErrInternalServerError, GetCode(fmt.Errorf("plain")))
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{ErrInvalidArgument, 400},
		{ErrForgedTicket, 422},
		{ErrOfficeNotFound, 404},
		{ErrDrawNotFound, 404},
		{ErrUnauthorized, 401},
		{ErrForbidden, 403},
		{12345, 500},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "[1102] forged ticket", New(ErrForgedTicket, "forged ticket").Error())
	assert.Equal(t, "[500] boom [inner]", Wrap(fmt.Errorf("inner"), ErrInternalServerError, "boom").Error())
	assert.Equal(t, "[400] bad: detail", WrapWithDebug(nil, ErrInvalidRequest, "bad", "detail").Error())
}
