package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrAuthRequired, "unauthenticated"},
		{domain.ErrForbidden, "forbidden"},
		{fmt.Errorf("product x: %w", domain.ErrNotFound), "not_found"},
		{domain.ErrInsufficientStock, "insufficient_stock"},
		{fmt.Errorf("%w: quantity must be positive", domain.ErrValidation), "invalid"},
		{fmt.Errorf("%w: cart: boom", domain.ErrLoad), "load_failed"},
		{fmt.Errorf("%w: insert: boom", domain.ErrWrite), "write_failed"},
		{errors.New("something else"), "error"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Result(tc.err), "err=%v", tc.err)
	}
}
