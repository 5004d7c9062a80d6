package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken("op-1", "Awa", "CASHIER")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.OperatorID)
	assert.Equal(t, "Awa", claims.Name)
	assert.Equal(t, "CASHIER", claims.RoleCode)
}

func TestValidateRejects(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	other := NewIssuer("other-secret", time.Hour)
	expired := NewIssuer("test-secret", time.Nanosecond)

	foreign, err := other.GenerateToken("op-1", "Awa", "ADMIN")
	require.NoError(t, err)
	stale, err := expired.GenerateToken("op-1", "Awa", "ADMIN")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = issuer.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestGenerateAssignsOperatorID(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)

	token, err := issuer.GenerateToken("", "Till 2", "CASHIER")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.OperatorID)
}
