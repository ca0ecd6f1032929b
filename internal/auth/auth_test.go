package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestToken_RoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	tok, err := GenerateToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken("s3cret", "ops", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("s3cret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateToken("", "ops", time.Hour)
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "system", Subject(ctx))

	md := metadata.NewIncomingContext(ctx, metadata.Pairs("x-requested-by", "cron"))
	assert.Equal(t, "cron", Subject(md))

	assert.Equal(t, "ops", Subject(WithSubject(md, "ops")))
}
