package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	rdb, err := Open(ctx, "", time.Second)
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = Open(ctx, "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")

	_, err = Open(ctx, "http://nope", time.Second)
	assert.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = Open(ctx, "redis://"+addr, 200*time.Millisecond)
	assert.Error(t, err)
}
