package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(name, value string, err error, calls *[]string) Provider[string] {
	return Provider[string]{
		Name: name,
		Fetch: func(ctx context.Context) (string, error) {
			*calls = append(*calls, name)
			return value, err
		},
	}
}

func TestChain_FirstSuccessShortCircuits(t *testing.T) {
	var calls []string
	got, method, err := TryInOrder(context.Background(), []Provider[string]{
		constant("a", "", errors.New("down"), &calls),
		constant("b", "from b", nil, &calls),
		constant("c", "from c", nil, &calls),
	})

	require.NoError(t, err)
	assert.Equal(t, "from b", got)
	assert.Equal(t, "b", method)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestChain_AllFailAggregatesInOrder(t *testing.T) {
	var calls []string
	_, _, err := Chain[string]{Service: "twitter"}.Run(context.Background(), []Provider[string]{
		constant("fxtwitter", "", errors.New("HTTP 500"), &calls),
		constant("vxtwitter", "", errors.New("timeout"), &calls),
		constant("syndication", "", errors.New("no text"), &calls),
	})

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Len(t, chainErr.Failures, 3)
	assert.Equal(t, []string{"fxtwitter", "vxtwitter", "syndication"}, chainErr.Methods())
	assert.Contains(t, err.Error(), "fxtwitter: HTTP 500; vxtwitter: timeout; syndication: no text")
}

func TestChain_PerMethodTimeoutCountsAsFailure(t *testing.T) {
	slow := Provider[string]{
		Name: "slow",
		Fetch: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	fast := Provider[string]{
		Name:  "fast",
		Fetch: func(ctx context.Context) (string, error) { return "ok", nil },
	}

	got, method, err := Chain[string]{Service: "test", Timeout: 20 * time.Millisecond}.
		Run(context.Background(), []Provider[string]{slow, fast})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "fast", method)
}

func TestChain_ParentCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls []string
	first := Provider[string]{
		Name: "first",
		Fetch: func(ctx context.Context) (string, error) {
			calls = append(calls, "first")
			cancel()
			return "", errors.New("aborted")
		},
	}

	_, _, err := TryInOrder(ctx, []Provider[string]{first, constant("second", "x", nil, &calls)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first"}, calls)
}

func TestChain_NoProviders(t *testing.T) {
	_, _, err := TryInOrder[string](context.Background(), nil)
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Len(t, chainErr.Failures, 1)
}
