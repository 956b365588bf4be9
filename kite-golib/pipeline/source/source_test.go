package source

import (
	"context"
	"fmt"
	"testing"

	"github.com/kiteco/livebench/kite-golib/pipeline"
	"github.com/kiteco/livebench/kite-golib/pipeline/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(n int, failAt int) func(context.Context) (pipeline.Record, error) {
	var i int
	return func(context.Context) (pipeline.Record, error) {
		if i == failAt {
			return pipeline.Record{}, fmt.Errorf("failed at %d", i)
		}
		if i >= n {
			return pipeline.Record{}, nil
		}
		i++
		return pipeline.Record{Key: fmt.Sprint(i), Value: sample.Int(i)}, nil
	}
}

func TestFunc(t *testing.T) {
	s := Func("count", counter(3, -1))
	assert.Equal(t, "count", s.Name())

	for i := 1; i <= 3; i++ {
		rec, err := s.SourceOut(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), rec.Key)
		assert.Equal(t, sample.Int(i), rec.Value)
	}

	rec, err := s.SourceOut(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestFunc_Error(t *testing.T) {
	s := Func("count", counter(3, 1))

	rec, err := s.SourceOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample.Int(1), rec.Value)

	_, err = s.SourceOut(context.Background())
	assert.EqualError(t, err, "failed at 1")
}
