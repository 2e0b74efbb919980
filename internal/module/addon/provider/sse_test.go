package provider

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSSE(t *testing.T) {
	t.Run("emits data lines until terminator", func(t *testing.T) {
		input := strings.Join([]string{
			`data: {"a":1}`,
			"",
			`data: {"b":2}`,
			"",
			"data: [DONE]",
			"",
			`data: {"after":"terminator"}`,
		}, "\n")

		var got []string
		err := scanSSE(strings.NewReader(input), func(data string) error {
			got = append(got, data)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
	})

	t.Run("ignores comments and other fields", func(t *testing.T) {
		input := strings.Join([]string{
			": keep-alive",
			"event: message",
			"id: 42",
			"data: payload",
		}, "\n")

		var got []string
		err := scanSSE(strings.NewReader(input), func(data string) error {
			got = append(got, data)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"payload"}, got)
	})

	t.Run("eof without terminator is not an error", func(t *testing.T) {
		var got []string
		err := scanSSE(strings.NewReader("data: partial\n"), func(data string) error {
			got = append(got, data)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"partial"}, got)
	})

	t.Run("emit error stops the scan", func(t *testing.T) {
		stop := errors.New("stop")
		input := "data: one\ndata: two\n"

		var got []string
		err := scanSSE(strings.NewReader(input), func(data string) error {
			got = append(got, data)
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, []string{"one"}, got)
	})
}
