package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domshopping "example.com/divide-account/internal/domain/shopping"
)

func TestRun_FromStdin(t *testing.T) {
	var out bytes.Buffer
	stdin := strings.NewReader(`{"shopping_list":[{"name":"rice","price":51,"quantity":2}],` +
		`"emails":["d@x.com","c@x.com","b@x.com","a@x.com"]}`)

	err := run(context.Background(), options{in: "-"}, stdin, &out)
	require.NoError(t, err)

	want := `{
  "total": 102,
  "base_share": 25,
  "remainder": 2,
  "allocations": {
    "d@x.com": 26,
    "c@x.com": 26,
    "b@x.com": 25,
    "a@x.com": 25
  }
}
`
	require.Equal(t, want, out.String())
}

func TestRun_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"shopping_list":[{"name":"gum","price":1,"quantity":1}],"emails":["a@x.com","b@x.com","c@x.com"]}`), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), options{in: path}, nil, &out))
	require.Contains(t, out.String(), `"a@x.com": 1`)
	require.Contains(t, out.String(), `"c@x.com": 0`)
}

func TestRun_ValidationError(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{in: "-"},
		strings.NewReader(`{"shopping_list":[],"emails":["a@x.com"]}`), &out)

	var verr *domshopping.ValidationError
	require.True(t, errors.As(err, &verr))
	require.True(t, verr.Has(domshopping.KindListShape))
	require.Empty(t, out.String())
}

func TestRun_MissingFile(t *testing.T) {
	err := run(context.Background(), options{in: filepath.Join(t.TempDir(), "missing.json")}, nil, &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "open input")
}
