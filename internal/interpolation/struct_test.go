package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type route struct {
	Path string
	Root string `env_interpolation:"yes"`
}

type listener struct {
	ID      string
	Address string            `env_interpolation:"yes"`
	Headers map[string]string `env_interpolation:"yes"`
	Aliases []string          `env_interpolation:"yes"`
	Routes  []route
	Extra   *route
	Port    int `env_interpolation:"yes"`
	secret  string
}

func TestStruct(t *testing.T) {
	t.Setenv("LYNX_ADDR", "127.0.0.1")
	t.Setenv("LYNX_WEBROOT", "/srv/www")

	l := &listener{
		ID:      "${LYNX_ADDR}",
		Address: "${LYNX_ADDR}",
		Headers: map[string]string{"X-Root": "${LYNX_WEBROOT}"},
		Aliases: []string{"${LYNX_UNSET:alias}"},
		Routes:  []route{{Path: "/static/*", Root: "${LYNX_WEBROOT}/static"}},
		Extra:   &route{Root: "${LYNX_UNSET:/tmp}"},
		secret:  "${LYNX_ADDR}",
	}
	require.NoError(t, Struct(l))

	assert.Equal(t, "${LYNX_ADDR}", l.ID, "untagged fields are left alone")
	assert.Equal(t, "127.0.0.1", l.Address)
	assert.Equal(t, "/srv/www", l.Headers["X-Root"])
	assert.Equal(t, []string{"alias"}, l.Aliases)
	assert.Equal(t, "/srv/www/static", l.Routes[0].Root)
	assert.Equal(t, "/static/*", l.Routes[0].Path)
	assert.Equal(t, "/tmp", l.Extra.Root)
	assert.Equal(t, "${LYNX_ADDR}", l.secret)
}

func TestStructErrors(t *testing.T) {
	t.Run("not a pointer", func(t *testing.T) {
		assert.ErrorIs(t, Struct(listener{}), ErrNotStruct)
	})

	t.Run("nil", func(t *testing.T) {
		var l *listener
		assert.ErrorIs(t, Struct(l), ErrNotStruct)
		assert.ErrorIs(t, Struct(nil), ErrNotStruct)
	})

	t.Run("undefined variables name the field", func(t *testing.T) {
		l := &listener{
			Address: "${LYNX_NOPE}",
			Routes:  []route{{Root: "${LYNX_NOPE_EITHER}"}},
		}
		err := Struct(l)
		require.ErrorIs(t, err, ErrUndefinedVariable)
		assert.Contains(t, err.Error(), "Address")
		assert.Contains(t, err.Error(), "Routes[0].Root")
	})
}
