package weburl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4Hosts(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://127.0.0.1/", "127.0.0.1"},
		{"http://0x7f.1/", "127.0.0.1"},
		{"http://2130706433/", "127.0.0.1"},
		{"http://0300.0250.0.1/", "192.168.0.1"},
		{"http://1.2.3/", "1.2.0.3"},
		{"http://1.2.3.4./", "1.2.3.4"},
		{"http://0x/", "0.0.0.0"},
	}
	for _, tt := range tests {
		u, err := Parse(tt.input, nil)
		require.NoError(t, err, tt.input)
		assert.Equal(t, HostIPv4, u.Host.Kind, tt.input)
		assert.Equal(t, tt.want, u.Hostname(), tt.input)
	}
}

func TestIPv4NumberOverflow(t *testing.T) {
	_, err := Parse("http://4294967296/", nil)
	assert.Error(t, err)

	_, err = Parse("http://999999999999999999999999/", nil)
	assert.Error(t, err)

	u, err := Parse("http://4294967295/", nil)
	require.NoError(t, err)
	assert.Equal(t, "255.255.255.255", u.Hostname())
}

func TestIPv6Hosts(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[::1]", "[::1]"},
		{"[::]", "[::]"},
		{"[0:0:0:0:0:0:0:1]", "[::1]"},
		{"[2001:DB8:0:0:1:0:0:1]", "[2001:db8::1:0:0:1]"},
		{"[1:0:0:2:0:0:0:3]", "[1:0:0:2::3]"},
		{"[1:2:3:4:5:6:7:8]", "[1:2:3:4:5:6:7:8]"},
		{"[1:0:2:3:4:5:6:7]", "[1:0:2:3:4:5:6:7]"},
		{"[::ffff:192.168.0.1]", "[::ffff:c0a8:1]"},
		{"[fe80::]", "[fe80::]"},
	}
	for _, tt := range tests {
		u, err := Parse("http://"+tt.input+"/", nil)
		require.NoError(t, err, tt.input)
		assert.Equal(t, HostIPv6, u.Host.Kind)
		assert.Equal(t, tt.want, u.Hostname(), tt.input)
	}
}

func TestIPv6Failures(t *testing.T) {
	for _, input := range []string{
		"[:1]",
		"[1:2:3:4:5:6:7:8:9]",
		"[1::2::3]",
		"[::ffff:1.2.3]",
		"[::ffff:1.2.3.256]",
		"[::ffff:01.2.3.4]",
		"[12345::]",
		"[1:]",
	} {
		_, err := Parse("http://"+input+"/", nil)
		assert.Error(t, err, input)
	}
}

func TestOpaqueHosts(t *testing.T) {
	u, err := Parse("foo://Ex%41mple.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, HostOpaque, u.Host.Kind)
	assert.Equal(t, "Ex%41mple.com", u.Hostname(), "opaque hosts keep case and escapes")

	u, err = Parse("foo://héllo/", nil)
	require.NoError(t, err)
	assert.Equal(t, "h%C3%A9llo", u.Hostname())

	u, err = Parse("foo:///path", nil)
	require.NoError(t, err)
	assert.Equal(t, HostEmpty, u.Host.Kind)
	assert.Equal(t, "foo:///path", u.Href())

	_, err = Parse("foo://a<b/", nil)
	assert.Error(t, err)
}

func TestDomainHosts(t *testing.T) {
	u, err := Parse("http://EXAMPLE.com./", nil)
	require.NoError(t, err)
	assert.Equal(t, HostDomain, u.Host.Kind)
	assert.Equal(t, "example.com.", u.Hostname())

	u, err = Parse("http://ＥＸＡＭＰＬＥ.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Hostname())

	u, err = Parse("http://xn--bcher-kva.de/", nil)
	require.NoError(t, err)
	assert.Equal(t, "xn--bcher-kva.de", u.Hostname())
}

func TestEndsInANumber(t *testing.T) {
	assert.True(t, endsInANumber("1.2.3.4"))
	assert.True(t, endsInANumber("example.0x10"))
	assert.True(t, endsInANumber("a.09"))
	assert.False(t, endsInANumber("example.com"))
	assert.False(t, endsInANumber("example.com."))
	assert.True(t, endsInANumber("example.1."))
}
