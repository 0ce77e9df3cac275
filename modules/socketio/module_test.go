package socketio

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	server "github.com/zishang520/socket.io/v2/socket"
)

// newEchoServer answers every "ping" with a "pong" carrying the same payload.
func newEchoServer(t *testing.T) string {
	t.Helper()
	io := server.NewServer(nil, nil)
	io.On("connection", func(clients ...any) {
		client := clients[0].(*server.Socket)
		client.On("ping", func(args ...any) {
			var data any
			if len(args) > 0 {
				data = args[0]
			}
			client.Emit("pong", data)
		})
	})
	srv := httptest.NewServer(io.ServeHandler(nil))
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	return srv.URL
}

func TestRequest_RoundTrip(t *testing.T) {
	url := newEchoServer(t)

	reg := registry.New(&Module{})
	entry, ok := reg.Lookup(Name)
	require.True(t, ok)
	dep, err := entry.Build(t.Context(), &registry.Env{})
	require.NoError(t, err)

	request, ok := dep.Function("request")
	require.True(t, ok)
	v, err := request.Call([]cty.Value{
		cty.StringVal(url),
		cty.StringVal("ping"),
		cty.StringVal("pong"),
		cty.ObjectVal(map[string]cty.Value{"region": cty.StringVal("V1")}),
	})
	require.NoError(t, err)
	require.Equal(t, "V1", v.GetAttr("region").AsString())
}

func TestRequest_TimesOutWithoutReply(t *testing.T) {
	url := newEchoServer(t)

	_, err := Request(t.Context(), ClientOptions{URL: url}, "ping", "never", nil, 200*time.Millisecond)
	require.ErrorContains(t, err, "timed out")
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(t.Context(), ClientOptions{URL: "not a url"})
	require.ErrorContains(t, err, "must be absolute")

	err = Emit(t.Context(), ClientOptions{URL: "http://127.0.0.1:1"}, "ping", nil)
	require.ErrorContains(t, err, "socket.io connection failed")
}
