package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Response is what a request returns to scripts.
type Response struct {
	StatusCode int    `cty:"status_code"`
	Body       string `cty:"body"`
}

var responseType = cty.Object(map[string]cty.Type{
	"status_code": cty.Number,
	"body":        cty.String,
})

// Do sends one request with client and reads the whole response.
func Do(ctx context.Context, client *http.Client, method, url string, body io.Reader) (*Response, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(bodyBytes)}, nil
}

func getFunc(ctx context.Context, client *http.Client) function.Function {
	return function.New(&function.Spec{
		Description: "Sends a GET request.",
		Params:      []function.Parameter{{Name: "url", Type: cty.String}},
		Type:        function.StaticReturnType(responseType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			resp, err := Do(ctx, client, http.MethodGet, args[0].AsString(), nil)
			if err != nil {
				return cty.NilVal, err
			}
			return registry.ToValue(resp)
		},
	})
}

// requestFunc implements request(method, url, body?).
func requestFunc(ctx context.Context, client *http.Client) function.Function {
	return function.New(&function.Spec{
		Description: "Sends a request with an optional text body.",
		Params: []function.Parameter{
			{Name: "method", Type: cty.String},
			{Name: "url", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "body", Type: cty.DynamicPseudoType},
		Type:     function.StaticReturnType(responseType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			var body io.Reader
			if len(args) > 2 {
				text, err := registry.StringArg(args[2])
				if err != nil {
					return cty.NilVal, fmt.Errorf("body: %w", err)
				}
				body = strings.NewReader(text)
			}
			method := strings.ToUpper(args[0].AsString())
			resp, err := Do(ctx, client, method, args[1].AsString(), body)
			if err != nil {
				return cty.NilVal, err
			}
			return registry.ToValue(resp)
		},
	})
}
