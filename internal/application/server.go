package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"azure-devops-mcp-server/internal/domain"
)

// ServerName is the implementation name reported during initialization.
const ServerName = "azure-devops-mcp-server"

// shutdownTimeout bounds the graceful shutdown of the HTTP listeners.
const shutdownTimeout = 5 * time.Second

// Server exposes the registry over the Model Context Protocol.
// tools/list advertises the registry contracts in registration order and
// tools/call is routed through Registry.Invoke.
type Server struct {
	mcp      *mcp.Server
	registry *Registry
	mapper   domain.ResponseMapper
	logger   domain.Logger
}

// NewServer creates the MCP server and registers one MCP tool per entity tool.
func NewServer(registry *Registry, logger domain.Logger, version string) *Server {
	if logger == nil {
		logger = domain.NopLogger()
	}

	s := &Server{
		mcp:      mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil),
		registry: registry,
		mapper:   domain.NewResponseMapper(),
		logger:   logger,
	}

	for _, contract := range registry.Contracts() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        contract.Name,
			Description: contract.Description,
			InputSchema: contract.InputSchema,
		}, s.toolHandler(contract.Name))
	}
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// toolHandler adapts Registry.Invoke to the protocol. Soft failures come back
// as results with IsError set; everything else becomes a protocol error with
// the kind's code and the message "<Kind>: <message>".
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			s.logger.Warn("malformed tool arguments", map[string]interface{}{"tool": name})
			return nil, s.wireError(&domain.ClassifiedError{
				Kind:        domain.KindValidation,
				Source:      name,
				Operation:   "decode_arguments",
				RawMessage:  err.Error(),
				UserMessage: fmt.Sprintf("arguments of %s must be a JSON object", name),
				Cause:       err,
			})
		}

		operation, _ := args["operation"].(string)
		s.logger.Info("tool call", map[string]interface{}{
			"tool":      name,
			"operation": operation,
		})

		result, err := s.registry.Invoke(ctx, name, args)
		if err != nil {
			return nil, s.wireError(err)
		}
		return toCallToolResult(result), nil
	}
}

// wireError keeps the JSON-RPC code of the error kind on the protocol
// error instead of letting the SDK send a bare message.
func (s *Server) wireError(err error) error {
	rpcErr := s.mapper.MapError(err)
	wire := &jsonrpc.Error{
		Code:    int64(rpcErr.Code),
		Message: rpcErr.Message,
	}
	if rpcErr.Data != nil {
		if data, marshalErr := json.Marshal(rpcErr.Data); marshalErr == nil {
			wire.Data = data
		}
	}
	return wire
}

func decodeArguments(raw json.RawMessage) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return args, nil
	}
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func toCallToolResult(result *domain.ToolResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{
		Content: make([]mcp.Content, 0, len(result.Content)),
		IsError: result.IsError,
	}
	for _, block := range result.Content {
		out.Content = append(out.Content, &mcp.TextContent{Text: block.Text})
	}
	return out
}

// Run serves the protocol on the configured transport until ctx is done.
func (s *Server) Run(ctx context.Context, transport domain.TransportConfig) error {
	s.logger.Info("server starting", map[string]interface{}{
		"transport_type": transport.Type,
		"tools":          len(s.registry.Contracts()),
	})

	switch transport.Type {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	case "http":
		return s.serveHTTP(ctx, transport.HTTP, mcp.NewStreamableHTTPHandler(s.getServer, nil))
	case "sse":
		return s.serveHTTP(ctx, transport.HTTP, mcp.NewSSEHandler(s.getServer, nil))
	default:
		return fmt.Errorf("invalid transport type: %s", transport.Type)
	}
}

func (s *Server) getServer(*http.Request) *mcp.Server {
	return s.mcp
}

func (s *Server) serveHTTP(ctx context.Context, cfg domain.HTTPConfig, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listener started", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down", nil)
	return server.Shutdown(shutdownCtx)
}
