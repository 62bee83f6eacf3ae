package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/MadAppGang/sourcemap/pkg/lsp"
)

// translateRequest is the payload for the "sourcemap/translate" method:
// the generated file's URI, a position in generated or original
// coordinates (per direction), and the direction to translate it.
type translateRequest struct {
	URI       protocol.DocumentURI `json:"uri"`
	Position  protocol.Position    `json:"position"`
	Direction string               `json:"direction"` // "toOriginal" or "toGenerated"
}

type translateResponse struct {
	URI      protocol.DocumentURI `json:"uri"`
	Position protocol.Position    `json:"position"`
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve position translation over a JSON-RPC stream on stdio, for editor integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := lsp.NewSourceMapCache(logger.Named("cache"))
			if err != nil {
				return fmt.Errorf("creating source map cache: %w", err)
			}
			translator := lsp.NewTranslator(cache)

			stream := jsonrpc2.NewStream(&stdinoutCloser{stdin: os.Stdin, stdout: os.Stdout})
			conn := jsonrpc2.NewConn(stream)

			conn.Go(context.Background(), translateHandler(translator))

			logger.Infof("sourcemap-tool serve: listening on stdio")
			<-conn.Done()
			if err := conn.Err(); err != nil {
				return fmt.Errorf("connection closed with error: %w", err)
			}
			return nil
		},
	}
}

func translateHandler(translator *lsp.Translator) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() != "sourcemap/translate" {
			return reply(ctx, nil, fmt.Errorf("unknown method: %s", req.Method()))
		}

		var params translateRequest
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, fmt.Errorf("invalid params: %w", err))
		}

		dir := lsp.GeneratedToOriginal
		if params.Direction == "toGenerated" {
			dir = lsp.OriginalToGenerated
		}

		newURI, newPos, err := translator.TranslatePosition(params.URI, params.Position, dir)
		if err != nil {
			return reply(ctx, nil, err)
		}

		return reply(ctx, translateResponse{URI: newURI, Position: newPos}, nil)
	}
}

// stdinoutCloser wraps os.Stdin and os.Stdout as an io.ReadWriteCloser
// without closing the underlying descriptors, matching how an LSP
// server talks to its client over its own process's stdio.
type stdinoutCloser struct {
	stdin  *os.File
	stdout *os.File
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.stdin.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.stdout.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

var _ io.ReadWriteCloser = (*stdinoutCloser)(nil)
