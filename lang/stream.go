package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// CompileReader reads all of r and compiles it. See [Registry.Compile].
//
// Input is read ahead asynchronously. When the registry bounds the source
// length, reading stops once the bound is exceeded.
func (r *Registry) CompileReader(
	ctx context.Context,
	rd io.Reader,
	ref any,
) (*Result, error) {
	ra := readahead.NewReader(rd)
	defer ra.Close()

	var src io.Reader = ra
	if r.maxSourceLen > 0 {
		src = io.LimitReader(ra, int64(r.maxSourceLen)+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	r.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return r.Compile(ctx, string(data), ref)
}
