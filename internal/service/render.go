package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/sqlrender/internal/hsql"
	"github.com/atlekbai/sqlrender/internal/query"
)

const RenderServiceName = "sqlrender.v1.RenderService"

const (
	RenderProcedure      = "/" + RenderServiceName + "/Render"
	RenderBatchProcedure = "/" + RenderServiceName + "/RenderBatch"
	DialectsProcedure    = "/" + RenderServiceName + "/Dialects"
)

// maxBatchWorkers bounds how many documents of one batch render at once.
const maxBatchWorkers = 8

type RenderService struct {
	cfg     *hsql.Config
	builder *query.Builder
}

func NewRenderService(cfg *hsql.Config, defaults query.Defaults) *RenderService {
	return &RenderService{cfg: cfg, builder: query.NewBuilder(cfg, defaults)}
}

func (s *RenderService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := connect.WithInterceptors(interceptors...)
	mux := http.NewServeMux()
	mux.Handle(RenderProcedure, connect.NewUnaryHandler(RenderProcedure, s.Render, opts))
	mux.Handle(RenderBatchProcedure, connect.NewUnaryHandler(RenderBatchProcedure, s.RenderBatch, opts))
	mux.Handle(DialectsProcedure, connect.NewUnaryHandler(DialectsProcedure, s.Dialects, opts))
	return "/" + RenderServiceName + "/", mux
}

// Render turns one query document into SQL and its ordered arguments.
func (s *RenderService) Render(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	res, err := s.render(req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(res), nil
}

// RenderBatch renders {"documents": [...]} concurrently. Results keep the
// order of the input; the first failing document fails the call.
func (s *RenderService) RenderBatch(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	docs := req.Msg.GetFields()["documents"].GetListValue().GetValues()
	if len(docs) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("documents must be a non-empty list"))
	}

	results := make([]*structpb.Value, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchWorkers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st := doc.GetStructValue()
			if st == nil {
				return fmt.Errorf("document %d: %w: not an object", i, query.ErrInvalidDocument)
			}
			res, err := s.render(st)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = structpb.NewStructValue(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&structpb.Struct{Fields: map[string]*structpb.Value{
		"results": structpb.NewListValue(&structpb.ListValue{Values: results}),
	}}), nil
}

// Dialects lists the registered dialect tags and function renderers.
func (s *RenderService) Dialects(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	tags := s.cfg.Quotes().Tags()
	dialects := make([]any, len(tags))
	for i, tag := range tags {
		dialects[i] = tag.String()
	}
	names := s.cfg.Functions().Names()
	functions := make([]any, len(names))
	for i, name := range names {
		functions[i] = name
	}

	st, err := structpb.NewStruct(map[string]any{
		"dialects":  dialects,
		"functions": functions,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(st), nil
}

func (s *RenderService) render(doc *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.builder.Build(doc.AsMap())
	if err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(map[string]any{
		"dialect": res.Dialect.String(),
		"sql":     res.SQL,
		"args":    res.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return st, nil
}

func connectError(err error) error {
	switch {
	case errors.Is(err, query.ErrInvalidDocument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
