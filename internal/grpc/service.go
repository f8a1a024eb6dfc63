package grpc

import (
	"context"

	"mathdrill/internal/task"

	"google.golang.org/grpc"
)

const serviceName = "mathdrill.Generator"

type GenerateRequest struct {
	Preset    string        `json:"preset,omitempty"`
	Operation string        `json:"operation,omitempty"`
	Operands  []int         `json:"operands,omitempty"`
	Min       int           `json:"min,omitempty"`
	Max       int           `json:"max,omitempty"`
	Limit     *int          `json:"limit,omitempty"`
	Ordered   bool          `json:"ordered,omitempty"`
	Seed      *uint64       `json:"seed,omitempty"`
	Display   *task.Display `json:"display,omitempty"`
}

type TaskMessage struct {
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
	Solved string `json:"solved"`
}

type GenerateResponse struct {
	Operation string        `json:"operation"`
	Tasks     []TaskMessage `json:"tasks"`
}

type CheckRequest struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

type CheckResponse struct {
	Correct bool   `json:"correct"`
	Solved  string `json:"solved"`
}

// GeneratorServer - серверная часть сервиса mathdrill.Generator
type GeneratorServer interface {
	Generate(context.Context, *GenerateRequest) (*GenerateResponse, error)
	Check(context.Context, *CheckRequest) (*CheckResponse, error)
}

func RegisterGeneratorServer(s grpc.ServiceRegistrar, srv GeneratorServer) {
	s.RegisterService(&generatorServiceDesc, srv)
}

var generatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*GeneratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
		{MethodName: "Check", Handler: checkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mathdrill/generator",
}

func generateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GenerateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeneratorServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Generate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GeneratorServer).Generate(ctx, req.(*GenerateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeneratorServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Check"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GeneratorServer).Check(ctx, req.(*CheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}
