package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// GeneratorClient - клиент сервиса mathdrill.Generator
type GeneratorClient struct {
	conn *grpc.ClientConn
}

// NewGeneratorClient подключается к серверу по адресу serverAddr
func NewGeneratorClient(serverAddr string, opts ...grpc.DialOption) (*GeneratorClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return DialContext(ctx, serverAddr, opts...)
}

func DialContext(ctx context.Context, target string, opts ...grpc.DialOption) (*GeneratorClient, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(CodecName),
			grpc.MaxCallRecvMsgSize(16*1024*1024), // 16MB
			grpc.MaxCallSendMsgSize(16*1024*1024), // 16MB
		),
	}

	conn, err := grpc.DialContext(ctx, target, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &GeneratorClient{conn: conn}, nil
}

// Close закрывает соединение с сервером
func (c *GeneratorClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GeneratorClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	out := new(GenerateResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Generate", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeneratorClient) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	out := new(CheckResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Check", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
