package grpc

import (
	"context"
	"log"
	"net"
	"time"

	"mathdrill/internal/config"
	"mathdrill/internal/generator"
	"mathdrill/internal/parser"
	"mathdrill/internal/task"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// DrillServer реализует gRPC сервис генерации и проверки заданий
type DrillServer struct {
	presets []config.Preset
}

func NewDrillServer(presets []config.Preset) *DrillServer {
	return &DrillServer{presets: presets}
}

// Generate возвращает набор заданий вместе с ответами
func (s *DrillServer) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	p, err := s.preset(req)
	if err != nil {
		return nil, err
	}

	g := generator.New(nil)
	if req.Seed != nil {
		g = generator.NewSeeded(*req.Seed)
	}

	op, tasks, err := p.Tasks(g)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp := &GenerateResponse{Operation: string(op), Tasks: make([]TaskMessage, 0, len(tasks))}
	for _, t := range tasks {
		r, err := t.Solve()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "задание %s: %v", t.Text(), err)
		}
		resp.Tasks = append(resp.Tasks, TaskMessage{
			Text:   t.Text(),
			Prompt: t.Prompt(),
			Solved: t.Display().FormatResult(r),
		})
	}

	log.Printf("Generate gRPC: операция=%s, заданий=%d", op, len(resp.Tasks))
	return resp, nil
}

// Check проверяет ответ на произвольное задание
func (s *DrillServer) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	t, err := task.New(req.Text)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	solved, err := t.Solve()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	answer, err := parser.ParseAnswer(req.Answer)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	correct := solved.Equal(answer)
	log.Printf("Check gRPC: %s = %s, ответ %s, верно=%t", t.Text(), solved, req.Answer, correct)

	return &CheckResponse{
		Correct: correct,
		Solved:  t.Display().FormatResult(solved),
	}, nil
}

func (s *DrillServer) preset(req *GenerateRequest) (config.Preset, error) {
	var p config.Preset
	if req.Preset != "" {
		cfg := config.Config{Presets: s.presets}
		found, ok := cfg.Preset(req.Preset)
		if !ok {
			return p, status.Errorf(codes.NotFound, "занятие %s не найдено", req.Preset)
		}
		p = found
	} else {
		p = config.Preset{
			Name:      "grpc",
			Operation: req.Operation,
			Operands:  req.Operands,
			Min:       req.Min,
			Max:       req.Max,
			Limit:     req.Limit,
			Display:   task.DefaultDisplay(),
		}
	}

	if req.Ordered {
		shuffle := false
		p.Shuffle = &shuffle
	}
	if req.Display != nil {
		p.Display = *req.Display
	}
	return p, nil
}

// NewServer создаёт gRPC сервер с зарегистрированным сервисом
func NewServer(presets []config.Preset) *grpc.Server {
	// Настройки для keepalive и размеров сообщений
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(16 * 1024 * 1024), // 16MB
		grpc.MaxSendMsgSize(16 * 1024 * 1024), // 16MB
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s := grpc.NewServer(opts...)
	RegisterGeneratorServer(s, NewDrillServer(presets))
	return s
}

// StartServer запускает gRPC сервер и блокируется до его остановки
func StartServer(s *grpc.Server, address string) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	log.Printf("gRPC сервер запущен на %s", address)
	return s.Serve(lis)
}
