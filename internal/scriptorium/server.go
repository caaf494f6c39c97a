package scriptorium

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	genericapiserver "github.com/kiosk404/scrivener/internal/pkg/server"
	"github.com/kiosk404/scrivener/internal/scriptorium/config"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/safety"
	"github.com/kiosk404/scrivener/pkg/http/shutdown"
	"github.com/kiosk404/scrivener/pkg/http/shutdown/posixsignal"
	"github.com/kiosk404/scrivener/pkg/logger"
)

type apiServer struct {
	gs               *shutdown.GracefulShutdown
	gRPCAPIServer    *genericapiserver.GRPCAPIServer
	genericAPIServer *genericapiserver.GenericAPIServer

	cfg *config.Config

	personaModule *persona.Module
	channelModule *channel.Module
	memoryModule  *memory.Module
	llmModule     *llm.Module
	safetyModule  *safety.Module
	codegenModule *codegen.Module
	execModule    *exec.Module
}

type preparedAPIServer struct {
	*apiServer
}

// ExtraConfig defines extra configuration for the API server.
type ExtraConfig struct {
	Addr       string
	MaxMsgSize int
}

type completedExtraConfig struct {
	*ExtraConfig
}

// Complete fills in any fields not set that are required to have valid data and can be derived from other fields.
func (c *ExtraConfig) complete() *completedExtraConfig {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8081"
	}

	return &completedExtraConfig{c}
}

// New create a grpcAPIServer instance.
func (c *completedExtraConfig) New() (*genericapiserver.GRPCAPIServer, error) {
	opts := []grpc.ServerOption{grpc.MaxRecvMsgSize(c.MaxMsgSize)}
	grpcServer := grpc.NewServer(opts...)

	reflection.Register(grpcServer)

	return genericapiserver.NewGRPCAPIServer(grpcServer, c.Addr), nil
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gs := shutdown.New()
	gs.AddShutdownManager(posixsignal.NewPosixSignalManager())

	genericConfig, err := buildGenericConfig(cfg)
	if err != nil {
		return nil, err
	}

	extraConfig, err := buildExtraConfig(cfg)
	if err != nil {
		return nil, err
	}

	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}
	extraServer, err := extraConfig.complete().New()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	personaCfg := &persona.Config{
		Dir:   cfg.PathsOptions.Personas,
		Watch: cfg.WatchPersonas,
	}
	personaModule, err := personaCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persona module: %w", err)
	}
	logger.Info("[Scriptorium] persona module initialized (%d personas)", len(personaModule.Service.List()))

	channelCfg := &channel.Config{Dir: cfg.PathsOptions.Channels}
	channelModule, err := channelCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize channel module: %w", err)
	}

	memoryCfg := &memory.Config{
		MaxConversations:           cfg.MemoryOptions.MaxConversations,
		MaxMessagesPerConversation: cfg.MemoryOptions.MaxMessagesPerConversation,
	}
	memoryModule, err := memoryCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory module: %w", err)
	}

	llmCfg := &llm.Config{Options: cfg.LLMOptions}
	llmModule, err := llmCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}

	safetyCfg := &safety.Config{}
	safetyModule, err := safetyCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize safety module: %w", err)
	}

	codegenCfg := &codegen.Config{
		Gateway:   llmModule.Gateway,
		Validator: safetyModule.Validator,
	}
	codegenModule, err := codegenCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize codegen module: %w", err)
	}

	execCfg := &exec.Config{
		Options:    cfg.SchedulerOptions,
		ScriptsDir: cfg.PathsOptions.Scripts,
		Validator:  safetyModule.Validator,
	}
	execModule, err := execCfg.Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exec module: %w", err)
	}

	server := &apiServer{
		gs:               gs,
		genericAPIServer: genericServer,
		gRPCAPIServer:    extraServer,
		cfg:              cfg,
		personaModule:    personaModule,
		channelModule:    channelModule,
		memoryModule:     memoryModule,
		llmModule:        llmModule,
		safetyModule:     safetyModule,
		codegenModule:    codegenModule,
		execModule:       execModule,
	}

	return server, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	initRouter(s.genericAPIServer.Engine, &routerDeps{
		personas:      s.personaModule.Service,
		channels:      s.channelModule.Service,
		memory:        s.memoryModule.Service,
		gateway:       s.llmModule.Gateway,
		generator:     s.codegenModule.Generator,
		monitor:       s.execModule.Monitor,
		authConfig:    s.cfg.AuthConfig(),
		contextWindow: s.cfg.MemoryOptions.ContextWindow,
	})

	s.gs.AddShutdownCallback(shutdown.Func(func(string) error {
		if s.execModule != nil {
			s.execModule.Close()
		}
		if s.llmModule != nil {
			s.llmModule.Close()
		}
		if s.personaModule != nil {
			_ = s.personaModule.Close()
		}
		s.gRPCAPIServer.Stop()
		s.genericAPIServer.Close()
		return nil
	}))
	return preparedAPIServer{s}
}

func (s preparedAPIServer) Run() error {
	go s.gRPCAPIServer.Run()

	// start shutdown managers
	if err := s.gs.Start(); err != nil {
		log.Fatalf("start shutdown manager failed: %s", err.Error())
	}

	return s.genericAPIServer.Run()
}

func buildGenericConfig(cfg *config.Config) (genericConfig *genericapiserver.Config, lastErr error) {
	genericConfig = genericapiserver.NewConfig()
	if lastErr = cfg.GenericServerRunOptions.ApplyTo(genericConfig); lastErr != nil {
		return
	}

	return
}

func buildExtraConfig(cfg *config.Config) (*ExtraConfig, error) {
	return &ExtraConfig{
		Addr:       fmt.Sprintf("%s:%d", cfg.GRPCOptions.BindAddress, cfg.GRPCOptions.BindPort),
		MaxMsgSize: cfg.GRPCOptions.MaxMsgSize,
	}, nil
}
