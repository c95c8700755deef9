package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	synthrpc "keyloop/internal/modules/playback/adapter/out/rpc"
)

// outputEnv names a file that receives one line per trigger.
const outputEnv = "KEYLOOP_PRINTSYNTH_OUT"

type server struct {
	logger hclog.Logger

	mu     sync.Mutex
	out    *os.File
	volume int32
}

func (s *server) GetMetadata(_ context.Context, _ *synthrpc.Empty) (*synthrpc.Metadata, error) {
	return &synthrpc.Metadata{Name: "printsynth", Version: "1.0.0"}, nil
}

func (s *server) Trigger(_ context.Context, in *synthrpc.TriggerRequest) (*synthrpc.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug("trigger", "pitch", in.Pitch, "duration", in.Duration, "at", in.At, "velocity", in.Velocity)
	if s.out != nil {
		if _, err := fmt.Fprintf(s.out, "trigger %s %.3f %.3f %.2f\n", in.Pitch, in.Duration, in.At, in.Velocity); err != nil {
			return nil, err
		}
	}
	return &synthrpc.Empty{}, nil
}

func (s *server) SetVolume(_ context.Context, in *synthrpc.VolumeRequest) (*synthrpc.Empty, error) {
	if in.Volume < 0 || in.Volume > 100 {
		return nil, fmt.Errorf("volume %d outside [0,100]", in.Volume)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = in.Volume
	db := -30 + float64(in.Volume)*0.3
	s.logger.Debug("volume", "percent", in.Volume, "db", db)
	if s.out != nil {
		if _, err := fmt.Fprintf(s.out, "volume %d %.1fdB\n", in.Volume, db); err != nil {
			return nil, err
		}
	}
	return &synthrpc.Empty{}, nil
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "printsynth",
		Level:      hclog.Debug,
		Output:     os.Stderr,
		JSONFormat: true,
	})
	s := &server{logger: logger, volume: 75}
	if path := os.Getenv(outputEnv); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("open output", "path", path, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		s.out = f
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: synthrpc.HandshakeConfig,
		Plugins:         synthrpc.PluginMap(s),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}
