package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"go.uber.org/zap"

	pluginrpc "keyloop/internal/modules/playback/adapter/out/rpc"
	"keyloop/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 500 * time.Millisecond
	pluginQueueSize     = 256
)

// PluginSynth forwards triggers to an out-of-process synthesizer. Calls are
// queued and delivered by one goroutine so the transport clock never waits on
// the plugin. A full queue drops the trigger.
type PluginSynth struct {
	client *plugin.Client
	rpc    pluginrpc.SynthClient
	logger *zap.Logger
	name   string

	calls  chan func(ctx context.Context) error
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
}

func NewPluginSynth(ctx context.Context, binary string, logger *zap.Logger) (*PluginSynth, error) {
	logger = logging.OrNop(logger)
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start synth plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense synth plugin: %w", err)
	}
	typed, ok := raw.(pluginrpc.SynthClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("synth plugin rpc client type mismatch")
	}

	callCtx, cancelCall := context.WithTimeout(ctx, defaultCallTimeout)
	meta, err := typed.GetMetadata(callCtx)
	cancelCall()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("synth plugin metadata: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &PluginSynth{
		client: client,
		rpc:    typed,
		logger: logger,
		name:   meta.Name,
		calls:  make(chan func(ctx context.Context) error, pluginQueueSize),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.deliver(runCtx)
	logger.Info("synth plugin started", zap.String("name", meta.Name), zap.String("version", meta.Version))
	return s, nil
}

func (s *PluginSynth) Name() string {
	return s.name
}

func (s *PluginSynth) TriggerAttackRelease(pitch string, duration, at, velocity float64) {
	s.enqueue(func(ctx context.Context) error {
		return s.rpc.Trigger(ctx, &pluginrpc.TriggerRequest{Pitch: pitch, Duration: duration, At: at, Velocity: velocity})
	})
}

func (s *PluginSynth) SetVolume(volume int) {
	s.enqueue(func(ctx context.Context) error {
		return s.rpc.SetVolume(ctx, &pluginrpc.VolumeRequest{Volume: int32(volume)})
	})
}

// Close discards queued calls and kills the plugin process.
func (s *PluginSynth) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.client.Kill()
	})
	return nil
}

func (s *PluginSynth) enqueue(call func(ctx context.Context) error) {
	select {
	case s.calls <- call:
	default:
		s.logger.Warn("synth plugin queue full, trigger dropped")
	}
}

func (s *PluginSynth) deliver(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case call := <-s.calls:
			callCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
			if err := call(callCtx); err != nil {
				s.logger.Warn("synth plugin call failed", zap.Error(err))
			}
			cancel()
		}
	}
}
