package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "synth"
	serviceName       = "keyloop.synth.v1.Synth"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodTrigger     = "/" + serviceName + "/Trigger"
	methodSetVolume   = "/" + serviceName + "/SetVolume"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "KEYLOOP_SYNTH",
	MagicCookieValue: "keyloop",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type TriggerRequest struct {
	Pitch    string  `json:"pitch"`
	Duration float64 `json:"duration"`
	At       float64 `json:"at"`
	Velocity float64 `json:"velocity"`
}

type VolumeRequest struct {
	Volume int32 `json:"volume"`
}

type SynthServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Trigger(ctx context.Context, in *TriggerRequest) (*Empty, error)
	SetVolume(ctx context.Context, in *VolumeRequest) (*Empty, error)
}

type SynthClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Trigger(ctx context.Context, in *TriggerRequest) error
	SetVolume(ctx context.Context, in *VolumeRequest) error
}

type synthClient struct {
	conn *grpc.ClientConn
}

func NewSynthClient(conn *grpc.ClientConn) SynthClient {
	return &synthClient{conn: conn}
}

func (c *synthClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *synthClient) Trigger(ctx context.Context, in *TriggerRequest) error {
	return c.conn.Invoke(ctx, methodTrigger, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func (c *synthClient) SetVolume(ctx context.Context, in *VolumeRequest) error {
	return c.conn.Invoke(ctx, methodSetVolume, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

func unary[T any](method string, call func(ctx context.Context, in *T) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(T)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*T)
			if !ok {
				return nil, fmt.Errorf("invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterSynthServer(server grpc.ServiceRegistrar, impl SynthServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*SynthServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: unary(methodGetMetadata, func(ctx context.Context, in *Empty) (any, error) {
					return impl.GetMetadata(ctx, in)
				}),
			},
			{
				MethodName: "Trigger",
				Handler: unary(methodTrigger, func(ctx context.Context, in *TriggerRequest) (any, error) {
					return impl.Trigger(ctx, in)
				}),
			},
			{
				MethodName: "SetVolume",
				Handler: unary(methodSetVolume, func(ctx context.Context, in *VolumeRequest) (any, error) {
					return impl.SetVolume(ctx, in)
				}),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/synth-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl SynthServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterSynthServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewSynthClient(conn), nil
}

func PluginMap(impl SynthServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
