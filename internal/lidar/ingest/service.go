// Package ingest accepts raw sensor frames from an external producer over
// gRPC and exposes them to the viewer as a simulator world.
//
// The service has one client-streaming method. Each message is a
// google.protobuf.BytesValue carrying one raw sensor buffer in the layout
// named by the "sensor-kind" request metadata ("raycast" or "semantic").
// The server answers with google.protobuf.Empty when the client closes
// its side of the stream.
package ingest

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/monitoring"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "simlidar.ingest.v1.FrameIngest"

	// PushFramesMethod is the full method path of the streaming RPC.
	PushFramesMethod = "/" + ServiceName + "/PushFrames"

	// MetadataSensorKind names the payload layout of a stream.
	MetadataSensorKind = "sensor-kind"
)

// FrameIngestServer is the server API for the FrameIngest service.
type FrameIngestServer interface {
	PushFrames(stream grpc.ServerStream) error
}

func pushFramesHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(FrameIngestServer).PushFrames(stream)
}

// serviceDesc describes the FrameIngest service for grpc.Server.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrameIngestServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "PushFrames",
			Handler:       pushFramesHandler,
			ClientStreams: true,
		},
	},
	Metadata: "simlidar/ingest/v1/ingest.proto",
}

// RegisterFrameIngestServer registers srv with s.
func RegisterFrameIngestServer(s grpc.ServiceRegistrar, srv FrameIngestServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Server receives frames and keeps only the newest one that the world has
// not consumed yet.
type Server struct {
	kind   lidar.SensorKind
	frames chan []byte

	received atomic.Uint64
	dropped  atomic.Uint64
	rejected atomic.Uint64
	streams  atomic.Int64
}

var _ FrameIngestServer = (*Server)(nil)

// NewServer creates a server accepting frames of the given kind.
func NewServer(kind lidar.SensorKind) *Server {
	return &Server{kind: kind, frames: make(chan []byte, 1)}
}

// Kind returns the payload layout the server accepts.
func (s *Server) Kind() lidar.SensorKind { return s.kind }

// Frames delivers received buffers. A buffer that is not taken before the
// next one arrives is dropped.
func (s *Server) Frames() <-chan []byte { return s.frames }

// PushFrames implements FrameIngestServer.
func (s *Server) PushFrames(stream grpc.ServerStream) error {
	if err := s.checkKind(stream); err != nil {
		s.rejected.Add(1)
		return err
	}

	s.streams.Add(1)
	defer s.streams.Add(-1)
	monitoring.Logf("[Ingest] producer connected (kind=%s)", s.kind)

	var n uint64
	for {
		msg := new(wrapperspb.BytesValue)
		err := stream.RecvMsg(msg)
		if errors.Is(err, io.EOF) {
			monitoring.Logf("[Ingest] producer finished after %d frames", n)
			return stream.SendMsg(&emptypb.Empty{})
		}
		if err != nil {
			monitoring.Logf("[Ingest] stream ended after %d frames: %v", n, err)
			return err
		}
		n++
		s.offer(msg.GetValue())
	}
}

func (s *Server) checkKind(stream grpc.ServerStream) error {
	md, ok := metadata.FromIncomingContext(stream.Context())
	if !ok {
		return nil
	}
	vals := md.Get(MetadataSensorKind)
	if len(vals) == 0 {
		return nil
	}
	kind, ok := lidar.ParseSensorKind(vals[0])
	if !ok {
		return status.Errorf(codes.InvalidArgument, "unknown sensor kind %q", vals[0])
	}
	if kind != s.kind {
		return status.Errorf(codes.FailedPrecondition, "viewer expects %s frames, stream carries %s", s.kind, kind)
	}
	return nil
}

// offer publishes raw, replacing an unconsumed older buffer.
func (s *Server) offer(raw []byte) {
	s.received.Add(1)
	for {
		select {
		case s.frames <- raw:
			return
		default:
		}
		select {
		case <-s.frames:
			s.dropped.Add(1)
		default:
		}
	}
}

// ServerStats is a snapshot of the server counters.
type ServerStats struct {
	Received uint64 `json:"received"`
	Dropped  uint64 `json:"dropped"`
	Rejected uint64 `json:"rejected"`
	Streams  int64  `json:"streams"`
}

// Stats returns the current counters.
func (s *Server) Stats() ServerStats {
	return ServerStats{
		Received: s.received.Load(),
		Dropped:  s.dropped.Load(),
		Rejected: s.rejected.Load(),
		Streams:  s.streams.Load(),
	}
}

// MaxMessageSize bounds a single frame message. Semantic frames at high
// point rates exceed the 4MB gRPC default.
const MaxMessageSize = 16 * 1024 * 1024

// stopGrace is how long Serve waits for open streams before forcing them
// closed.
const stopGrace = 2 * time.Second

// Serve runs a gRPC server for s on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	opts = append([]grpc.ServerOption{grpc.MaxRecvMsgSize(MaxMessageSize)}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterFrameIngestServer(gs, s)

	errc := make(chan error, 1)
	go func() { errc <- gs.Serve(lis) }()
	monitoring.Logf("[Ingest] gRPC server listening on %s", lis.Addr())

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	stopped := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(stopGrace):
		gs.Stop()
		<-stopped
	}
	<-errc
	monitoring.Logf("[Ingest] gRPC server stopped")
	return nil
}
